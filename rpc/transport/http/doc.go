// Package http implements an HTTP based client transport. Each request is a
// POST of the serialized message to <endpoint>/<shard id>; endpoints are used
// round robin.
//
// Connect checks that at least one endpoint accepts a tcp connection; the
// request connections are pooled by net/http.
package http
