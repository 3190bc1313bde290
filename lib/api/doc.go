// Package api defines the service contracts served by the two server pools
// the proxy talks to: IMetaService for the metadata pool and IStoreService
// for the data-store pool.
//
// The registry only constructs implementations of these interfaces (see
// package rpc/client); the proxy's request path is what calls them.
package api
