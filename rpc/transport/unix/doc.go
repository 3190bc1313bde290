// Package unix implements the Unix domain socket client transport, for
// metadata or store servers running on the same machine as the proxy.
//
// Endpoints are socket paths. A configured server's ip is used as the path and
// its port is ignored, so a store server on /run/dkv/store0.sock is declared
// with ip = "/run/dkv/store0.sock" and any port.
package unix
