// Package transport defines the client side transport contract used by the
// proxy to reach metadata and store servers. The concrete implementations live
// in the tcp, unix, http and grpc subpackages.
//
// Key Components:
//
//   - IRPCClientTransport: connection management and request sending for the
//     endpoint list of one shard.
//
//   - Factory: builds and eagerly connects a transport from a
//     common.ClientConfig. The registry calls a Factory once per shard.
package transport
