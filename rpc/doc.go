// Package rpc provides the client side of the remote procedure calls the
// proxy makes to its metadata and store servers.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, the client configuration and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP) and the Factory the registry uses to build one
//     transport per shard.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: typed proxies implementing the metadata and store service
//     contracts over a transport.
package rpc
