// Package common provides core data structures and utilities shared across
// the RPC layer of the proxy. It defines the wire message, the configuration
// handed to client transports, and the logging setup.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication with the metadata
//     and store servers. Includes factory methods for the request and response
//     messages of both service contracts.
//
//   - MessageType: Enumeration of the supported operations, grouped into
//     metadata operations, store operations and control messages.
//
//   - ClientConfig: Endpoints and connect/write/read timeouts of one shard's
//     transport. A zero timeout selects the transport default.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logger registry, so every package obtains its logger with
//     logger.GetLogger(name).
package common
