// Package grpc implements a client transport over gRPC.
//
// Every request is a unary call to SendMethod carrying the serialized message
// as a raw Frame (see Codec); the shard id travels in the ShardIDHeader
// metadata entry. Servers register an UnknownServiceHandler (or a service
// named dkv.proxy.Shard) with grpc.ForceServerCodec(Codec{}) to answer them.
package grpc
