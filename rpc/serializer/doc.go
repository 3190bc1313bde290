// Package serializer converts common.Message values to bytes and back for the
// proxy's RPC clients.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format. A flag byte records which
//     optional fields are present so absent fields cost nothing on the wire.
//     This is the default used by the registry.
//
//   - jsonSerializerImpl: JSON encoding, handy for debugging against a server
//     by hand.
//
//   - gobSerializerImpl: Go's gob encoding, mainly kept for servers that
//     were deployed with it.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use.
//
// Usage:
//
//	s, ok := serializer.New("binary")
//	data, err := s.Serialize(*common.NewStoreGetRequest("key"))
package serializer
