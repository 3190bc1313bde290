// Package registry builds and holds the client side of the proxy's backend
// topology: one connected transport and one typed service proxy per shard.
//
// A Registry is built from a topology.TopologyConfig by New. Metadata shards
// get an api.IMetaService proxy, store shards an api.IStoreService proxy, and
// every transport is built with the ClientOptions of its own pool. If any
// shard cannot be built, the transports already connected are closed again
// and New returns the error; there is never a partial registry.
//
// Most processes need exactly one registry. Loader provides that: the first
// Get or GetFrom reads the configuration file and builds the registry, all
// later calls return the same instance. Instance and InstanceFrom use a
// package level Loader with the default transport (tcp) and serializer (binary).
//
// Errors:
//
//   - UnknownShardError: StoreShard was asked for an index the topology does
//     not declare.
//   - TransportConstructionError: the transport factory failed for a shard.
//     The factory's error is available through errors.Unwrap.
//   - topology.MalformedConfigError, topology.DuplicateShardIndexError: the
//     configuration file was rejected.
//
// Metrics about initialisation, shard lookups and built transports are kept
// in a VictoriaMetrics set and can be exported with WriteMetrics.
package registry
