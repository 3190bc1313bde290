// Package topology describes where the proxy's backend servers live and parses
// that description from a configuration file.
//
// The proxy talks to two independent server pools:
//
//   - meta_server: the metadata servers. Shards are kept in declaration order
//     and addressed by position, so two shards may share an index.
//
//   - store_server: the data-store servers. Shards are addressed by their
//     index, which must be unique within the pool.
//
// Each pool carries one set of ClientOptions (connect, write and read
// timeouts) that applies to all of its shards. Each shard lists one or more
// Endpoints in the order they should be dialed.
//
// Key Components:
//
//   - TopologyConfig: the parsed and validated declaration. Load reads a
//     toml, yaml or json file through viper; Parse validates an already
//     populated viper instance. Parsing never opens a connection.
//
//   - ShardClient: one shard's endpoints plus, once the registry has built
//     them, its transport and typed service proxy.
//
//   - Errors: MalformedConfigError names the full path of the offending field
//     (e.g. "store_server.sharding[1].server[0].ip"); DuplicateShardIndexError
//     reports two store shards with the same index.
//
// Example configuration:
//
//	port = 8888
//
//	[meta_server]
//	connect_timeout_ms = 500
//	write_timeout_ms = 200
//	read_timeout_ms = 200
//
//	[[meta_server.sharding]]
//	index = 0
//	[[meta_server.sharding.server]]
//	ip = "10.0.0.1"
//	port = 9000
//
//	[store_server]
//	connect_timeout_ms = 1000
//	write_timeout_ms = 300
//	read_timeout_ms = 300
//
//	[[store_server.sharding]]
//	index = 0
//	[[store_server.sharding.server]]
//	ip = "10.0.1.1"
//	port = 9100
package topology
