// Package cmd implements the command-line interface of the dKV proxy.
//
// The package is organized into several subpackages:
//
//   - serve: connects to every shard of the topology and serves the admin endpoint
//   - topology: prints and validates the topology file without connecting
//   - kv: key-value and metadata operations against a single shard
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dkv-proxy -help for a list of all commands.
package cmd
