package registry

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/lib/topology"
)

// UnknownShardError is returned when a store shard index is not part of the topology
type UnknownShardError struct {
	Index topology.ShardIndex
}

func (e *UnknownShardError) Error() string {
	return fmt.Sprintf("unknown store shard %d", e.Index)
}

// TransportConstructionError is returned when the transport of a shard could
// not be built. Err is the transport factory's error.
type TransportConstructionError struct {
	Pool  topology.Pool
	Index topology.ShardIndex
	Err   error
}

func (e *TransportConstructionError) Error() string {
	return fmt.Sprintf("build transport for %s shard %d: %v", e.Pool, e.Index, e.Err)
}

func (e *TransportConstructionError) Unwrap() error {
	return e.Err
}
