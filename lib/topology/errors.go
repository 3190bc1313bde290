package topology

import (
	"errors"
	"fmt"
)

// ErrAlreadyAttached is returned when a transport is attached to a shard twice
var ErrAlreadyAttached = errors.New("shard client already has a transport attached")

// MalformedConfigError reports a missing or invalid configuration field.
// Field is the full path of the offending field, e.g.
// "store_server.sharding[1].server[0].ip".
type MalformedConfigError struct {
	Field  string
	Reason string
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed topology config: %s: %s", e.Field, e.Reason)
}

// DuplicateShardIndexError reports two shards of an index addressed pool
// declaring the same index. First and Second are the positions of the two
// declarations in the pool's sharding list.
type DuplicateShardIndexError struct {
	Pool   Pool
	Index  ShardIndex
	First  int
	Second int
}

func (e *DuplicateShardIndexError) Error() string {
	return fmt.Sprintf("duplicate shard index %d in %s (sharding[%d] and sharding[%d])",
		e.Index, e.Pool, e.First, e.Second)
}

func malformed(field, format string, args ...interface{}) error {
	return &MalformedConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
