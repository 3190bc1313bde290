package topology

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"net"
	"strconv"
	"time"
)

// --------------------------------------------------------------------------
// Shard index and pools
// --------------------------------------------------------------------------

// ShardIndex identifies a shard within a pool. It is its own type so that it
// cannot be mixed up with ports or other integers at call sites.
type ShardIndex int

// Pool names a server pool. The value is the pool's configuration section.
type Pool string

const (
	PoolMeta  Pool = "meta_server"
	PoolStore Pool = "store_server"
)

// --------------------------------------------------------------------------
// Endpoint
// --------------------------------------------------------------------------

// Endpoint is the address of one server instance. Endpoints are compared by value.
type Endpoint struct {
	Host string
	Port int
}

// Address returns the endpoint as host:port
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Address()
}

// --------------------------------------------------------------------------
// Client options
// --------------------------------------------------------------------------

// ClientOptions holds the transport timeouts of one pool. They apply to every
// shard of the pool.
//
// A zero duration means "use the transport default" (see
// transport.IRPCClientTransport), never "no time at all".
type ClientOptions struct {
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
}

// Validate reports the first negative timeout
func (o ClientOptions) Validate() error {
	switch {
	case o.ConnectTimeout < 0:
		return fmt.Errorf("connect timeout %s is negative", o.ConnectTimeout)
	case o.WriteTimeout < 0:
		return fmt.Errorf("write timeout %s is negative", o.WriteTimeout)
	case o.ReadTimeout < 0:
		return fmt.Errorf("read timeout %s is negative", o.ReadTimeout)
	}
	return nil
}

// ClientConfig converts the options and an endpoint list into the
// configuration handed to a client transport
func (o ClientOptions) ClientConfig(endpoints []Endpoint) common.ClientConfig {
	addresses := make([]string, len(endpoints))
	for i, e := range endpoints {
		addresses[i] = e.Address()
	}
	return common.ClientConfig{
		Endpoints:      addresses,
		ConnectTimeout: o.ConnectTimeout,
		WriteTimeout:   o.WriteTimeout,
		ReadTimeout:    o.ReadTimeout,
	}
}

func (o ClientOptions) String() string {
	return fmt.Sprintf("connect=%s write=%s read=%s",
		common.FormatTimeout(o.ConnectTimeout), common.FormatTimeout(o.WriteTimeout), common.FormatTimeout(o.ReadTimeout))
}
