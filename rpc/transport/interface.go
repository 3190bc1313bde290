package transport

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport.
//
// Timeouts are taken from the common.ClientConfig passed to Connect.
// A zero timeout selects the transport's default behaviour, which for the
// socket transports means no deadline and for http means the net/http
// default. Implementations must never treat zero as "fail immediately".
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration.
	// Endpoints are dialed in the order given.
	Connect(config common.ClientConfig) error
	// Send sends a request to the server and returns the response
	Send(shardId uint64, req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}

// --------------------------------------------------------------------------
// Transport Factory
// --------------------------------------------------------------------------

// Factory builds a connected client transport for one shard
type Factory func(config common.ClientConfig) (IRPCClientTransport, error)

// NewFactory wraps a transport constructor into a Factory that connects eagerly
func NewFactory(newTransport func() IRPCClientTransport) Factory {
	return func(config common.ClientConfig) (IRPCClientTransport, error) {
		t := newTransport()
		if err := t.Connect(config); err != nil {
			return nil, fmt.Errorf("connect %v: %w", config.Endpoints, err)
		}
		return t, nil
	}
}
