package unix

import (
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport/base"
	"net"
	"time"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", socketPath(endpoint), timeout)
}

// socketPath strips the port of a host:port endpoint, leaving the socket path
func socketPath(endpoint string) string {
	if path, _, err := net.SplitHostPort(endpoint); err == nil {
		return path
	}
	return endpoint
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix client transport
func NewUnixClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}

// Factory builds eagerly connected Unix socket transports
var Factory = transport.NewFactory(NewUnixClientTransport)
