package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

var (
	ErrNoEndpoints   = errors.New("no endpoints provided")
	ErrNoConnections = errors.New("no active connections available")
	ErrTimeout       = errors.New("request timed out")
	ErrClosed        = errors.New("transport closed")
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to endpoint.
	// A zero timeout means no connect deadline.
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection represents a single net connection
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{} // Close signal for the reader goroutine
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // Protects conn and serializes writes
	parent       *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64 // Atomic counter for Round Robin
	nextRequestID uint64 // Atomic counter for unique request IDs
	stopping      atomic.Bool
	metrics       *transportMetrics
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector:     connector,
		nextRequestID: 1,
		metrics:       newTransportMetrics(connector.GetName()),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return ErrNoEndpoints
	}

	t.closeConnections()
	t.config = config
	t.stopping.Store(false)

	connectionsPerEP := 1
	if config.ConnectionsPerEndpoint > 0 {
		connectionsPerEP = config.ConnectionsPerEndpoint
	}

	connections := make([]*clientConnection, 0, len(config.Endpoints)*connectionsPerEP)
	var lastErr error

	// endpoints are dialed in declaration order
	for _, endpoint := range config.Endpoints {
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint:     endpoint,
				stopCh:       make(chan struct{}),
				requestChans: xsync.NewMapOf[uint64, chan responseResult](),
				parent:       t,
			}

			if err := clientConn.reconnect(); err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, connectionsPerEP, err)
				lastErr = err
				continue
			}

			connections = append(connections, clientConn)
			Logger.Debugf("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)

			go clientConn.readResponses()
		}
	}

	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint: %w", lastErr)
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()
	t.metrics.connections.Inc(int64(len(connections)))

	Logger.Infof("Connected %d out of %d connections to %d endpoints using %s transport",
		len(connections), len(config.Endpoints)*connectionsPerEP, len(config.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	start := time.Now()
	resp, err := t.send(shardId, req)
	t.metrics.send.UpdateSince(start)
	if err != nil {
		t.metrics.errors.Inc(1)
	}
	return resp, err
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// send writes one request frame and waits for the matching response
func (t *clientTransport) send(shardId uint64, req []byte) ([]byte, error) {
	connection := t.getNextConnection()
	if connection == nil {
		return nil, ErrNoConnections
	}

	requestID := atomic.AddUint64(&t.nextRequestID, 1)

	respCh := make(chan responseResult, 1)
	connection.requestChans.Store(requestID, respCh)
	defer connection.requestChans.Delete(requestID)

	connection.connMu.Lock()
	conn := connection.conn
	if conn == nil {
		connection.connMu.Unlock()
		return nil, fmt.Errorf("connection to %s is closed", connection.endpoint)
	}
	if t.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
	}
	err := writeFrame(conn, shardId, requestID, req)
	connection.connMu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("write to %s: %w", connection.endpoint, err)
	}

	// a nil channel never fires, so zero waits for as long as the connection lives
	var timeoutCh <-chan time.Time
	if t.config.ReadTimeout > 0 {
		timer := time.NewTimer(t.config.ReadTimeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case result := <-respCh:
		return result.data, result.err
	case <-connection.stopCh:
		return nil, fmt.Errorf("%w (endpoint %s)", ErrClosed, connection.endpoint)
	case <-timeoutCh:
		return nil, fmt.Errorf("%w after %s (endpoint %s)", ErrTimeout, t.config.ReadTimeout, connection.endpoint)
	}
}

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	switch len(t.connections) {
	case 0:
		return nil
	case 1:
		return t.connections[0]
	default:
		index := atomic.AddUint64(&t.nextConnIndex, 1) % uint64(len(t.connections))
		return t.connections[index]
	}
}

// closeConnections closes all active connections and fails the requests
// still waiting on them
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, c := range t.connections {
		close(c.stopCh)

		c.connMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()

		c.failPending(fmt.Errorf("%w (endpoint %s)", ErrClosed, c.endpoint))
	}

	t.metrics.connections.Dec(int64(len(t.connections)))
	t.connections = nil
}

// stopped reports whether the connection has been told to shut down
func (c *clientConnection) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return c.parent.stopping.Load()
	}
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses() {
	for {
		if c.stopped() {
			return
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		shardID, requestID, data, err := readFrame(conn, nil)
		if err != nil {
			if c.stopped() {
				return
			}
			Logger.Errorf("Error reading from %s: %v", c.endpoint, err)

			// every in-flight request on this connection is lost
			c.failPending(fmt.Errorf("error reading response from %s: %w", c.endpoint, err))

			if err := c.reconnect(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
				return
			}
			continue
		}

		if respCh, found := c.requestChans.LoadAndDelete(requestID); found {
			respCh <- responseResult{data: data}
		} else {
			Logger.Warningf("Received response for unknown request ID %d with shard ID %d", requestID, shardID)
		}
	}
}

// failPending delivers err to every request waiting on this connection
func (c *clientConnection) failPending(err error) {
	c.requestChans.Range(func(id uint64, _ chan responseResult) bool {
		// whoever removes the entry delivers the single result
		if ch, ok := c.requestChans.LoadAndDelete(id); ok {
			ch <- responseResult{err: err}
		}
		return true
	})
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	conn, err := c.parent.connector.Connect(c.endpoint, c.parent.config.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	c.conn = conn
	return nil
}
