package base

import (
	"bytes"
	"errors"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"net"
	"sync"
	"testing"
	"time"
)

// recordingConnector dials tcp and remembers the order and timeouts of all dials
type recordingConnector struct {
	mu       sync.Mutex
	dialed   []string
	timeouts []time.Duration
}

func (c *recordingConnector) GetName() string { return "test" }

func (c *recordingConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	c.mu.Lock()
	c.dialed = append(c.dialed, endpoint)
	c.timeouts = append(c.timeouts, timeout)
	c.mu.Unlock()
	return net.DialTimeout("tcp", endpoint, timeout)
}

// startFrameServer starts a server that answers every frame with handler(payload).
// A nil response means the request is swallowed.
func startFrameServer(t *testing.T, handler func(shardID uint64, data []byte) []byte) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				for {
					shardID, requestID, data, err := readFrame(conn, nil)
					if err != nil {
						return
					}
					if resp := handler(shardID, data); resp != nil {
						if err := writeFrame(conn, shardID, requestID, resp); err != nil {
							return
						}
					}
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

// unusedAddress returns an address nothing listens on
func unusedAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()
	return addr
}

func TestSendRoundTrip(t *testing.T) {
	addr := startFrameServer(t, func(shardID uint64, data []byte) []byte {
		return append([]byte{byte(shardID)}, data...)
	})

	tr := NewBaseClientTransport(&recordingConnector{})
	if err := tr.Connect(common.ClientConfig{Endpoints: []string{addr}, ReadTimeout: time.Second}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Close()

	resp, err := tr.Send(7, []byte("ping"))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !bytes.Equal(resp, []byte("\x07ping")) {
		t.Errorf("Unexpected response %q", resp)
	}
}

func TestConcurrentSends(t *testing.T) {
	addr := startFrameServer(t, func(_ uint64, data []byte) []byte { return data })

	tr := NewBaseClientTransport(&recordingConnector{})
	if err := tr.Connect(common.ClientConfig{Endpoints: []string{addr}, ConnectionsPerEndpoint: 2, ReadTimeout: 2 * time.Second}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte{byte(i)}
			resp, err := tr.Send(1, payload)
			if err != nil {
				t.Errorf("Send %d failed: %v", i, err)
				return
			}
			if !bytes.Equal(resp, payload) {
				t.Errorf("Send %d got response %v", i, resp)
			}
		}(i)
	}
	wg.Wait()
}

func TestSendReadTimeout(t *testing.T) {
	addr := startFrameServer(t, func(uint64, []byte) []byte { return nil })

	tr := NewBaseClientTransport(&recordingConnector{})
	if err := tr.Connect(common.ClientConfig{Endpoints: []string{addr}, ReadTimeout: 50 * time.Millisecond}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Close()

	_, err := tr.Send(1, []byte("ping"))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

func TestCloseUnblocksPendingSend(t *testing.T) {
	received := make(chan struct{}, 1)
	addr := startFrameServer(t, func(uint64, []byte) []byte {
		received <- struct{}{}
		return nil
	})

	tr := NewBaseClientTransport(&recordingConnector{})
	if err := tr.Connect(common.ClientConfig{Endpoints: []string{addr}}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.Send(1, []byte("ping"))
		errCh <- err
	}()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("Server never received the request")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send still blocked after Close")
	}
}

func TestConnectDialsInDeclarationOrder(t *testing.T) {
	first := startFrameServer(t, func(_ uint64, d []byte) []byte { return d })
	second := startFrameServer(t, func(_ uint64, d []byte) []byte { return d })

	connector := &recordingConnector{}
	tr := NewBaseClientTransport(connector)
	config := common.ClientConfig{
		Endpoints:      []string{second, first},
		ConnectTimeout: 300 * time.Millisecond,
	}
	if err := tr.Connect(config); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Close()

	if len(connector.dialed) != 2 || connector.dialed[0] != second || connector.dialed[1] != first {
		t.Errorf("Expected dial order [%s %s], got %v", second, first, connector.dialed)
	}
	for i, timeout := range connector.timeouts {
		if timeout != 300*time.Millisecond {
			t.Errorf("Dial %d used timeout %s, expected 300ms", i, timeout)
		}
	}
}

func TestConnectToleratesPartialFailure(t *testing.T) {
	alive := startFrameServer(t, func(_ uint64, d []byte) []byte { return d })

	tr := NewBaseClientTransport(&recordingConnector{})
	if err := tr.Connect(common.ClientConfig{Endpoints: []string{unusedAddress(t), alive}}); err != nil {
		t.Fatalf("Connect should succeed with one reachable endpoint: %v", err)
	}
	defer tr.Close()

	if _, err := tr.Send(1, []byte("x")); err != nil {
		t.Errorf("Send failed: %v", err)
	}
}

func TestConnectErrors(t *testing.T) {
	tr := NewBaseClientTransport(&recordingConnector{})

	if err := tr.Connect(common.ClientConfig{}); !errors.Is(err, ErrNoEndpoints) {
		t.Errorf("Expected ErrNoEndpoints, got %v", err)
	}

	err := tr.Connect(common.ClientConfig{Endpoints: []string{unusedAddress(t)}, ConnectTimeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("Expected an error when no endpoint is reachable")
	}
}

func TestSendAfterClose(t *testing.T) {
	addr := startFrameServer(t, func(_ uint64, d []byte) []byte { return d })

	tr := NewBaseClientTransport(&recordingConnector{})
	if err := tr.Connect(common.ClientConfig{Endpoints: []string{addr}}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := tr.Send(1, []byte("x")); !errors.Is(err, ErrNoConnections) {
		t.Errorf("Expected ErrNoConnections, got %v", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, 3, 99, []byte("payload")); err != nil {
		t.Fatalf("writeFrame failed: %v", err)
	}
	if buf.Len() != frameHeaderSize+len("payload") {
		t.Fatalf("Unexpected frame size %d", buf.Len())
	}

	shardID, requestID, data, err := readFrame(&buf, make([]byte, 2))
	if err != nil {
		t.Fatalf("readFrame failed: %v", err)
	}
	if shardID != 3 || requestID != 99 || string(data) != "payload" {
		t.Errorf("Unexpected frame (%d, %d, %q)", shardID, requestID, data)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, 1, 1, []byte("abcdef")); err != nil {
		t.Fatalf("writeFrame failed: %v", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])

	if _, _, _, err := readFrame(truncated, nil); err == nil {
		t.Error("Expected error for truncated frame")
	}
}
