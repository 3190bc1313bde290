package http

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

// DefaultConnectTimeout bounds the reachability check of Connect when the
// connect timeout is zero
const DefaultConnectTimeout = 20 * time.Second

// NewHttpClientTransport creates an http client transport.
//
// Timeouts map onto net/http as follows: ConnectTimeout is the dial timeout,
// ReadTimeout is the response header timeout. net/http has no write timeout
// for client requests, so WriteTimeout is ignored. Connect dials every endpoint
// once in declaration order and fails if none of them answers; the request
// connections themselves are pooled by net/http.
func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

// Factory builds http transports
var Factory = transport.NewFactory(NewHttpClientTransport)

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return errors.New("no endpoints provided")
	}

	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		parsedURL, err := url.Parse(server)
		if err != nil {
			return err
		}
		parsedURLs[i] = parsedURL
	}

	dialer := &net.Dialer{Timeout: config.ConnectTimeout}
	if err := checkEndpoints(parsedURLs, config.ConnectTimeout); err != nil {
		return err
	}

	t.client = &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: config.ReadTimeout,
		},
	}
	t.serverURLs = parsedURLs
	t.counter = 0

	return nil
}

func (t *httpClientTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	if t.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	// Select the next server via round-robin
	idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.serverURLs))
	requestURL := fmt.Sprintf("%s/%d", t.serverURLs[idx].String(), shardId)

	httpResponse, err := t.client.Post(requestURL, "application/octet-stream", bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}

	return io.ReadAll(httpResponse.Body)
}

func (t *httpClientTransport) Close() error {
	if t.client != nil {
		t.client.CloseIdleConnections()
	}

	t.client = nil
	t.serverURLs = nil

	return nil
}

// checkEndpoints dials each server once and succeeds if at least one accepts
func checkEndpoints(servers []*url.URL, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	reachable := 0
	var lastErr error
	for _, server := range servers {
		conn, err := net.DialTimeout("tcp", hostPort(server), timeout)
		if err != nil {
			Logger.Warningf("Failed to connect to %s: %v", server.Host, err)
			lastErr = err
			continue
		}
		_ = conn.Close()
		reachable++
	}

	if reachable == 0 {
		return fmt.Errorf("failed to connect to any endpoint: %w", lastErr)
	}
	Logger.Infof("%d out of %d http endpoints reachable", reachable, len(servers))
	return nil
}

// hostPort returns host:port of server, adding the scheme's default port
func hostPort(server *url.URL) string {
	if server.Port() != "" {
		return server.Host
	}
	if server.Scheme == "https" {
		return net.JoinHostPort(server.Hostname(), "443")
	}
	return net.JoinHostPort(server.Hostname(), "80")
}
