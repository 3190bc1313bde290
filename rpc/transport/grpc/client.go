package grpc

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/resolver"
	"google.golang.org/grpc/resolver/manual"
	"strconv"
	"sync/atomic"
	"time"
)

const (
	// SendMethod is the full method name every request is sent to
	SendMethod = "/dkv.proxy.Shard/Send"
	// ShardIDHeader is the request metadata key carrying the shard id
	ShardIDHeader = "dkv-shard-id"

	// DefaultMinConnectTimeout bounds the initial connect and each reconnect
	// attempt when the connect timeout is zero
	DefaultMinConnectTimeout = 20 * time.Second
)

var Logger = logger.GetLogger("transport/rpc")

// --------------------------------------------------------------------------
// Raw codec
// --------------------------------------------------------------------------

// Frame is one serialized request or response
type Frame struct {
	Data []byte
}

// Codec sends frames as they are. The payload is already encoded by an
// IRPCSerializer, so no protobuf schema is involved.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	f, ok := v.(*Frame)
	if !ok {
		return nil, fmt.Errorf("grpc codec: unexpected message type %T", v)
	}
	return f.Data, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	f, ok := v.(*Frame)
	if !ok {
		return fmt.Errorf("grpc codec: unexpected message type %T", v)
	}
	f.Data = append([]byte(nil), data...)
	return nil
}

func (Codec) Name() string {
	return "dkv-raw"
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// NewGrpcClientTransport creates a gRPC client transport.
//
// All endpoints of a shard are handed to one grpc.ClientConn, which tries them
// in declaration order (pick_first). Connect waits until one of them is ready
// and fails once all of them have been tried without success. ConnectTimeout
// (DefaultMinConnectTimeout when zero) bounds the initial connect and each
// reconnect attempt. gRPC has a single deadline per call: it
// is set to WriteTimeout+ReadTimeout when both are positive, otherwise calls
// have no deadline.
func NewGrpcClientTransport() transport.IRPCClientTransport {
	return &grpcClientTransport{}
}

// Factory builds gRPC transports
var Factory = transport.NewFactory(NewGrpcClientTransport)

type grpcClientTransport struct {
	conn        atomic.Pointer[grpc.ClientConn]
	callTimeout time.Duration
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *grpcClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return errors.New("no endpoints provided")
	}
	_ = t.Close()

	addresses := make([]resolver.Address, len(config.Endpoints))
	for i, endpoint := range config.Endpoints {
		addresses[i] = resolver.Address{Addr: endpoint}
	}
	r := manual.NewBuilderWithScheme("dkv-proxy")
	r.InitialState(resolver.State{Addresses: addresses})

	params := grpc.ConnectParams{
		Backoff:           backoff.DefaultConfig,
		MinConnectTimeout: DefaultMinConnectTimeout,
	}
	if config.ConnectTimeout > 0 {
		params.MinConnectTimeout = config.ConnectTimeout
	}

	conn, err := grpc.NewClient(r.Scheme()+":///shard",
		grpc.WithResolvers(r),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(params),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	)
	if err != nil {
		return fmt.Errorf("failed to create grpc client: %w", err)
	}

	if err := waitReady(conn, params.MinConnectTimeout); err != nil {
		_ = conn.Close()
		return err
	}

	t.callTimeout = 0
	if config.WriteTimeout > 0 && config.ReadTimeout > 0 {
		t.callTimeout = config.WriteTimeout + config.ReadTimeout
	}
	t.conn.Store(conn)

	Logger.Debugf("grpc transport connected to %v", config.Endpoints)
	return nil
}

func (t *grpcClientTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	conn := t.conn.Load()
	if conn == nil {
		return nil, errors.New("grpc transport not initialized")
	}

	ctx := context.Background()
	if t.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.callTimeout)
		defer cancel()
	}
	ctx = metadata.AppendToOutgoingContext(ctx, ShardIDHeader, strconv.FormatUint(shardId, 10))

	resp := &Frame{}
	if err := conn.Invoke(ctx, SendMethod, &Frame{Data: req}, resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (t *grpcClientTransport) Close() error {
	if conn := t.conn.Swap(nil); conn != nil {
		return conn.Close()
	}
	return nil
}

// waitReady connects conn and blocks until it is ready. It fails when
// timeout expires or when every address has failed (transient failure).
func waitReady(conn *grpc.ClientConn, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn.Connect()
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.TransientFailure, connectivity.Shutdown:
			return fmt.Errorf("failed to connect to any endpoint (state %s)", state)
		}
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("failed to connect within %s (state %s): %w", timeout, state, ctx.Err())
		}
	}
}
