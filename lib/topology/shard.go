package topology

import (
	"errors"
	"github.com/ValentinKolb/dKV-proxy/lib/api"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
)

// ShardClient bundles one shard's endpoints with the transport and the typed
// service proxy built for it.
//
// The endpoint list is fixed at construction. Transport and proxy are attached
// exactly once, while the registry is being built; afterwards the value is
// read-only and may be shared between goroutines without locking.
type ShardClient struct {
	index     ShardIndex
	endpoints []Endpoint

	attached  bool
	transport transport.IRPCClientTransport
	meta      api.IMetaService
	store     api.IStoreService
}

// NewShardClient creates an unconnected shard client. The endpoint slice is copied.
func NewShardClient(index ShardIndex, endpoints []Endpoint) *ShardClient {
	return &ShardClient{
		index:     index,
		endpoints: append([]Endpoint(nil), endpoints...),
	}
}

// Index returns the shard's declared index
func (s *ShardClient) Index() ShardIndex {
	return s.index
}

// Endpoints returns a copy of the shard's endpoints in declaration order
func (s *ShardClient) Endpoints() []Endpoint {
	return append([]Endpoint(nil), s.endpoints...)
}

// Transport returns the attached transport, or nil before attachment
func (s *ShardClient) Transport() transport.IRPCClientTransport {
	return s.transport
}

// Meta returns the metadata service proxy. It is nil for store shards.
func (s *ShardClient) Meta() api.IMetaService {
	return s.meta
}

// Store returns the store service proxy. It is nil for metadata shards.
func (s *ShardClient) Store() api.IStoreService {
	return s.store
}

// Attached reports whether a transport has been attached
func (s *ShardClient) Attached() bool {
	return s.attached
}

// AttachMeta attaches the transport and metadata proxy of a metadata shard
func (s *ShardClient) AttachMeta(t transport.IRPCClientTransport, meta api.IMetaService) error {
	if meta == nil {
		return errors.New("attach: metadata proxy is nil")
	}
	if err := s.attach(t); err != nil {
		return err
	}
	s.meta = meta
	return nil
}

// AttachStore attaches the transport and store proxy of a store shard
func (s *ShardClient) AttachStore(t transport.IRPCClientTransport, store api.IStoreService) error {
	if store == nil {
		return errors.New("attach: store proxy is nil")
	}
	if err := s.attach(t); err != nil {
		return err
	}
	s.store = store
	return nil
}

func (s *ShardClient) attach(t transport.IRPCClientTransport) error {
	if s.attached {
		return ErrAlreadyAttached
	}
	if t == nil {
		return errors.New("attach: transport is nil")
	}
	s.transport = t
	s.attached = true
	return nil
}

// Close closes the attached transport. It is only used to roll back a failed
// registry initialisation.
func (s *ShardClient) Close() error {
	if s.transport == nil {
		return nil
	}
	return s.transport.Close()
}
