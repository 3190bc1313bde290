package registry

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/lib/api"
	"github.com/ValentinKolb/dKV-proxy/lib/topology"
	"github.com/ValentinKolb/dKV-proxy/rpc/client"
	"github.com/ValentinKolb/dKV-proxy/rpc/serializer"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport"
	"github.com/ValentinKolb/dKV-proxy/rpc/transport/tcp"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("registry")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// MetaProxyBuilder builds the metadata service proxy of one shard over its transport
type MetaProxyBuilder func(shardId uint64, t transport.IRPCClientTransport, s serializer.IRPCSerializer) api.IMetaService

// StoreProxyBuilder builds the store service proxy of one shard over its transport
type StoreProxyBuilder func(shardId uint64, t transport.IRPCClientTransport, s serializer.IRPCSerializer) api.IStoreService

type options struct {
	factory      transport.Factory
	serializer   serializer.IRPCSerializer
	metaBuilder  MetaProxyBuilder
	storeBuilder StoreProxyBuilder
}

// Option configures how New builds transports and proxies
type Option func(*options)

// WithTransportFactory sets the factory used for every shard transport (default: tcp)
func WithTransportFactory(f transport.Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithSerializer sets the serializer handed to the proxy builders (default: binary)
func WithSerializer(s serializer.IRPCSerializer) Option {
	return func(o *options) { o.serializer = s }
}

// WithMetaProxyBuilder replaces client.NewRPCMetaService
func WithMetaProxyBuilder(b MetaProxyBuilder) Option {
	return func(o *options) { o.metaBuilder = b }
}

// WithStoreProxyBuilder replaces client.NewRPCStoreService
func WithStoreProxyBuilder(b StoreProxyBuilder) Option {
	return func(o *options) { o.storeBuilder = b }
}

func buildOptions(opts []Option) (*options, error) {
	o := &options{
		factory:      tcp.Factory,
		serializer:   serializer.NewBinarySerializer(),
		metaBuilder:  client.NewRPCMetaService,
		storeBuilder: client.NewRPCStoreService,
	}
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case o.factory == nil:
		return nil, errors.New("transport factory is nil")
	case o.serializer == nil:
		return nil, errors.New("serializer is nil")
	case o.metaBuilder == nil || o.storeBuilder == nil:
		return nil, errors.New("proxy builder is nil")
	}
	return o, nil
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

// Registry holds a connected transport and a typed service proxy for every
// shard of both pools. It is read-only once New returns and can be shared
// between goroutines without further synchronization.
type Registry struct {
	port         int
	metaOptions  topology.ClientOptions
	storeOptions topology.ClientOptions
	metaShards   []*topology.ShardClient
	storeShards  map[topology.ShardIndex]*topology.ShardClient
	storeIndices []topology.ShardIndex
}

// New builds a transport and proxy for every shard of cfg: the metadata shards
// in declaration order, then the store shards in ascending index order. Each
// pool's transports are built with that pool's ClientOptions.
//
// If any shard fails, all transports built so far are closed and no registry
// is returned. The shards of cfg are consumed either way; build a new
// TopologyConfig to try again.
func New(cfg *topology.TopologyConfig, opts ...Option) (r *Registry, err error) {
	defer func() {
		if err != nil {
			initError.Inc()
			Logger.Errorf("registry initialisation failed: %v", err)
		} else {
			initOK.Inc()
		}
	}()

	if cfg == nil {
		return nil, errors.New("topology config is nil")
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.MetaOptions.Validate(); err != nil {
		return nil, fmt.Errorf("%s options: %w", topology.PoolMeta, err)
	}
	if err := cfg.StoreOptions.Validate(); err != nil {
		return nil, fmt.Errorf("%s options: %w", topology.PoolStore, err)
	}

	var built []*topology.ShardClient
	defer func() {
		if err == nil {
			return
		}
		for _, shard := range built {
			if closeErr := shard.Close(); closeErr != nil {
				Logger.Warningf("failed to close transport of shard %d during rollback: %v", shard.Index(), closeErr)
			}
		}
	}()

	for _, shard := range cfg.MetaShards {
		t, err := buildTransport(o.factory, topology.PoolMeta, cfg.MetaOptions, shard)
		if err != nil {
			return nil, err
		}
		if err := shard.AttachMeta(t, o.metaBuilder(uint64(shard.Index()), t, o.serializer)); err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("%s shard %d: %w", topology.PoolMeta, shard.Index(), err)
		}
		built = append(built, shard)
		transportsMeta.Inc()
	}

	storeIndices := cfg.StoreIndices()
	for _, index := range storeIndices {
		shard := cfg.StoreShards[index]
		t, err := buildTransport(o.factory, topology.PoolStore, cfg.StoreOptions, shard)
		if err != nil {
			return nil, err
		}
		if err := shard.AttachStore(t, o.storeBuilder(uint64(shard.Index()), t, o.serializer)); err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("%s shard %d: %w", topology.PoolStore, shard.Index(), err)
		}
		built = append(built, shard)
		transportsStore.Inc()
	}

	// the registry owns its own shard collections; cfg stays with the caller
	r = &Registry{
		port:         cfg.Port,
		metaOptions:  cfg.MetaOptions,
		storeOptions: cfg.StoreOptions,
		metaShards:   append([]*topology.ShardClient(nil), cfg.MetaShards...),
		storeShards:  make(map[topology.ShardIndex]*topology.ShardClient, len(storeIndices)),
		storeIndices: storeIndices,
	}
	for _, index := range storeIndices {
		r.storeShards[index] = cfg.StoreShards[index]
	}

	metaShardCount.Store(int64(len(r.metaShards)))
	storeShardCount.Store(int64(len(r.storeShards)))
	Logger.Infof("registry ready: %d %s shards, %d %s shards",
		len(r.metaShards), topology.PoolMeta, len(r.storeShards), topology.PoolStore)

	return r, nil
}

func buildTransport(factory transport.Factory, pool topology.Pool, opts topology.ClientOptions, shard *topology.ShardClient) (transport.IRPCClientTransport, error) {
	config := opts.ClientConfig(shard.Endpoints())

	t, err := factory(config)
	if err == nil && t == nil {
		err = errors.New("factory returned no transport")
	}
	if err != nil {
		return nil, &TransportConstructionError{Pool: pool, Index: shard.Index(), Err: err}
	}

	Logger.Infof("connected %s shard %d to %v (%s)", pool, shard.Index(), config.Endpoints, opts)
	return t, nil
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Port returns the port the proxy listens on
func (r *Registry) Port() int {
	return r.port
}

// MetaShards returns the metadata shards in declaration order
func (r *Registry) MetaShards() []*topology.ShardClient {
	return append([]*topology.ShardClient(nil), r.metaShards...)
}

// StoreShard returns the store shard with the given index
func (r *Registry) StoreShard(index topology.ShardIndex) (*topology.ShardClient, error) {
	shard, ok := r.storeShards[index]
	if !ok {
		lookupMiss.Inc()
		return nil, &UnknownShardError{Index: index}
	}
	lookupHit.Inc()
	return shard, nil
}

// StoreShardIndices returns the store shard indices in ascending order
func (r *Registry) StoreShardIndices() []topology.ShardIndex {
	return append([]topology.ShardIndex(nil), r.storeIndices...)
}

// Config returns a snapshot of the topology the registry was built from.
// The shard collections are copies; changing them does not affect r.
func (r *Registry) Config() *topology.TopologyConfig {
	cfg := &topology.TopologyConfig{
		Port:         r.port,
		MetaOptions:  r.metaOptions,
		StoreOptions: r.storeOptions,
		MetaShards:   append([]*topology.ShardClient(nil), r.metaShards...),
		StoreShards:  make(map[topology.ShardIndex]*topology.ShardClient, len(r.storeShards)),
	}
	for index, shard := range r.storeShards {
		cfg.StoreShards[index] = shard
	}
	return cfg
}

// String returns the topology of the registry
func (r *Registry) String() string {
	return r.Config().String()
}
