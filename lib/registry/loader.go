package registry

import (
	"github.com/ValentinKolb/dKV-proxy/lib/topology"
	"os"
	"sync"
	"sync/atomic"
)

const (
	// DefaultConfigPath is read by Instance unless ConfigPathEnv is set
	DefaultConfigPath = "proxy.toml"
	// ConfigPathEnv overrides DefaultConfigPath for the process-wide loader
	ConfigPathEnv = "DKV_PROXY_CONFIG"
)

// Loader builds a Registry from a configuration file exactly once.
//
// The first successful Get or GetFrom reads the file, builds every shard
// transport and publishes the result; every later call returns that same
// Registry without touching the file again. Concurrent callers during the
// first initialisation block until it finishes and then observe its outcome.
//
// This is the construction of sync.Once (atomic fast path, mutex slow path)
// with one difference: a failed attempt publishes nothing, so the next call
// starts again from scratch.
type Loader struct {
	defaultPath string
	opts        []Option

	mu       sync.Mutex
	instance atomic.Pointer[Registry]
}

// NewLoader creates a loader reading defaultPath. The options are passed to New.
func NewLoader(defaultPath string, opts ...Option) *Loader {
	return &Loader{
		defaultPath: defaultPath,
		opts:        opts,
	}
}

// Get returns the registry, initialising it from the default path if necessary
func (l *Loader) Get() (*Registry, error) {
	return l.GetFrom(l.defaultPath)
}

// GetFrom returns the registry, initialising it from path if necessary.
// Once a registry exists, path is ignored.
func (l *Loader) GetFrom(path string) (*Registry, error) {
	if r := l.instance.Load(); r != nil {
		return r, nil
	}
	return l.initSlow(path)
}

func (l *Loader) initSlow(path string) (*Registry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r := l.instance.Load(); r != nil {
		return r, nil
	}

	cfg, err := topology.Load(path)
	if err != nil {
		Logger.Errorf("failed to load topology: %v", err)
		return nil, err
	}

	r, err := New(cfg, l.opts...)
	if err != nil {
		return nil, err
	}

	l.instance.Store(r)
	return r, nil
}

// Initialized reports whether a registry has been published
func (l *Loader) Initialized() bool {
	return l.instance.Load() != nil
}

// --------------------------------------------------------------------------
// Process-wide instance
// --------------------------------------------------------------------------

var global = NewLoader(configPathFromEnv())

func configPathFromEnv() string {
	if path, ok := os.LookupEnv(ConfigPathEnv); ok && path != "" {
		return path
	}
	return DefaultConfigPath
}

// Instance returns the process-wide registry, built with the default transport
// and serializer from DefaultConfigPath (or the file named by ConfigPathEnv).
func Instance() (*Registry, error) {
	return global.Get()
}

// InstanceFrom returns the process-wide registry, initialising it from path if
// it does not exist yet.
func InstanceFrom(path string) (*Registry, error) {
	return global.GetFrom(path)
}
