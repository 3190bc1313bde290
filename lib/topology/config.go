package topology

import (
	"fmt"
	"github.com/ValentinKolb/dKV-proxy/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/viper"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

var Logger = logger.GetLogger("topology")

// --------------------------------------------------------------------------
// Topology configuration
// --------------------------------------------------------------------------

// TopologyConfig is the parsed shard topology of both server pools.
//
// MetaShards keeps declaration order: the metadata pool is addressed by
// position (broadcast or round robin), so duplicate indices are accepted there.
// StoreShards is keyed by index because store requests are routed by a
// computed shard index; duplicate store indices are rejected when parsing.
//
// The shard clients are unconnected. A TopologyConfig is consumed by building
// exactly one registry from it.
type TopologyConfig struct {
	// Port is the port the proxy itself listens on
	Port int

	MetaOptions  ClientOptions
	StoreOptions ClientOptions

	MetaShards  []*ShardClient
	StoreShards map[ShardIndex]*ShardClient
}

// Load reads and parses the topology file at path. The format is taken from
// the file extension (toml, yaml, yml or json).
func Load(path string) (*TopologyConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read topology config %s: %w", path, err)
	}
	Logger.Infof("reading topology from %s", path)
	return Parse(v, strings.TrimPrefix(filepath.Ext(path), "."))
}

// LoadReader parses a topology from r in the given format (toml, yaml or json)
func LoadReader(r io.Reader, format string) (*TopologyConfig, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read topology config: %w", err)
	}
	return Parse(v, format)
}

// Parse validates the configuration held by v and builds the topology.
// format is the file format v was read from. Integer fields must be integers;
// only json, which has a single number kind, may spell them as whole floats.
// Only the structure of the declaration is checked; nothing is dialed.
func Parse(v *viper.Viper, format string) (*TopologyConfig, error) {
	root := section{
		values:      v.AllSettings(),
		wholeFloats: strings.EqualFold(format, "json"),
	}

	port, err := root.port("port")
	if err != nil {
		return nil, err
	}

	metaSection, err := root.table(string(PoolMeta))
	if err != nil {
		return nil, err
	}
	storeSection, err := root.table(string(PoolStore))
	if err != nil {
		return nil, err
	}

	cfg := &TopologyConfig{
		Port:        port,
		StoreShards: make(map[ShardIndex]*ShardClient),
	}

	if cfg.MetaOptions, err = readClientOptions(metaSection); err != nil {
		return nil, err
	}
	if cfg.StoreOptions, err = readClientOptions(storeSection); err != nil {
		return nil, err
	}

	// metadata shards: declaration order, duplicates tolerated
	metaShards, err := readShards(metaSection)
	if err != nil {
		return nil, err
	}
	seen := make(map[ShardIndex]int, len(metaShards))
	for pos, shard := range metaShards {
		if first, ok := seen[shard.Index()]; ok {
			Logger.Debugf("%s declares shard index %d twice (sharding[%d] and sharding[%d])",
				PoolMeta, shard.Index(), first, pos)
		} else {
			seen[shard.Index()] = pos
		}
	}
	cfg.MetaShards = metaShards

	// store shards: keyed by index, duplicates rejected
	storeShards, err := readShards(storeSection)
	if err != nil {
		return nil, err
	}
	positions := make(map[ShardIndex]int, len(storeShards))
	for pos, shard := range storeShards {
		if first, ok := positions[shard.Index()]; ok {
			return nil, &DuplicateShardIndexError{Pool: PoolStore, Index: shard.Index(), First: first, Second: pos}
		}
		positions[shard.Index()] = pos
		cfg.StoreShards[shard.Index()] = shard
	}

	return cfg, nil
}

// StoreIndices returns the store shard indices in ascending order
func (c *TopologyConfig) StoreIndices() []ShardIndex {
	indices := make([]ShardIndex, 0, len(c.StoreShards))
	for index := range c.StoreShards {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices
}

// String returns a formatted string representation of the topology
func (c *TopologyConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addShard := func(s *ShardClient) {
		endpoints := make([]string, len(s.endpoints))
		for i, e := range s.endpoints {
			endpoints[i] = e.Address()
		}
		addField(fmt.Sprintf("Shard %d", s.index), strings.Join(endpoints, ", "))
	}

	addSection("Proxy")
	addField("Port", strconv.Itoa(c.Port))

	addSection("Meta Server")
	addField("Connect Timeout", common.FormatTimeout(c.MetaOptions.ConnectTimeout))
	addField("Write Timeout", common.FormatTimeout(c.MetaOptions.WriteTimeout))
	addField("Read Timeout", common.FormatTimeout(c.MetaOptions.ReadTimeout))
	for _, s := range c.MetaShards {
		addShard(s)
	}

	addSection("Store Server")
	addField("Connect Timeout", common.FormatTimeout(c.StoreOptions.ConnectTimeout))
	addField("Write Timeout", common.FormatTimeout(c.StoreOptions.WriteTimeout))
	addField("Read Timeout", common.FormatTimeout(c.StoreOptions.ReadTimeout))
	for _, index := range c.StoreIndices() {
		addShard(c.StoreShards[index])
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Section readers
// --------------------------------------------------------------------------

func readClientOptions(pool section) (ClientOptions, error) {
	var opts ClientOptions
	var err error

	if opts.ConnectTimeout, err = pool.millis("connect_timeout_ms"); err != nil {
		return opts, err
	}
	if opts.WriteTimeout, err = pool.millis("write_timeout_ms"); err != nil {
		return opts, err
	}
	if opts.ReadTimeout, err = pool.millis("read_timeout_ms"); err != nil {
		return opts, err
	}

	Logger.Infof("reading rpc client options conf of %s, connect_timeout_ms=%d, write_timeout_ms=%d, read_timeout_ms=%d",
		pool.path, opts.ConnectTimeout.Milliseconds(), opts.WriteTimeout.Milliseconds(), opts.ReadTimeout.Milliseconds())
	return opts, nil
}

func readShards(pool section) ([]*ShardClient, error) {
	shardSections, err := pool.tables("sharding")
	if err != nil {
		return nil, err
	}

	shards := make([]*ShardClient, 0, len(shardSections))
	for _, shardSection := range shardSections {
		shard, err := readShard(shardSection)
		if err != nil {
			return nil, err
		}
		shards = append(shards, shard)
	}
	return shards, nil
}

func readShard(shard section) (*ShardClient, error) {
	index, err := shard.integer("index")
	if err != nil {
		return nil, err
	}
	if index < 0 || index > math.MaxInt32 {
		return nil, malformed(shard.field("index"), "shard index %d out of range", index)
	}

	serverSections, err := shard.tables("server")
	if err != nil {
		return nil, err
	}

	endpoints := make([]Endpoint, 0, len(serverSections))
	for _, server := range serverSections {
		ip, err := server.text("ip")
		if err != nil {
			return nil, err
		}
		port, err := server.port("port")
		if err != nil {
			return nil, err
		}
		Logger.Infof("read conf server, ip=%s, port=%d", ip, port)
		endpoints = append(endpoints, Endpoint{Host: ip, Port: port})
	}

	return NewShardClient(ShardIndex(index), endpoints), nil
}

// --------------------------------------------------------------------------
// Typed access to raw configuration values
// --------------------------------------------------------------------------

// section is one table of the raw configuration together with its path
type section struct {
	path   string
	values map[string]interface{}

	// wholeFloats accepts float64 values without fraction as integers
	wholeFloats bool
}

func (s section) field(key string) string {
	if s.path == "" {
		return key
	}
	return s.path + "." + key
}

func (s section) lookup(key string) (interface{}, error) {
	v, ok := s.values[key]
	if !ok || v == nil {
		return nil, malformed(s.field(key), "required field is missing")
	}
	return v, nil
}

func (s section) integer(key string) (int64, error) {
	v, err := s.lookup(key)
	if err != nil {
		return 0, err
	}
	n, ok := toInt64(v, s.wholeFloats)
	if !ok {
		return 0, malformed(s.field(key), "expected an integer, got %T", v)
	}
	return n, nil
}

func (s section) port(key string) (int, error) {
	n, err := s.integer(key)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > 65535 {
		return 0, malformed(s.field(key), "port %d out of range 1-65535", n)
	}
	return int(n), nil
}

func (s section) millis(key string) (time.Duration, error) {
	n, err := s.integer(key)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, malformed(s.field(key), "timeout must not be negative, got %d", n)
	}
	if n > math.MaxInt64/int64(time.Millisecond) {
		return 0, malformed(s.field(key), "timeout %d ms is too large", n)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func (s section) text(key string) (string, error) {
	v, err := s.lookup(key)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", malformed(s.field(key), "expected a string, got %T", v)
	}
	if strings.TrimSpace(str) == "" {
		return "", malformed(s.field(key), "must not be empty")
	}
	return str, nil
}

func (s section) table(key string) (section, error) {
	v, err := s.lookup(key)
	if err != nil {
		return section{}, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return section{}, malformed(s.field(key), "expected a table, got %T", v)
	}
	return section{path: s.field(key), values: m, wholeFloats: s.wholeFloats}, nil
}

// tables reads a non-empty list of tables
func (s section) tables(key string) ([]section, error) {
	v, err := s.lookup(key)
	if err != nil {
		return nil, err
	}

	var items []interface{}
	switch list := v.(type) {
	case []interface{}:
		items = list
	case []map[string]interface{}:
		for _, m := range list {
			items = append(items, m)
		}
	default:
		return nil, malformed(s.field(key), "expected a list of tables, got %T", v)
	}

	if len(items) == 0 {
		return nil, malformed(s.field(key), "list must not be empty")
	}

	result := make([]section, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", s.field(key), i)
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, malformed(path, "expected a table, got %T", item)
		}
		result[i] = section{path: path, values: m, wholeFloats: s.wholeFloats}
	}
	return result, nil
}

// toInt64 accepts integer kinds. With wholeFloats set, a float64 without
// fraction is accepted too, since JSON decodes every number as float64.
func toInt64(v interface{}, wholeFloats bool) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		if !wholeFloats || n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
