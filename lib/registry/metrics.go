package registry

import (
	"github.com/VictoriaMetrics/metrics"
	"io"
	"sync/atomic"
)

var (
	metricSet = metrics.NewSet()

	initOK    = metricSet.NewCounter(`dkv_proxy_registry_init_total{result="ok"}`)
	initError = metricSet.NewCounter(`dkv_proxy_registry_init_total{result="error"}`)

	lookupHit  = metricSet.NewCounter(`dkv_proxy_store_shard_lookups_total{result="hit"}`)
	lookupMiss = metricSet.NewCounter(`dkv_proxy_store_shard_lookups_total{result="miss"}`)

	transportsMeta  = metricSet.NewCounter(`dkv_proxy_transports_built_total{pool="meta"}`)
	transportsStore = metricSet.NewCounter(`dkv_proxy_transports_built_total{pool="store"}`)

	// shard counts of the most recently built registry
	metaShardCount  atomic.Int64
	storeShardCount atomic.Int64
)

func init() {
	metricSet.NewGauge(`dkv_proxy_shards{pool="meta"}`, func() float64 {
		return float64(metaShardCount.Load())
	})
	metricSet.NewGauge(`dkv_proxy_shards{pool="store"}`, func() float64 {
		return float64(storeShardCount.Load())
	})
}

// WriteMetrics writes the registry metrics in Prometheus text format
func WriteMetrics(w io.Writer) {
	metricSet.WritePrometheus(w)
}
