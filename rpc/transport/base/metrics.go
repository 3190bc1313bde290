package base

import (
	gometrics "github.com/rcrowley/go-metrics"
	"io"
	"time"
)

// Metrics holds the client transport metrics of every connector
var Metrics = gometrics.NewRegistry()

type transportMetrics struct {
	send        gometrics.Timer
	errors      gometrics.Counter
	connections gometrics.Counter
}

// newTransportMetrics registers (or reuses) the metrics of one transport type
func newTransportMetrics(name string) *transportMetrics {
	prefix := "transport." + name + "."
	return &transportMetrics{
		send:        gometrics.GetOrRegisterTimer(prefix+"send", Metrics),
		errors:      gometrics.GetOrRegisterCounter(prefix+"errors", Metrics),
		connections: gometrics.GetOrRegisterCounter(prefix+"connections", Metrics),
	}
}

// WriteMetrics writes a human-readable snapshot of the transport metrics to w
func WriteMetrics(w io.Writer) {
	gometrics.WriteOnce(Metrics, w)
}

// LogMetrics periodically logs the transport metrics until stop is closed
func LogMetrics(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			Metrics.Each(func(name string, m interface{}) {
				switch metric := m.(type) {
				case gometrics.Counter:
					Logger.Debugf("%s count=%d", name, metric.Count())
				case gometrics.Timer:
					Logger.Debugf("%s count=%d mean=%s p99=%s", name, metric.Count(),
						time.Duration(metric.Mean()), time.Duration(metric.Percentile(0.99)))
				}
			})
		}
	}
}
