package raftlog

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and histograms a host service can register
// with its own prometheus.Registerer to observe DurableLog activity. A nil
// *Metrics (the zero value returned by NewMetrics is never nil, but callers
// may choose not to wire one in at all) simply means DurableLog skips
// instrumentation — see durablelog.go's nil checks.
type Metrics struct {
	Appends   prometheus.Counter
	SyncTime  prometheus.Histogram
	Truncates prometheus.Counter
}

// NewMetrics builds a fresh set of collectors with the raftlog_ prefix.
// Callers register the embedded collectors with their own registry; this
// package never registers with prometheus.DefaultRegisterer itself, since
// owning global registration state is a host concern (spec.md §6 keeps
// transport/hosting concerns external).
func NewMetrics() *Metrics {
	return &Metrics{
		Appends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftlog_appends_total",
			Help: "Number of entries durably appended to the log.",
		}),
		SyncTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "raftlog_sync_seconds",
			Help: "Latency of flush+fsync calls against the log file.",
		}),
		Truncates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftlog_truncates_total",
			Help: "Number of delete_suffix calls applied to the log.",
		}),
	}
}

// Collectors returns every collector so a caller can register them in one
// call: registry.MustRegister(m.Collectors()...).
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Appends, m.SyncTime, m.Truncates}
}
