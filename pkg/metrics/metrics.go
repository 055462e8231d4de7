package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "shokoz"

// Metrics holds the counters shared by the resolver, metadata and sync paths
type Metrics struct {
	ShowCacheRequests  *prometheus.CounterVec
	ShowResolveSeconds prometheus.Histogram
	SeasonMetadata     *prometheus.CounterVec
	SyncActions        *prometheus.CounterVec
	SyncQueueDepth     prometheus.Gauge
	ScanProgress       prometheus.Gauge
}

// New creates and registers metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ShowCacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "show_requests_total",
			Help:      "Show resolutions by cache outcome.",
		}, []string{"outcome"}),
		ShowResolveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "show_resolve_duration_seconds",
			Help:      "Time spent building a show from Shoko on a cache miss.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SeasonMetadata: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "season_requests_total",
			Help:      "Season metadata requests by result.",
		}, []string{"result"}),
		SyncActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "actions_total",
			Help:      "User data sync actions by kind and result.",
		}, []string{"action", "result"}),
		SyncQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "queue_depth",
			Help:      "Sync tasks waiting for a worker.",
		}),
		ScanProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "scan_progress_ratio",
			Help:      "Completed fraction of the running library scan.",
		}),
	}

	reg.MustRegister(
		m.ShowCacheRequests,
		m.ShowResolveSeconds,
		m.SeasonMetadata,
		m.SyncActions,
		m.SyncQueueDepth,
		m.ScanProgress,
	)

	return m
}

// Discard returns metrics registered nowhere
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}

// OrDiscard returns m, or unregistered metrics when m is nil
func OrDiscard(m *Metrics) *Metrics {
	if m == nil {
		return Discard()
	}
	return m
}
