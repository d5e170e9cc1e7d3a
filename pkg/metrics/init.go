package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	r.LayoutsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "deptree_layouts_total",
			Help: "Total number of layout computations",
		},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deptree_layout_duration_seconds",
			Help:    "Layout computation latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	r.LayoutNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deptree_layout_nodes",
			Help:    "Number of positioned nodes per layout",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		},
	)

	r.LayoutWarnings = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "deptree_layout_cycle_warnings_total",
			Help: "Total number of branches cut by the cycle guard",
		},
	)

	r.MemoLookupsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptree_layout_memo_lookups_total",
			Help: "Layout memo lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	r.RendersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptree_renders_total",
			Help: "Total number of frames drawn",
		},
		[]string{"surface"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deptree_render_duration_seconds",
			Help:    "Frame drawing latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"surface"},
	)

	r.ClicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptree_clicks_total",
			Help: "Resolved clicks by result",
		},
		[]string{"result"}, // hit, miss
	)

	r.TogglesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptree_toggles_total",
			Help: "Expand/collapse transitions",
		},
		[]string{"action"}, // expand, collapse
	)

	r.SessionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "deptree_sessions_active",
			Help: "Number of open explorer sessions",
		},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheLookupsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptree_cache_lookups_total",
			Help: "Artifact cache lookups by namespace and result",
		},
		[]string{"namespace", "result"},
	)

	r.CacheWrittenBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptree_cache_written_bytes_total",
			Help: "Bytes written to the artifact cache",
		},
		[]string{"namespace"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "deptree_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deptree_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "deptree_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}
