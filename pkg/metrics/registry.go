package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/deptree/pkg/observability"
)

// Registry holds all metrics for the application.
type Registry struct {
	// Engine
	LayoutsTotal     prometheus.Counter
	LayoutDuration   prometheus.Histogram
	LayoutNodes      prometheus.Histogram
	LayoutWarnings   prometheus.Counter
	MemoLookupsTotal *prometheus.CounterVec
	RendersTotal     *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	ClicksTotal      *prometheus.CounterVec
	TogglesTotal     *prometheus.CounterVec

	// Cache
	CacheLookupsTotal *prometheus.CounterVec
	CacheWrittenBytes *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Sessions
	SessionsActive prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initEngineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Install registers r as the engine, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetEngineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

var (
	_ observability.EngineHooks = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
	_ observability.HTTPHooks   = (*Registry)(nil)
)
