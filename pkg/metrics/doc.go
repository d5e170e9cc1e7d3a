// Package metrics exposes Prometheus metrics for the layout engine, the
// artifact cache and the HTTP surface.
//
// A [Registry] implements the hook interfaces of package observability, so
// installing it is a matter of
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	http.Handle("/metrics", reg.Handler())
package metrics
