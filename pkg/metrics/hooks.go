package metrics

import (
	"context"
	"strconv"
	"time"
)

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// OnLayout records a layout computation.
func (r *Registry) OnLayout(nodes, _ int, warnings int, d time.Duration) {
	r.LayoutsTotal.Inc()
	r.LayoutDuration.Observe(d.Seconds())
	r.LayoutNodes.Observe(float64(nodes))
	r.LayoutWarnings.Add(float64(warnings))
}

// OnMemo records a layout memo lookup.
func (r *Registry) OnMemo(hit bool) {
	r.MemoLookupsTotal.WithLabelValues(hitLabel(hit)).Inc()
}

// OnRender records a drawn frame.
func (r *Registry) OnRender(surface string, _, _ int, d time.Duration) {
	r.RendersTotal.WithLabelValues(surface).Inc()
	r.RenderDuration.WithLabelValues(surface).Observe(d.Seconds())
}

// OnClick records a resolved click.
func (r *Registry) OnClick(hit bool) {
	r.ClicksTotal.WithLabelValues(hitLabel(hit)).Inc()
}

// OnToggle records an expand or collapse.
func (r *Registry) OnToggle(_ string, expanded bool) {
	action := "collapse"
	if expanded {
		action = "expand"
	}
	r.TogglesTotal.WithLabelValues(action).Inc()
}

func (r *Registry) OnCacheHit(_ context.Context, namespace string) {
	r.CacheLookupsTotal.WithLabelValues(namespace, "hit").Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, namespace string) {
	r.CacheLookupsTotal.WithLabelValues(namespace, "miss").Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, namespace string, size int) {
	r.CacheWrittenBytes.WithLabelValues(namespace).Add(float64(size))
}

// OnRequest marks a request in flight.
func (r *Registry) OnRequest(_ context.Context, _, _ string) {
	r.HTTPRequestsInFlight.Inc()
}

// OnResponse records a finished request.
func (r *Registry) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// SetSessions reports the number of open sessions.
func (r *Registry) SetSessions(n int) {
	r.SessionsActive.Set(float64(n))
}
