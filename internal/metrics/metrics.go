// Package metrics provides Prometheus metrics for the dashboard daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the daemon.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SourceResults    *prometheus.CounterVec
	SubQueryFailures *prometheus.CounterVec
	CacheEvents      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashd_requests_total",
				Help: "Total number of API requests by route and status.",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashd_request_duration_seconds",
				Help:    "Request processing duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		SourceResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashd_source_results_total",
				Help: "Resolved queries by the tier that answered (cache, peer, local-store, fallback).",
			},
			[]string{"provenance"},
		),
		SubQueryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashd_subquery_failures_total",
				Help: "Absorbed sub-query failures by operation.",
			},
			[]string{"operation"},
		),
		CacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashd_cache_events_total",
				Help: "Cache lookups by cache name and outcome (hit, stale, absent).",
			},
			[]string{"cache", "event"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.SourceResults)
	reg.MustRegister(m.SubQueryFailures)
	reg.MustRegister(m.CacheEvents)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(route, status string) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

// ObserveDuration records request duration.
func (m *Metrics) ObserveDuration(route string, seconds float64) {
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordSource increments the provenance counter.
func (m *Metrics) RecordSource(provenance string) {
	m.SourceResults.WithLabelValues(provenance).Inc()
}

// RecordSubQueryFailure increments the sub-query failure counter.
func (m *Metrics) RecordSubQueryFailure(operation string) {
	m.SubQueryFailures.WithLabelValues(operation).Inc()
}

// RecordCacheEvent increments the cache event counter.
func (m *Metrics) RecordCacheEvent(cache, event string) {
	m.CacheEvents.WithLabelValues(cache, event).Inc()
}
