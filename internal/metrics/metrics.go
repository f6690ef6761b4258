// Package metrics exposes Prometheus instrumentation for the report service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotelstats"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTPRequests counts API requests by route and status code.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes API latency by route.
	HTTPDuration *prometheus.HistogramVec

	// CacheLookups counts cache lookups by result: hit, miss, stale, or
	// disabled when the timeout is zero.
	CacheLookups *prometheus.CounterVec

	// CacheWriteFailures counts cache writes that were dropped.
	CacheWriteFailures prometheus.Counter

	// UpstreamRequests counts vendor calls by outcome.
	UpstreamRequests *prometheus.CounterVec

	// UpstreamDuration observes vendor round-trip time.
	UpstreamDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Count of API requests by route and status.",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "API request latency.",
				Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2, 5, 10},
			},
			[]string{"route"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Count of cache lookups by result.",
			},
			[]string{"result"},
		),
		CacheWriteFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_write_failures_total",
				Help:      "Count of cache writes that failed and were dropped.",
			},
		),
		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Count of vendor API calls by outcome.",
			},
			[]string{"outcome"},
		),
		UpstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Vendor API round-trip time.",
				Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 30},
			},
		),
	}
}

// ObserveHTTP records one finished API request.
func (m *Metrics) ObserveHTTP(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

// IncCacheLookup records a cache read result.
func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// IncCacheWriteFailure records a dropped cache write.
func (m *Metrics) IncCacheWriteFailure() {
	if m == nil {
		return
	}
	m.CacheWriteFailures.Inc()
}

// ObserveUpstream records one vendor call.
func (m *Metrics) ObserveUpstream(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(outcome).Inc()
	m.UpstreamDuration.Observe(seconds)
}
