package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exposed at /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	ChartBuilds   prometheus.Counter
	SkippedStates prometheus.Counter
}

// NewMetrics creates and registers the application metric set on a
// dedicated registry so tests can create isolated instances.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naepdash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "naepdash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ChartBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naepdash",
			Name:      "chart_builds_total",
			Help:      "Chart payloads built for the frontend.",
		}),
		SkippedStates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naepdash",
			Name:      "skipped_states_total",
			Help:      "States excluded for incomplete percentile series.",
		}),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.ChartBuilds, m.SkippedStates)
	return m
}
