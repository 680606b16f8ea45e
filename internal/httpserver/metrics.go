// Package httpserver provides the HTTP plumbing around the request facade:
// server lifecycle, request-ID and metrics middleware, body parsing, and
// conditional-response helpers.
package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics recorded by the server middleware.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BodyParseErrors prometheus.Counter
	NotModifiedHits prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "corbel",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "corbel",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		BodyParseErrors: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "corbel",
				Name:      "body_parse_errors_total",
				Help:      "Total request bodies that failed to parse",
			},
		),
		NotModifiedHits: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "corbel",
				Name:      "not_modified_total",
				Help:      "Total responses answered with 304 Not Modified",
			},
		),
	}
}
