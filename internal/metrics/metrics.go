package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
	RateLimitedTotal    prometheus.Counter

	// Upstream lookup metrics
	UpstreamRequestDuration *prometheus.HistogramVec

	// Application Metrics
	LocationLookupsTotal *prometheus.CounterVec
	LocationUnknownTotal prometheus.Counter
	PostBodiesTotal      prometheus.Counter
	PostBodyBytes        prometheus.Histogram
	PostFaultsTotal      *prometheus.CounterVec
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "http_requests_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Geolocation upstream latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),

		LocationLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "location_lookups_total",
				Help: "Total number of location lookups by result",
			},
			[]string{"result"},
		),

		LocationUnknownTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "location_lookups_unknown_total",
				Help: "Total number of lookups where the upstream reported no city",
			},
		),

		PostBodiesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "post_bodies_received_total",
				Help: "Total number of POST bodies received and logged",
			},
		),

		PostBodyBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "post_body_size_bytes",
				Help:    "Size of received POST bodies in bytes",
				Buckets: prometheus.ExponentialBuckets(16, 4, 8),
			},
		),

		PostFaultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_faults_total",
				Help: "Total number of POST requests aborted as malformed",
			},
			[]string{"reason"},
		),
	}
}
