package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ResolutionsTotal counts dependency resolutions by provider and outcome.
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipkg_resolutions_total",
			Help: "Total number of dependency resolutions by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: success, conflict, error
	)

	// ResolutionDuration tracks dependency resolution duration in seconds.
	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unipkg_resolution_duration_seconds",
			Help:    "Dependency resolution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to 40s
		},
		[]string{"provider"},
	)

	// ResolutionGraphSize tracks the number of nodes per resolved graph.
	ResolutionGraphSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "unipkg_resolution_graph_nodes",
			Help:    "Number of nodes in resolved dependency graphs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
		},
	)

	// ProviderCallsTotal counts provider adapter calls by operation and status.
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipkg_provider_calls_total",
			Help: "Total number of provider adapter calls by operation and status",
		},
		[]string{"provider", "operation", "status"}, // status: ok, error
	)

	// ProviderCallDuration tracks provider call duration in seconds.
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unipkg_provider_call_duration_seconds",
			Help:    "Provider adapter call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		},
		[]string{"provider", "operation"},
	)

	// BatchItemsTotal counts batch items by action and outcome bucket.
	BatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipkg_batch_items_total",
			Help: "Total number of batch operation items by action and outcome",
		},
		[]string{"action", "outcome"}, // outcome: successful, failed, skipped
	)

	// BatchDuration tracks whole-batch wall-clock duration in seconds.
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unipkg_batch_duration_seconds",
			Help:    "Batch operation wall-clock duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to 6min
		},
		[]string{"action"},
	)

	// HTTPRequestsTotal counts registry HTTP requests by method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipkg_http_requests_total",
			Help: "Total number of registry HTTP requests by method and status",
		},
		[]string{"method", "status_code", "host"},
	)

	// HTTPRequestDuration tracks registry HTTP request duration in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "unipkg_http_request_duration_seconds",
			Help:    "Registry HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		},
		[]string{"method", "host"},
	)

	// CacheHitsTotal counts metadata cache hits.
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipkg_cache_hits_total",
			Help: "Total number of metadata cache hits",
		},
		[]string{"cache"},
	)

	// CacheMissesTotal counts metadata cache misses.
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipkg_cache_misses_total",
			Help: "Total number of metadata cache misses",
		},
		[]string{"cache"},
	)

	// RateLimitRequestsTotal counts rate limiter decisions per registry host.
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unipkg_rate_limit_requests_total",
			Help: "Total number of rate limiter decisions by host",
		},
		[]string{"host", "allowed"},
	)

	// CircuitBreakerState tracks breaker state per registry host.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "unipkg_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"host"},
	)
)

// MetricsHandler returns an HTTP handler for Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
