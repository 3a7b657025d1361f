package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelink_http_requests_total",
			Help: "Total HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradelink_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ListingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelink_listing_operations_total",
			Help: "Listing mutations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	ImageCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradelink_image_cleanup_failures_total",
			Help: "Image files that could not be removed after a listing or profile change.",
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradelink_cache_hits_total",
			Help: "Listing cache hits.",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradelink_cache_misses_total",
			Help: "Listing cache misses.",
		},
	)
)

func RecordHttpRequest(method, route, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, route, status).Inc()
	HttpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordListingOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ListingOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordImageCleanupFailure() {
	ImageCleanupFailures.Inc()
}

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}
