package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Custom registry keeps the /metrics output limited to service metrics.
var metricsRegistry = prometheus.NewRegistry()

var (
	httpRequests = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chittytrust",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.With(metricsRegistry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "chittytrust",
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	calculationsTotal = promauto.With(metricsRegistry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "chittytrust",
			Name:      "calculations_total",
			Help:      "Total number of trust score calculations",
		},
	)

	calculationLatency = promauto.With(metricsRegistry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "chittytrust",
			Name:      "calculation_latency_milliseconds",
			Help:      "Trust score calculation latency in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	resultCacheHits = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chittytrust",
			Name:      "result_cache_lookups_total",
			Help:      "Total number of result cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	eventsRecorded = promauto.With(metricsRegistry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "chittytrust",
			Name:      "events_recorded_total",
			Help:      "Total number of trust events recorded",
		},
	)
)

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})
}

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		httpRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func recordCalculation(durationMs int64, cacheHit bool) {
	calculationsTotal.Inc()
	calculationLatency.Observe(float64(durationMs))
	if cacheHit {
		resultCacheHits.WithLabelValues("hit").Inc()
	} else {
		resultCacheHits.WithLabelValues("miss").Inc()
	}
}
