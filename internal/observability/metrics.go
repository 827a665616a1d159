// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the proxy.
var Metrics = struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ActiveRequests   prometheus.Gauge
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  prometheus.Histogram
}{
	RequestsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkscore_proxy_requests_total",
			Help: "Total HTTP requests by route, method, and status",
		},
		[]string{"route", "method", "status"},
	),
	RequestDuration: promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walkscore_proxy_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	),
	ActiveRequests: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "walkscore_proxy_active_requests",
			Help: "Number of active requests",
		},
	),
	UpstreamRequests: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkscore_proxy_upstream_requests_total",
			Help: "Walk Score API calls by upstream status, or \"error\" on transport failure",
		},
		[]string{"status"},
	),
	UpstreamLatency: promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "walkscore_proxy_upstream_latency_seconds",
			Help:    "Walk Score API call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	),
}

// MetricsHandler returns the Prometheus metrics handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records request metrics. Requests are labelled by the
// matched chi route pattern so unknown paths collapse into one series.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		Metrics.ActiveRequests.Inc()
		defer Metrics.ActiveRequests.Dec()

		// Wrap response writer to capture status
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		route := routeLabel(r)

		Metrics.RequestsTotal.WithLabelValues(
			route,
			r.Method,
			strconv.Itoa(wrapped.status),
		).Inc()

		Metrics.RequestDuration.WithLabelValues(
			route,
			r.Method,
		).Observe(duration)
	})
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordUpstream records one Walk Score API call.
func RecordUpstream(status string, latency time.Duration) {
	Metrics.UpstreamRequests.WithLabelValues(status).Inc()
	Metrics.UpstreamLatency.Observe(latency.Seconds())
}
