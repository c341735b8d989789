package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"sku-renamer/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are paths that should not be recorded
	SkipPaths []string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
	}
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics for certain paths
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// Track in-flight requests
			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := newMetricsResponseWriter(w)

			// Record start time
			start := time.Now()

			// Process request
			next.ServeHTTP(wrapped, r)

			// Record metrics
			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path)
			status := strconv.Itoa(wrapped.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

// normalizePath normalizes the path for metrics to avoid high cardinality.
// Image ids in /api/images/{id}/... are replaced with a placeholder and
// anything deeper than the known routes is collapsed.
func normalizePath(path string) string {
	parts := strings.Split(path, "/")

	if len(parts) > 3 && parts[1] == "api" && parts[2] == "images" && parts[3] != "" {
		parts[3] = "{id}"
	}

	if len(parts) > 5 {
		parts = append(parts[:5], "{path}")
	}

	return strings.Join(parts, "/")
}
