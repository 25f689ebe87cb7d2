package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/ourllet/internal/infrastructure/metrics"
)

// idRoutes are the collections whose next path segment is an identifier.
var idRoutes = []string{
	"/api/v1/entries/",
	"/api/v1/fixed-entries/",
	"/api/v1/ledgers/",
}

// reservedSegments are static routes under idRoutes.
var reservedSegments = map[string]bool{
	"categories":  true,
	"import":      true,
	"invite-code": true,
	"join":        true,
}

// Metrics returns a middleware that records HTTP metrics.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			path := routePath(r)

			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routePath prefers the matched chi pattern and falls back to normalizePath.
func routePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "/*") {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// normalizePath normalizes URL paths to avoid high cardinality.
// /api/v1/entries/01HX... -> /api/v1/entries/:id
func normalizePath(path string) string {
	for _, prefix := range idRoutes {
		if !strings.HasPrefix(path, prefix) {
			continue
		}

		rest := path[len(prefix):]
		segment, suffix, _ := strings.Cut(rest, "/")
		if segment == "" || reservedSegments[segment] {
			return path
		}
		if suffix != "" {
			suffix = "/" + suffix
		}
		return prefix + ":id" + suffix
	}

	return path
}
