package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// normalizePath converts paths with dynamic segments to route patterns to
// prevent cardinality explosion in metrics. /events/evt-123 becomes
// /events/{id}.
func normalizePath(path string) string {
	staticRoutes := map[string]bool{
		"/":              true,
		"/health":        true,
		"/metrics":       true,
		"/auth/login":    true,
		"/users":         true,
		"/events":        true,
		"/dashboard":     true,
		"/preferences":   true,
		"/notifications": true,
		"/faqs":          true,
	}

	if staticRoutes[path] {
		return path
	}

	if strings.HasPrefix(path, "/events/") {
		parts := strings.Split(path, "/")
		if len(parts) == 4 && (parts[3] == "cancel" || parts[3] == "notify") {
			return "/events/{id}/" + parts[3]
		}
		if len(parts) == 3 && parts[2] != "" {
			return "/events/{id}"
		}
	}

	if strings.HasPrefix(path, "/notifications/") {
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[3] == "read" {
			return "/notifications/{id}/read"
		}
	}

	// Unknown patterns pass through unchanged.
	return path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code and response size.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	wroteHeader bool
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	if mrw.wroteHeader {
		return
	}
	mrw.statusCode = code
	mrw.wroteHeader = true
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *metricsResponseWriter) Write(b []byte) (int, error) {
	n, err := mrw.ResponseWriter.Write(b)
	mrw.size += int64(n)
	return n, err
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// HTTPMetrics records request duration, counts, and response sizes.
// Health checks are excluded to keep scrape noise out of the histograms.
func HTTPMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			mrw := newMetricsResponseWriter(w)

			next.ServeHTTP(mrw, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				normalizePath(r.URL.Path),
				strconv.Itoa(mrw.statusCode),
				time.Since(start).Seconds(),
				mrw.size,
			)
		})
	}
}
