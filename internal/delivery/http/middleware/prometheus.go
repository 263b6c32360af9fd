package middleware

import (
	"net/http"
	"strconv"
	"time"

	"eventcheckin/internal/metrics"
)

// PrometheusMetrics records request count, latency and in-flight requests for a route.
// It labels by the matched ServeMux pattern, so it must wrap handlers registered on the mux.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next(wrapper, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(wrapper.statusCode), time.Since(start))
	}
}

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
