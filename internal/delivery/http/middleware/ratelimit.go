package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	h "eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/metrics"
)

// RateLimitByIP limits each client IP to requests per window on the wrapped route.
// A non-positive requests disables the limit. Rejections answer 429 in the API envelope.
func RateLimitByIP(requests int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	if requests <= 0 {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		limiter := httprate.Limit(requests, window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				metrics.RecordRateLimitHit(r.Pattern)
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeRateLimited, "too many requests")
			}),
		)
		return limiter(next).ServeHTTP
	}
}
