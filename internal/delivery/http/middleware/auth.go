package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	h "eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/lib/sl"
)

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RequireAuth resolves the request's bearer token to a user ID and stores it in the context.
// Requests without valid credentials get 401 with a Bearer challenge and never reach next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	log := logger.With(sl.Module("auth"))
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, err := verifier.VerifyBearer(r.Header.Get("Authorization"))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="eventcheckin"`)
				if errors.Is(err, domain.ErrMissingCredentials) {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing bearer token")
					return
				}
				log.DebugContext(r.Context(), "credentials rejected", sl.Err(err))
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetUserID(r.Context(), userID)))
		}
	}
}
