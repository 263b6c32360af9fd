package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventcheckin/internal/delivery/http/controllers"
	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/delivery/http/middleware"
	"eventcheckin/internal/domain"
)

// Controllers groups the HTTP controllers mounted by NewRouter.
type Controllers struct {
	CheckIn  *controllers.CheckInController
	Ticket   *controllers.TicketController
	Attendee *controllers.AttendeeController
	Event    *controllers.EventController
}

// RouterConfig holds the cross-cutting settings of the router.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string
	// ScanRateLimit is the number of scan requests (verify, check-in, uncheck-in) allowed per client IP per minute.
	// Zero disables the limit.
	ScanRateLimit int
	// Ping reports database health for /healthz. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig, c Controllers) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	scanLimit := middleware.RateLimitByIP(cfg.ScanRateLimit, time.Minute)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.PrometheusMetrics(h))
	}

	// Tickets and check-in
	handle("GET /ticket/verify/{ticketCode}", scanLimit(auth(c.Ticket.VerifyTicket)))
	handle("GET /event/{eventId}/attendee/{attendeeId}/ticket", auth(c.Ticket.GetAttendeeTicket))
	handle("POST /event/{eventId}/check-in", scanLimit(auth(c.CheckIn.CheckIn)))
	handle("POST /event/{eventId}/uncheck-in", scanLimit(auth(c.CheckIn.UncheckIn)))
	handle("GET /event/{eventId}/check-ins", auth(c.CheckIn.ListCheckIns))
	handle("GET /event/{eventId}/counts", auth(c.CheckIn.GetCounts))

	// Roster
	handle("GET /event/{eventId}/attendees", auth(c.Attendee.ListAttendees))
	handle("POST /event/{eventId}/attendees", auth(c.Attendee.Register))
	handle("PATCH /event/{eventId}/attendees/{attendeeId}", auth(c.Attendee.SetApproval))
	handle("DELETE /event/{eventId}/attendees/{attendeeId}", auth(c.Attendee.RemoveAttendee))

	// Events and roles
	handle("POST /events", auth(c.Event.CreateEvent))
	handle("GET /events/{eventId}", auth(c.Event.GetEvent))
	handle("DELETE /events/{eventId}", auth(c.Event.DeleteEvent))
	handle("GET /event/{eventId}/roles", auth(c.Event.ListRoles))
	handle("PUT /event/{eventId}/roles/{userId}", auth(c.Event.AssignRole))
	handle("DELETE /event/{eventId}/roles/{userId}", auth(c.Event.RemoveRole))

	// Operations
	mux.HandleFunc("GET /healthz", healthz(cfg.Ping))
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return chi.Chain(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Logging(cfg.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.AllowedOrigins),
	).Handler(mux)
}

func healthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, controllers.StatusResponse{Status: "ok"})
	}
}
