package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for check-in transitions.
const (
	OutcomeSuccess          = "success"
	OutcomeAlreadyCheckedIn = "already_checked_in"
	OutcomeNotCheckedIn     = "not_checked_in"
	OutcomeTicketNotFound   = "ticket_not_found"
	OutcomeEventMismatch    = "event_mismatch"
	OutcomeForbidden        = "forbidden"
	OutcomeConflict         = "conflict"
	OutcomeError            = "error"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Check-in metrics
	CheckInTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_transitions_total",
			Help: "Check-in and uncheck-in attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)

	TicketVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_ticket_verifications_total",
			Help: "Ticket verifications by outcome",
		},
		[]string{"outcome"},
	)

	TicketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkin_tickets_issued_total",
			Help: "Tickets issued or reinstated on attendee approval",
		},
	)

	TicketsRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkin_tickets_revoked_total",
			Help: "Tickets revoked on attendee unapproval",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by the scan rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordTransition counts a check-in ("check_in") or uncheck-in ("uncheck_in") attempt.
func RecordTransition(operation, outcome string) {
	CheckInTransitions.WithLabelValues(operation, outcome).Inc()
}

// RecordVerification counts a ticket verification.
func RecordVerification(outcome string) {
	TicketVerifications.WithLabelValues(outcome).Inc()
}
