package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/lib/sl"
)

// VerifyTicketSuccessResponse is the response envelope for GET /ticket/verify/{ticketCode} (200).
// Unknown codes and tickets of another event are answered with valid=false and a message.
type VerifyTicketSuccessResponse struct {
	Data  *domain.TicketVerification `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// AttendeeTicketResponse is the data of GET /event/{eventId}/attendee/{attendeeId}/ticket.
type AttendeeTicketResponse struct {
	TicketCode string `json:"ticketCode"`
}

// AttendeeTicketSuccessResponse is the success response envelope for GET /event/{eventId}/attendee/{attendeeId}/ticket (200).
type AttendeeTicketSuccessResponse struct {
	Data  AttendeeTicketResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type TicketController struct {
	Logger  *slog.Logger
	Service domain.TicketService
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService) *TicketController {
	return &TicketController{
		Logger:  logger.With(sl.Module("ticket")),
		Service: svc,
	}
}

// VerifyTicket godoc
// @Summary Verify a ticket code
// @Description Resolves a scanned or typed ticket code to its holder and check-in status. Nothing is modified. When eventId is given the ticket must belong to that event.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param ticketCode path string true "Ticket code"
// @Param eventId query string false "Event ID (UUID) the ticket must belong to"
// @Success 200 {object} controllers.VerifyTicketSuccessResponse "data.valid tells whether the ticket was found for the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /ticket/verify/{ticketCode} [get]
func (c *TicketController) VerifyTicket(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("ticketCode")
	if code == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing ticketCode")
		return
	}
	eventID := r.URL.Query().Get("eventId")
	if eventID != "" {
		var ok bool
		if eventID, ok = helpers.CanonicalID(eventID); !ok {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventId")
			return
		}
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	verification, err := c.Service.VerifyTicket(r.Context(), code, eventID, userID)
	switch {
	case err == nil:
		helpers.WriteJSONSuccess(w, http.StatusOK, verification)
	case errors.Is(err, domain.ErrTicketNotFound):
		helpers.WriteJSONSuccess(w, http.StatusOK, &domain.TicketVerification{Valid: false, Message: "ticket not found"})
	case errors.Is(err, domain.ErrEventMismatch):
		helpers.WriteJSONSuccess(w, http.StatusOK, &domain.TicketVerification{Valid: false, Message: "ticket belongs to a different event"})
	default:
		writeServiceError(w, r, c.Logger, err)
	}
}

// GetAttendeeTicket godoc
// @Summary Get the ticket code of an attendee
// @Description Returns the ticket code of an approved attendee picked from the roster, for check-in without scanning.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param attendeeId path string true "Attendee ID (UUID)"
// @Success 200 {object} controllers.AttendeeTicketSuccessResponse "data contains ticketCode"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found or attendee_not_approved"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/attendee/{attendeeId}/ticket [get]
func (c *TicketController) GetAttendeeTicket(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	attendeeID, ok := helpers.PathID(w, r, "attendeeId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	code, err := c.Service.GetAttendeeTicket(r.Context(), eventID, attendeeID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AttendeeTicketResponse{TicketCode: code})
}
