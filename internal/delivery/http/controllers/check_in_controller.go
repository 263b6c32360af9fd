package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/lib/sl"
)

// TicketCodeRequest is the request body for POST /event/{eventId}/check-in and /uncheck-in.
type TicketCodeRequest struct {
	TicketCode string `json:"ticketCode" validate:"required,max=64"`
}

// CheckInSuccessResponse is the success response envelope for check-in and uncheck-in (200).
type CheckInSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListCheckInsSuccessResponse is the success response envelope for GET /event/{eventId}/check-ins (200).
type ListCheckInsSuccessResponse struct {
	Data  []*domain.CheckInEntry `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// EventCountsSuccessResponse is the success response envelope for GET /event/{eventId}/counts (200).
type EventCountsSuccessResponse struct {
	Data  *domain.EventCounts `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type CheckInController struct {
	Logger  *slog.Logger
	Service domain.CheckInService
}

func NewCheckInController(logger *slog.Logger, svc domain.CheckInService) *CheckInController {
	return &CheckInController{
		Logger:  logger.With(sl.Module("check-in")),
		Service: svc,
	}
}

// CheckIn godoc
// @Summary Check in a ticket
// @Description Marks the ticket as checked in for the event and records who did it. Concurrent scans of one code produce exactly one success; the others get 409 already_checked_in with the original checkInDate in data.
// @Tags check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param body body controllers.TicketCodeRequest true "Scanned or typed ticket code"
// @Success 200 {object} controllers.CheckInSuccessResponse "data contains user.fullName and checkInDate"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: ticket_not_found or not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_checked_in or conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: event_mismatch"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/check-in [post]
func (c *CheckInController) CheckIn(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.CheckIn)
}

// UncheckIn godoc
// @Summary Undo a check-in
// @Description Returns a checked-in ticket to the not-checked-in state. The check-in record is kept as voided.
// @Tags check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param body body controllers.TicketCodeRequest true "Ticket code"
// @Success 200 {object} controllers.CheckInSuccessResponse "data contains user.fullName"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: ticket_not_found or not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: not_checked_in or conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: event_mismatch"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/uncheck-in [post]
func (c *CheckInController) UncheckIn(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Service.UncheckIn)
}

type transitionFunc func(ctx context.Context, eventID, code, callerID string) (*domain.CheckInResult, error)

func (c *CheckInController) transition(w http.ResponseWriter, r *http.Request, apply transitionFunc) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	var req TicketCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	result, err := apply(r.Context(), eventID, req.TicketCode, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListCheckIns godoc
// @Summary List check-ins of an event
// @Description Returns the live check-ins of the event, most recent first.
// @Tags check-in
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListCheckInsSuccessResponse "data is an array of check-ins"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/check-ins [get]
func (c *CheckInController) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	entries, err := c.Service.ListCheckIns(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if entries == nil {
		entries = []*domain.CheckInEntry{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// GetCounts godoc
// @Summary Get attendee and check-in counts
// @Description Returns the number of approved attendees and of checked-in tickets, read in one statement.
// @Tags check-in
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventCountsSuccessResponse "data contains eventName, totalAttendees, checkedInCount, locationType"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/counts [get]
func (c *CheckInController) GetCounts(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	counts, err := c.Service.GetCounts(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, counts)
}
