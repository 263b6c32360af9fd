package controllers

import (
	"log/slog"
	"net/http"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/lib/sl"
)

// AttendeeSuccessResponse is the success response envelope for registration and approval (200 or 201).
type AttendeeSuccessResponse struct {
	Data  *domain.Attendee  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListAttendeesSuccessResponse is the success response envelope for GET /event/{eventId}/attendees (200).
type ListAttendeesSuccessResponse struct {
	Data  []*domain.AttendeeListItem `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// SetApprovalRequest is the request body for PATCH /event/{eventId}/attendees/{attendeeId}.
type SetApprovalRequest struct {
	IsApproved *bool `json:"isApproved" validate:"required"`
}

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger.With(sl.Module("attendee")),
		Service: svc,
	}
}

// Register godoc
// @Summary Register the current user for an event
// @Description Registers the authenticated user as an attendee. Events that do not require approval approve at once and issue a ticket. Idempotent: returns 201 when a new registration is created, 200 when already registered.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AttendeeSuccessResponse "Already registered"
// @Success 201 {object} controllers.AttendeeSuccessResponse "New registration created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_reached"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/attendees [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	attendee, created, err := c.Service.Register(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, attendee)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// SetApproval godoc
// @Summary Approve or unapprove an attendee
// @Description Approving issues the attendee's ticket (or reinstates the previous code) if the event has capacity left. Unapproving revokes the ticket and voids a live check-in.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param attendeeId path string true "Attendee ID (UUID)"
// @Param body body controllers.SetApprovalRequest true "Approval flag"
// @Success 200 {object} controllers.AttendeeSuccessResponse "data contains the updated attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_reached"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/attendees/{attendeeId} [patch]
func (c *AttendeeController) SetApproval(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	attendeeID, ok := helpers.PathID(w, r, "attendeeId")
	if !ok {
		return
	}
	var req SetApprovalRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	attendee, err := c.Service.SetApproval(r.Context(), eventID, attendeeID, *req.IsApproved, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendee)
}

// ListAttendees godoc
// @Summary List the attendees of an event
// @Description Returns the event roster with each attendee's name, email and approval flag.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListAttendeesSuccessResponse "data is an array of attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/attendees [get]
func (c *AttendeeController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	items, err := c.Service.ListAttendees(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if items == nil {
		items = []*domain.AttendeeListItem{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// RemoveAttendee godoc
// @Summary Remove an attendee from an event
// @Description Deletes the attendee together with their ticket and check-in history.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param attendeeId path string true "Attendee ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/attendees/{attendeeId} [delete]
func (c *AttendeeController) RemoveAttendee(w http.ResponseWriter, r *http.Request) {
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

	if err := c.Service.RemoveAttendee(r.Context(), eventID, attendeeID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "removed"})
}
