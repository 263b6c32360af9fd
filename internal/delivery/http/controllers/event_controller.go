package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/lib/sl"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name             string              `json:"name" validate:"required,max=200"`
	StartsAt         time.Time           `json:"startsAt" validate:"required"`
	EndsAt           time.Time           `json:"endsAt" validate:"required,gtefield=StartsAt"`
	LocationType     domain.LocationType `json:"locationType" validate:"required,oneof=VENUE ONLINE"`
	Capacity         *int                `json:"capacity" validate:"omitempty,gte=0"`
	Visibility       domain.Visibility   `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	RequiresApproval bool                `json:"requiresApproval"`
}

// Validate implements helpers.Validator.
func (c *CreateEventRequest) Validate() []string {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return []string{"name is required"}
	}
	if c.Visibility == "" {
		c.Visibility = domain.VisibilityPublic
	}
	return nil
}

// EventSuccessResponse is the success response envelope for POST /events and GET /events/{eventId}.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AssignRoleRequest is the request body for PUT /event/{eventId}/roles/{userId}.
type AssignRoleRequest struct {
	Role domain.EventRole `json:"role" validate:"required,oneof=ADMIN MODERATOR"`
}

// RoleSuccessResponse is the success response envelope for PUT /event/{eventId}/roles/{userId} (200).
type RoleSuccessResponse struct {
	Data  *domain.EventRoleAssignment `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListRolesSuccessResponse is the success response envelope for GET /event/{eventId}/roles (200).
type ListRolesSuccessResponse struct {
	Data  []*domain.EventRoleAssignment `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger.With(sl.Module("event")),
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event owned by the authenticated user, who receives the CREATOR role. Omitted capacity means unlimited; visibility defaults to PUBLIC.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	event := &domain.Event{
		Name:             req.Name,
		OwnerID:          userID,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		LocationType:     req.LocationType,
		Capacity:         req.Capacity,
		Visibility:       req.Visibility,
		RequiresApproval: req.RequiresApproval,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event. Requires a role on the event.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventId} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	event, err := c.Service.GetEvent(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with its roles, attendees, tickets and check-ins. Only the event creator may delete it.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventId} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// ListRoles godoc
// @Summary List the role holders of an event
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListRolesSuccessResponse "data is an array of role assignments"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/roles [get]
func (c *EventController) ListRoles(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	roles, err := c.Service.ListRoles(r.Context(), eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if roles == nil {
		roles = []*domain.EventRoleAssignment{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, roles)
}

// AssignRole godoc
// @Summary Grant a role on an event
// @Description Gives the user ADMIN or MODERATOR on the event, replacing any previous role. Only the event creator may assign roles.
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param userId path string true "User ID (UUID)"
// @Param body body controllers.AssignRoleRequest true "Role"
// @Success 200 {object} controllers.RoleSuccessResponse "data contains the assignment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/roles/{userId} [put]
func (c *EventController) AssignRole(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	targetID, ok := helpers.PathID(w, r, "userId")
	if !ok {
		return
	}
	var req AssignRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	assignment, err := c.Service.AssignRole(r.Context(), eventID, targetID, req.Role, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignment)
}

// RemoveRole godoc
// @Summary Revoke a role on an event
// @Description Removes the user's ADMIN or MODERATOR role. The creator's role cannot be removed.
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID (UUID)"
// @Param userId path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /event/{eventId}/roles/{userId} [delete]
func (c *EventController) RemoveRole(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	targetID, ok := helpers.PathID(w, r, "userId")
	if !ok {
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := c.Service.RemoveRole(r.Context(), eventID, targetID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "removed"})
}
