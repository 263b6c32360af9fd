package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/delivery/http/middleware"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/lib/sl"
)

// AlreadyCheckedInData is the data payload of a 409 already_checked_in response.
type AlreadyCheckedInData struct {
	CheckInDate time.Time `json:"checkInDate"`
}

// writeServiceError maps domain errors to status codes. Anything unexpected is logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var already *domain.AlreadyCheckedInError
	switch {
	case errors.As(err, &already):
		helpers.WriteJSONErrorWithData(w, http.StatusConflict, helpers.ErrCodeAlreadyCheckedIn, err.Error(),
			AlreadyCheckedInData{CheckInDate: already.CheckedInAt})
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyCheckedIn, "already checked in")
	case errors.Is(err, domain.ErrNotCheckedIn):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeNotCheckedIn, "not checked in")
	case errors.Is(err, domain.ErrTransitionConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "ticket changed concurrently, retry")
	case errors.Is(err, domain.ErrTicketNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeTicketNotFound, "ticket not found")
	case errors.Is(err, domain.ErrEventMismatch):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeEventMismatch, "ticket belongs to a different event")
	case errors.Is(err, domain.ErrAttendeeNotApproved):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeAttendeeNotApproved, "attendee not approved")
	case errors.Is(err, domain.ErrCapacityReached):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCapacityReached, "event capacity reached")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "already registered")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, sl.Err(err))
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// callerID returns the authenticated user or writes 401.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return userID, ok
}

// StatusResponse is the data of responses that only acknowledge the operation.
type StatusResponse struct {
	Status string `json:"status"`
}
