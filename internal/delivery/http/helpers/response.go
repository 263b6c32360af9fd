package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeInternalError = "internal_error"

	ErrCodeTicketNotFound      = "ticket_not_found"
	ErrCodeEventMismatch       = "event_mismatch"
	ErrCodeAlreadyCheckedIn    = "already_checked_in"
	ErrCodeNotCheckedIn        = "not_checked_in"
	ErrCodeAttendeeNotApproved = "attendee_not_approved"
	ErrCodeCapacityReached     = "capacity_reached"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Error is set and Data is nil unless
// the error carries context (e.g. the existing checkInDate on already_checked_in).
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSONErrorWithData(w, statusCode, code, message, nil)
}

// WriteJSONErrorWithData is WriteJSONError with a data payload alongside the error.
func WriteJSONErrorWithData(w http.ResponseWriter, statusCode int, code, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  data,
		Error: &APIError{Code: code, Message: message},
	})
}
