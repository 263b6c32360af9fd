package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared by repositories and services. Controllers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingCredentials means the request carried no bearer token at all.
	ErrMissingCredentials = errors.New("missing credentials")

	ErrTicketNotFound      = errors.New("ticket not found")
	ErrEventMismatch       = errors.New("ticket belongs to a different event")
	ErrAttendeeNotApproved = errors.New("attendee not approved")
	ErrAlreadyCheckedIn    = errors.New("already checked in")
	ErrNotCheckedIn        = errors.New("not checked in")
	// ErrTransitionConflict means the ticket kept changing state under concurrent operators; the caller may retry.
	ErrTransitionConflict = errors.New("ticket state changed concurrently")

	ErrCapacityReached   = errors.New("event capacity reached")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrTicketCodeTaken   = errors.New("ticket code already in use")
)

// AlreadyCheckedInError is returned by a check-in that lost the race or re-scanned a used ticket.
// It matches ErrAlreadyCheckedIn and carries the time of the existing check-in.
type AlreadyCheckedInError struct {
	CheckedInAt time.Time
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("already checked in at %s", e.CheckedInAt.Format(time.RFC3339))
}

func (e *AlreadyCheckedInError) Is(target error) bool {
	return target == ErrAlreadyCheckedIn
}
