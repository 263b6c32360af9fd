package domain

import (
	"context"
	"time"
)

// Attendee represents a user's membership in an event. At most one exists per (event, user).
// swagger:model Attendee
type Attendee struct {
	ID         string    `json:"id"`
	EventID    string    `json:"eventId"`
	UserID     string    `json:"userId"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewAttendee creates a new Attendee. ID is typically set by the repository on create.
func NewAttendee(eventID, userID string, isApproved bool, createdAt, updatedAt time.Time) *Attendee {
	return &Attendee{
		EventID:    eventID,
		UserID:     userID,
		IsApproved: isApproved,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// AttendeeListItem is a roster row joined with the user's profile.
// swagger:model AttendeeListItem
type AttendeeListItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsApproved bool   `json:"isApproved"`
}

// AttendeeRepository defines storage operations for the event roster.
type AttendeeRepository interface {
	// Create inserts the attendee. Returns ErrAlreadyRegistered when the user already has a row for the event.
	Create(ctx context.Context, attendee *Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Attendee, error)
	ListByEventID(ctx context.Context, eventID string) ([]*AttendeeListItem, error)
	// Approve marks the attendee approved if the event still has capacity. Returns ErrCapacityReached otherwise.
	// Approving an already approved attendee is a no-op.
	Approve(ctx context.Context, id string, at time.Time) error
	Unapprove(ctx context.Context, id string, at time.Time) error
	// Delete removes the attendee with its ticket and check-in history.
	Delete(ctx context.Context, id string) error
}

// AttendeeService defines roster operations: self-registration and organizer approval.
type AttendeeService interface {
	// Register registers the user for the event. Returns (attendee, created, err): created is false if already registered.
	Register(ctx context.Context, eventID, userID string) (*Attendee, bool, error)
	SetApproval(ctx context.Context, eventID, attendeeID string, approved bool, callerID string) (*Attendee, error)
	ListAttendees(ctx context.Context, eventID, callerID string) ([]*AttendeeListItem, error)
	RemoveAttendee(ctx context.Context, eventID, attendeeID, callerID string) error
}
