package domain

import (
	"context"
	"time"
)

// LocationType tells whether an event happens at a venue or online.
type LocationType string

const (
	LocationVenue  LocationType = "VENUE"
	LocationOnline LocationType = "ONLINE"
)

// Visibility controls who can discover an event.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Event represents an organized event that attendees register for.
// swagger:model Event
type Event struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	OwnerID          string       `json:"ownerId"`
	StartsAt         time.Time    `json:"startsAt"`
	EndsAt           time.Time    `json:"endsAt"`
	LocationType     LocationType `json:"locationType"`
	Capacity         *int         `json:"capacity,omitempty"`
	Visibility       Visibility   `json:"visibility"`
	RequiresApproval bool         `json:"requiresApproval"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(name, ownerID string, startsAt, endsAt time.Time, locationType LocationType, capacity *int, visibility Visibility, requiresApproval bool, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Name:             name,
		OwnerID:          ownerID,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
		LocationType:     locationType,
		Capacity:         capacity,
		Visibility:       visibility,
		RequiresApproval: requiresApproval,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

// HasCapacityFor reports whether approving one more attendee keeps the event within its capacity.
// A nil capacity means registration is unbounded.
func (e *Event) HasCapacityFor(approved int) bool {
	return e.Capacity == nil || approved < *e.Capacity
}

// EventCounts holds the live totals shown on the check-in screen.
// swagger:model EventCounts
type EventCounts struct {
	EventName      string       `json:"eventName"`
	TotalAttendees int          `json:"totalAttendees"`
	CheckedInCount int          `json:"checkedInCount"`
	LocationType   LocationType `json:"locationType"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// Delete removes the event together with its check-ins, tickets, attendees and roles.
	Delete(ctx context.Context, id string) error
	// GetCounts computes approved attendee and checked-in totals in a single statement.
	GetCounts(ctx context.Context, id string) (*EventCounts, error)
}

// EventService defines organizer operations on events.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	ListRoles(ctx context.Context, eventID, callerID string) ([]*EventRoleAssignment, error)
	AssignRole(ctx context.Context, eventID, userID string, role EventRole, callerID string) (*EventRoleAssignment, error)
	RemoveRole(ctx context.Context, eventID, userID, callerID string) error
}
