package domain

import (
	"context"
	"time"
)

// CheckInRecord is the audit entry of one check-in. Uncheck-in voids the live record instead of deleting it,
// so a ticket is checked in exactly when it has a record with VoidedAt == nil.
type CheckInRecord struct {
	ID          string     `json:"id"`
	TicketID    string     `json:"ticketId"`
	EventID     string     `json:"eventId"`
	CheckedInAt time.Time  `json:"checkInDate"`
	CheckedInBy string     `json:"checkedInBy"`
	VoidedAt    *time.Time `json:"voidedAt,omitempty"`
	VoidedBy    *string    `json:"voidedBy,omitempty"`
}

// CheckInEntry is a row of the check-in history view.
// swagger:model CheckInEntry
type CheckInEntry struct {
	ID          string     `json:"id"`
	User        TicketUser `json:"user"`
	CheckInDate time.Time  `json:"checkInDate"`
}

// CheckInResult is returned by a successful transition. CheckInDate is nil after an uncheck-in.
// swagger:model CheckInResult
type CheckInResult struct {
	User        TicketUser `json:"user"`
	CheckInDate *time.Time `json:"checkInDate,omitempty"`
}

// CheckInRepository reads the check-in history. Writes happen inside TicketRepository transitions.
type CheckInRepository interface {
	// ListLiveByEventID returns non-voided records, most recent first.
	ListLiveByEventID(ctx context.Context, eventID string) ([]*CheckInEntry, error)
	ListByTicketID(ctx context.Context, ticketID string) ([]*CheckInRecord, error)
}

// CheckInService applies check-in transitions and derives the live counts.
type CheckInService interface {
	CheckIn(ctx context.Context, eventID, code, callerID string) (*CheckInResult, error)
	UncheckIn(ctx context.Context, eventID, code, callerID string) (*CheckInResult, error)
	ListCheckIns(ctx context.Context, eventID, callerID string) ([]*CheckInEntry, error)
	GetCounts(ctx context.Context, eventID, callerID string) (*EventCounts, error)
}
