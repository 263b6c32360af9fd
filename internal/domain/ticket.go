package domain

import (
	"context"
	"strings"
	"time"
)

// TicketCodeLength is the length of a ticket code. Codes use the alphabet [A-Z0-9].
const TicketCodeLength = 16

// NormalizeTicketCode canonicalizes a scanned or typed code.
func NormalizeTicketCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidTicketCode reports whether code is a well-formed normalized ticket code.
func ValidTicketCode(code string) bool {
	if len(code) != TicketCodeLength {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// TicketState is the check-in state of an issued ticket.
type TicketState string

const (
	TicketIssuedNotCheckedIn TicketState = "ISSUED_NOT_CHECKED_IN"
	TicketCheckedIn          TicketState = "CHECKED_IN"
)

// Ticket entitles one attendee to entry. Code is globally unique and never changes once issued.
// CheckedInAt is set only while IsCheckedIn is true.
// swagger:model Ticket
type Ticket struct {
	ID          string     `json:"id"`
	Code        string     `json:"ticketCode"`
	AttendeeID  string     `json:"attendeeId"`
	EventID     string     `json:"eventId"`
	IsCheckedIn bool       `json:"isCheckedIn"`
	CheckedInAt *time.Time `json:"checkInDate,omitempty"`
	RevokedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewTicket returns a not-checked-in ticket for the attendee. ID is typically set by the repository on create.
func NewTicket(code, attendeeID, eventID string, createdAt time.Time) *Ticket {
	return &Ticket{
		Code:       code,
		AttendeeID: attendeeID,
		EventID:    eventID,
		CreatedAt:  createdAt,
	}
}

// State maps the checked-in flag onto the ticket state machine.
func (t *Ticket) State() TicketState {
	if t.IsCheckedIn {
		return TicketCheckedIn
	}
	return TicketIssuedNotCheckedIn
}

// Revoked reports whether the ticket was withdrawn by unapproving its attendee.
func (t *Ticket) Revoked() bool {
	return t.RevokedAt != nil
}

// TicketDetails is a ticket joined with its holder's profile.
type TicketDetails struct {
	Ticket
	HolderName     string
	HolderLastName string
	HolderEmail    string
}

// HolderFullName returns the display name of the ticket holder.
func (d *TicketDetails) HolderFullName() string {
	return FullName(d.HolderName, d.HolderLastName, d.HolderEmail)
}

// TicketRepository defines storage for tickets. CheckIn and UncheckIn are the only writes to check-in state;
// each is a single conditional update so that concurrent attempts on one code cannot both succeed.
type TicketRepository interface {
	// Issue creates the attendee's ticket, or reinstates the existing one (same code) if it was revoked.
	// Returns ErrTicketCodeTaken when the generated code collides with another ticket.
	Issue(ctx context.Context, ticket *Ticket) error
	// Revoke withdraws the attendee's ticket and voids a live check-in. Revoking twice is a no-op.
	Revoke(ctx context.Context, attendeeID, operatorID string, at time.Time) error
	GetByAttendeeID(ctx context.Context, attendeeID string) (*Ticket, error)
	// GetDetailsByCode returns ErrTicketNotFound for unknown or revoked codes.
	GetDetailsByCode(ctx context.Context, code string) (*TicketDetails, error)
	// CheckIn transitions ISSUED_NOT_CHECKED_IN -> CHECKED_IN and appends a check-in record.
	// Fails with ErrTicketNotFound, ErrEventMismatch or *AlreadyCheckedInError without changing state.
	CheckIn(ctx context.Context, eventID, code, operatorID string, at time.Time) (*TicketDetails, error)
	// UncheckIn transitions CHECKED_IN -> ISSUED_NOT_CHECKED_IN and voids the live check-in record.
	// Fails with ErrTicketNotFound, ErrEventMismatch or ErrNotCheckedIn without changing state.
	UncheckIn(ctx context.Context, eventID, code, operatorID string, at time.Time) (*TicketDetails, error)
}

// TicketUser is the holder block of ticket responses.
type TicketUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

// TicketVerification is the result of resolving a scanned or typed ticket code.
// swagger:model TicketVerification
type TicketVerification struct {
	Valid       bool        `json:"valid"`
	Message     string      `json:"message,omitempty"`
	EventID     string      `json:"eventId,omitempty"`
	TicketCode  string      `json:"ticketCode,omitempty"`
	User        *TicketUser `json:"user,omitempty"`
	IsCheckedIn bool        `json:"isCheckedIn"`
	CheckInDate *time.Time  `json:"checkInDate,omitempty"`
}

// TicketService resolves ticket codes and attendee selections. Both operations are pure reads.
type TicketService interface {
	// VerifyTicket resolves code; when eventID is non-empty the ticket must belong to that event.
	VerifyTicket(ctx context.Context, code, eventID, callerID string) (*TicketVerification, error)
	// GetAttendeeTicket returns the ticket code of an approved attendee selected from the roster.
	GetAttendeeTicket(ctx context.Context, eventID, attendeeID, callerID string) (string, error)
}
