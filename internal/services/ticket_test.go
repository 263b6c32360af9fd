package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"eventcheckin/internal/domain"
)

func TestTicketService_VerifyTicket(t *testing.T) {
	ctx := context.Background()
	f, eventID := checkInScenario(t)
	otherID := f.createEvent("owner", false, nil)
	f.store.addUser("stranger", "Sam", "Stranger", "sam@example.com")
	code := f.ticketCode(eventID, "u3")

	tests := []struct {
		name      string
		code      string
		eventID   string
		caller    string
		wantErr   error
		wantValid bool
	}{
		{name: "valid with event", code: code, eventID: eventID, caller: "owner", wantValid: true},
		{name: "valid without event", code: code, caller: "owner", wantValid: true},
		{name: "lowercase with whitespace", code: "  " + strings.ToLower(code) + " ", eventID: eventID, caller: "owner", wantValid: true},
		{name: "unknown code", code: "0000000000000000", eventID: eventID, caller: "owner", wantErr: domain.ErrTicketNotFound},
		{name: "malformed code", code: "not-a-ticket!", eventID: eventID, caller: "owner", wantErr: domain.ErrTicketNotFound},
		{name: "other event", code: code, eventID: otherID, caller: "owner", wantErr: domain.ErrEventMismatch},
		{name: "stranger with event", code: code, eventID: eventID, caller: "stranger", wantErr: domain.ErrForbidden},
		{name: "stranger without event sees not found", code: code, caller: "stranger", wantErr: domain.ErrTicketNotFound},
		{name: "stranger with unknown code", code: "0000000000000000", caller: "stranger", wantErr: domain.ErrTicketNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.tickets.VerifyTicket(ctx, tt.code, tt.eventID, tt.caller)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if errors.Is(tt.wantErr, domain.ErrTicketNotFound) {
					require.NotErrorIs(t, err, domain.ErrForbidden)
				}
				require.Nil(t, got)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantValid, got.Valid)
			require.Equal(t, eventID, got.EventID)
			require.Equal(t, code, got.TicketCode)
			require.Equal(t, "grace@example.com", got.User.FullName)
			require.Equal(t, "grace@example.com", got.User.Email)
			require.False(t, got.IsCheckedIn)
			require.Nil(t, got.CheckInDate)
		})
	}
}

func TestTicketService_GetAttendeeTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.addUser("owner", "Olga", "Organizer", "olga@example.com")
	f.store.addUser("u1", "Ada", "Lovelace", "ada@example.com")
	f.store.addUser("u2", "Alan", "Turing", "alan@example.com")
	eventID := f.createEvent("owner", true, nil)
	otherID := f.createEvent("owner", true, nil)

	approved, _, err := f.attendees.Register(ctx, eventID, "u1")
	require.NoError(t, err)
	_, err = f.attendees.SetApproval(ctx, eventID, approved.ID, true, "owner")
	require.NoError(t, err)
	pending, _, err := f.attendees.Register(ctx, eventID, "u2")
	require.NoError(t, err)

	tests := []struct {
		name       string
		eventID    string
		attendeeID string
		wantErr    error
	}{
		{name: "approved attendee", eventID: eventID, attendeeID: approved.ID},
		{name: "pending attendee", eventID: eventID, attendeeID: pending.ID, wantErr: domain.ErrAttendeeNotApproved},
		{name: "attendee of another event", eventID: otherID, attendeeID: approved.ID, wantErr: domain.ErrNotFound},
		{name: "unknown attendee", eventID: eventID, attendeeID: "att-missing", wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := f.tickets.GetAttendeeTicket(ctx, tt.eventID, tt.attendeeID, "owner")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, f.ticketCode(eventID, "u1"), code)
		})
	}

	t.Run("revoked ticket", func(t *testing.T) {
		_, err := f.attendees.SetApproval(ctx, eventID, approved.ID, false, "owner")
		require.NoError(t, err)
		_, err = f.tickets.GetAttendeeTicket(ctx, eventID, approved.ID, "owner")
		require.ErrorIs(t, err, domain.ErrAttendeeNotApproved)
	})
}

func TestGenerateTicketCode(t *testing.T) {
	seen := map[string]bool{}
	for range 200 {
		code, err := generateTicketCode()
		require.NoError(t, err)
		require.True(t, domain.ValidTicketCode(code), code)
		require.False(t, seen[code])
		seen[code] = true
	}
}
