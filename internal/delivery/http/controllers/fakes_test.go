package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/delivery/http/middleware"
	"eventcheckin/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID    = "6f1c1b7e-9a4e-4a53-9d43-7f0ad1f3a2b1"
	testAttendeeID = "0b9f7a53-3c55-4f0e-8a51-1f2d3c4b5a69"
	testUserID     = "c2a0c1de-5a1e-4c9b-9c7e-2d7b0f1e3a44"
	testCallerID   = "user-123"
	testCode       = "ABCD1234EFGH5678"
)

// testRequest builds a request with the given path values and, unless anonymous, an authenticated caller.
func testRequest(method, target, body string, pathValues map[string]string, anonymous bool) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if !anonymous {
		req = req.WithContext(middleware.SetUserID(req.Context(), testCallerID))
	}
	return req
}

// decodeEnvelope decodes the response and unmarshals its data into dest when dest is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dest))
	}
	return envelope.Error
}

type fakeCheckInService struct {
	result      *domain.CheckInResult
	entries     []*domain.CheckInEntry
	counts      *domain.EventCounts
	err         error
	lastCode    string
	lastOp      string
	lastEventID string
}

func (f *fakeCheckInService) CheckIn(_ context.Context, eventID, code, _ string) (*domain.CheckInResult, error) {
	f.lastOp, f.lastCode, f.lastEventID = "check-in", code, eventID
	return f.result, f.err
}

func (f *fakeCheckInService) UncheckIn(_ context.Context, eventID, code, _ string) (*domain.CheckInResult, error) {
	f.lastOp, f.lastCode, f.lastEventID = "uncheck-in", code, eventID
	return f.result, f.err
}

func (f *fakeCheckInService) ListCheckIns(context.Context, string, string) ([]*domain.CheckInEntry, error) {
	return f.entries, f.err
}

func (f *fakeCheckInService) GetCounts(context.Context, string, string) (*domain.EventCounts, error) {
	return f.counts, f.err
}

type fakeTicketService struct {
	verification *domain.TicketVerification
	code         string
	err          error
	lastEventID  string
}

func (f *fakeTicketService) VerifyTicket(_ context.Context, _, eventID, _ string) (*domain.TicketVerification, error) {
	f.lastEventID = eventID
	return f.verification, f.err
}

func (f *fakeTicketService) GetAttendeeTicket(context.Context, string, string, string) (string, error) {
	return f.code, f.err
}

type fakeAttendeeService struct {
	attendee     *domain.Attendee
	created      bool
	items        []*domain.AttendeeListItem
	err          error
	lastApproved *bool
}

func (f *fakeAttendeeService) Register(context.Context, string, string) (*domain.Attendee, bool, error) {
	return f.attendee, f.created, f.err
}

func (f *fakeAttendeeService) SetApproval(_ context.Context, _, _ string, approved bool, _ string) (*domain.Attendee, error) {
	f.lastApproved = &approved
	return f.attendee, f.err
}

func (f *fakeAttendeeService) ListAttendees(context.Context, string, string) ([]*domain.AttendeeListItem, error) {
	return f.items, f.err
}

func (f *fakeAttendeeService) RemoveAttendee(context.Context, string, string, string) error {
	return f.err
}

type fakeEventService struct {
	event      *domain.Event
	roles      []*domain.EventRoleAssignment
	err        error
	lastCreate *domain.Event
	lastRole   domain.EventRole
}

func (f *fakeEventService) CreateEvent(_ context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.err != nil {
		return f.err
	}
	event.ID = testEventID
	return nil
}

func (f *fakeEventService) GetEvent(context.Context, string, string) (*domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(context.Context, string, string) error {
	return f.err
}

func (f *fakeEventService) ListRoles(context.Context, string, string) ([]*domain.EventRoleAssignment, error) {
	return f.roles, f.err
}

func (f *fakeEventService) AssignRole(_ context.Context, eventID, userID string, role domain.EventRole, _ string) (*domain.EventRoleAssignment, error) {
	f.lastRole = role
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EventRoleAssignment{EventID: eventID, UserID: userID, Role: role}, nil
}

func (f *fakeEventService) RemoveRole(context.Context, string, string, string) error {
	return f.err
}
