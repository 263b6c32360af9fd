package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcheckin/internal/delivery/http/helpers"
	"eventcheckin/internal/domain"
)

func TestCheckInController_CheckIn(t *testing.T) {
	checkedInAt := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		eventID       string
		body          string
		anonymous     bool
		result        *domain.CheckInResult
		fakeErr       error
		wantStatus    int
		wantCode      string
		wantMessage   string
		wantCheckedIn *time.Time
	}{
		{
			name:    "success",
			eventID: testEventID,
			body:    `{"ticketCode":"ABCD1234EFGH5678"}`,
			result: &domain.CheckInResult{
				User: domain.TicketUser{FullName: "Ada Lovelace"}, CheckInDate: &checkedInAt,
			},
			wantStatus:    http.StatusOK,
			wantCheckedIn: &checkedInAt,
		},
		{
			name:          "already checked in carries the original date",
			eventID:       testEventID,
			body:          `{"ticketCode":"ABCD1234EFGH5678"}`,
			fakeErr:       &domain.AlreadyCheckedInError{CheckedInAt: checkedInAt},
			wantStatus:    http.StatusConflict,
			wantCode:      helpers.ErrCodeAlreadyCheckedIn,
			wantCheckedIn: &checkedInAt,
		},
		{
			name:       "ticket not found",
			eventID:    testEventID,
			body:       `{"ticketCode":"ZZZZ"}`,
			fakeErr:    domain.ErrTicketNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeTicketNotFound,
		},
		{
			name:       "event mismatch",
			eventID:    testEventID,
			body:       `{"ticketCode":"ABCD1234EFGH5678"}`,
			fakeErr:    domain.ErrEventMismatch,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   helpers.ErrCodeEventMismatch,
		},
		{
			name:       "forbidden",
			eventID:    testEventID,
			body:       `{"ticketCode":"ABCD1234EFGH5678"}`,
			fakeErr:    domain.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
		{
			name:    "non-canonical event id reaches the service canonical",
			eventID: strings.ReplaceAll(strings.ToUpper(testEventID), "-", ""),
			body:    `{"ticketCode":"ABCD1234EFGH5678"}`,
			result: &domain.CheckInResult{
				User: domain.TicketUser{FullName: "Ada Lovelace"}, CheckInDate: &checkedInAt,
			},
			wantStatus:    http.StatusOK,
			wantCheckedIn: &checkedInAt,
		},
		{
			name:       "concurrent state change is a conflict",
			eventID:    testEventID,
			body:       `{"ticketCode":"ABCD1234EFGH5678"}`,
			fakeErr:    domain.ErrTransitionConflict,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:        "invalid event id",
			eventID:     "ev-1",
			body:        `{"ticketCode":"ABCD1234EFGH5678"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: "invalid eventId",
		},
		{
			name:        "missing ticket code",
			eventID:     testEventID,
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: "ticketCode is required",
		},
		{
			name:        "unknown field rejected",
			eventID:     testEventID,
			body:        `{"ticketCode":"ABCD1234EFGH5678","force":true}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: "unknown field",
		},
		{
			name:       "no user in context",
			eventID:    testEventID,
			body:       `{"ticketCode":"ABCD1234EFGH5678"}`,
			anonymous:  true,
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:        "service error is not leaked",
			eventID:     testEventID,
			body:        `{"ticketCode":"ABCD1234EFGH5678"}`,
			fakeErr:     errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    helpers.ErrCodeInternalError,
			wantMessage: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCheckInService{result: tt.result, err: tt.fakeErr}
			ctrl := NewCheckInController(testLogger, fake)
			req := testRequest(http.MethodPost, "/event/"+tt.eventID+"/check-in", tt.body,
				map[string]string{"eventId": tt.eventID}, tt.anonymous)
			rr := httptest.NewRecorder()

			ctrl.CheckIn(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var data struct {
				User        domain.TicketUser `json:"user"`
				CheckInDate *time.Time        `json:"checkInDate"`
			}
			apiErr := decodeEnvelope(t, rr, &data)
			if tt.wantCode == "" {
				require.Nil(t, apiErr)
				assert.Equal(t, "Ada Lovelace", data.User.FullName)
				assert.Equal(t, "check-in", fake.lastOp)
				assert.Equal(t, testEventID, fake.lastEventID)
			} else {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				assert.Contains(t, apiErr.Message, tt.wantMessage)
			}
			if tt.wantCheckedIn != nil {
				require.NotNil(t, data.CheckInDate)
				assert.True(t, tt.wantCheckedIn.Equal(*data.CheckInDate))
			}
		})
	}
}

func TestCheckInController_UncheckIn(t *testing.T) {
	t.Run("success omits checkInDate", func(t *testing.T) {
		fake := &fakeCheckInService{result: &domain.CheckInResult{User: domain.TicketUser{FullName: "Ada Lovelace"}}}
		ctrl := NewCheckInController(testLogger, fake)
		req := testRequest(http.MethodPost, "/event/"+testEventID+"/uncheck-in", `{"ticketCode":"abcd1234efgh5678"}`,
			map[string]string{"eventId": testEventID}, false)
		rr := httptest.NewRecorder()

		ctrl.UncheckIn(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":{"user":{"fullName":"Ada Lovelace"}},"error":null}`, rr.Body.String())
		assert.Equal(t, "uncheck-in", fake.lastOp)
		assert.Equal(t, "abcd1234efgh5678", fake.lastCode)
	})

	t.Run("not checked in", func(t *testing.T) {
		ctrl := NewCheckInController(testLogger, &fakeCheckInService{err: domain.ErrNotCheckedIn})
		req := testRequest(http.MethodPost, "/event/"+testEventID+"/uncheck-in", `{"ticketCode":"ABCD1234EFGH5678"}`,
			map[string]string{"eventId": testEventID}, false)
		rr := httptest.NewRecorder()

		ctrl.UncheckIn(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, helpers.ErrCodeNotCheckedIn, apiErr.Code)
	})
}

func TestCheckInController_ListCheckIns(t *testing.T) {
	at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		entries    []*domain.CheckInEntry
		fakeErr    error
		wantStatus int
		wantBody   string
	}{
		{
			name: "entries",
			entries: []*domain.CheckInEntry{
				{ID: "c1", User: domain.TicketUser{FullName: "Alan Turing", Email: "alan@example.com"}, CheckInDate: at},
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"data":[{"id":"c1","user":{"fullName":"Alan Turing","email":"alan@example.com"},"checkInDate":"2025-07-01T12:00:00Z"}],"error":null}`,
		},
		{
			name:       "nil list renders empty array",
			wantStatus: http.StatusOK,
			wantBody:   `{"data":[],"error":null}`,
		},
		{
			name:       "missing event",
			fakeErr:    domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"data":null,"error":{"code":"not_found","message":"not found"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewCheckInController(testLogger, &fakeCheckInService{entries: tt.entries, err: tt.fakeErr})
			req := testRequest(http.MethodGet, "/event/"+testEventID+"/check-ins", "",
				map[string]string{"eventId": testEventID}, false)
			rr := httptest.NewRecorder()

			ctrl.ListCheckIns(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestCheckInController_GetCounts(t *testing.T) {
	fake := &fakeCheckInService{counts: &domain.EventCounts{
		EventName: "Conf", TotalAttendees: 3, CheckedInCount: 1, LocationType: domain.LocationVenue,
	}}
	ctrl := NewCheckInController(testLogger, fake)
	req := testRequest(http.MethodGet, "/event/"+testEventID+"/counts", "", map[string]string{"eventId": testEventID}, false)
	rr := httptest.NewRecorder()

	ctrl.GetCounts(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var counts domain.EventCounts
	require.Nil(t, decodeEnvelope(t, rr, &counts))
	assert.Equal(t, 3, counts.TotalAttendees)
	assert.Equal(t, 1, counts.CheckedInCount)
	assert.Equal(t, domain.LocationVenue, counts.LocationType)
}
