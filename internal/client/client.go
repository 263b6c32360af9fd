package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventcheckin/internal/domain"
	"eventcheckin/internal/lib/sl"
)

// Error codes returned by the check-in API.
const (
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeRateLimited         = "rate_limited"
	CodeTicketNotFound      = "ticket_not_found"
	CodeEventMismatch       = "event_mismatch"
	CodeAlreadyCheckedIn    = "already_checked_in"
	CodeNotCheckedIn        = "not_checked_in"
	CodeAttendeeNotApproved = "attendee_not_approved"
)

// APIError is a non-2xx answer decoded from the response envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Data    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// CheckInDate returns the timestamp carried by an already_checked_in error.
func (e *APIError) CheckInDate() (time.Time, bool) {
	if e.Code != CodeAlreadyCheckedIn || len(e.Data) == 0 {
		return time.Time{}, false
	}
	var payload struct {
		CheckInDate time.Time `json:"checkInDate"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil || payload.CheckInDate.IsZero() {
		return time.Time{}, false
	}
	return payload.CheckInDate, true
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	log     *slog.Logger
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		log:     logger.With(sl.Module("checkin-client")),
	}
}

// Verify resolves a ticket code. eventID may be empty.
func (c *Client) Verify(ctx context.Context, code, eventID string) (*domain.TicketVerification, error) {
	path := "/ticket/verify/" + url.PathEscape(code)
	if eventID != "" {
		path += "?" + url.Values{"eventId": {eventID}}.Encode()
	}
	var out domain.TicketVerification
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckIn(ctx context.Context, eventID, code string) (*domain.CheckInResult, error) {
	return c.transition(ctx, eventID, "check-in", code)
}

func (c *Client) UncheckIn(ctx context.Context, eventID, code string) (*domain.CheckInResult, error) {
	return c.transition(ctx, eventID, "uncheck-in", code)
}

func (c *Client) transition(ctx context.Context, eventID, action, code string) (*domain.CheckInResult, error) {
	body := struct {
		TicketCode string `json:"ticketCode"`
	}{TicketCode: code}
	var out domain.CheckInResult
	if err := c.do(ctx, http.MethodPost, "/event/"+url.PathEscape(eventID)+"/"+action, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Counts(ctx context.Context, eventID string) (*domain.EventCounts, error) {
	var out domain.EventCounts
	if err := c.do(ctx, http.MethodGet, "/event/"+url.PathEscape(eventID)+"/counts", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckIns(ctx context.Context, eventID string) ([]*domain.CheckInEntry, error) {
	var out []*domain.CheckInEntry
	if err := c.do(ctx, http.MethodGet, "/event/"+url.PathEscape(eventID)+"/check-ins", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Attendees(ctx context.Context, eventID string) ([]*domain.AttendeeListItem, error) {
	var out []*domain.AttendeeListItem
	if err := c.do(ctx, http.MethodGet, "/event/"+url.PathEscape(eventID)+"/attendees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttendeeTicket returns the ticket code of an approved attendee.
func (c *Client) AttendeeTicket(ctx context.Context, eventID, attendeeID string) (string, error) {
	var out struct {
		TicketCode string `json:"ticketCode"`
	}
	path := "/event/" + url.PathEscape(eventID) + "/attendee/" + url.PathEscape(attendeeID) + "/ticket"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}
	return out.TicketCode, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	log := c.log.With(slog.String("method", method), slog.String("path", path))
	start := time.Now()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		log.Debug("request failed", sl.Err(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	log.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode), Message: "non-json error response"}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil || resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Data: env.Data}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
