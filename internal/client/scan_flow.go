package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventcheckin/internal/domain"
)

// ScanState is the operator screen state of one scanning device.
// It is never authoritative for a ticket's check-in status.
type ScanState string

const (
	StateIdle             ScanState = "idle"
	StateScanned          ScanState = "scanned"
	StateConfirming       ScanState = "confirming"
	StateCommitting       ScanState = "committing"
	StateResult           ScanState = "result"
	StateAlreadyCheckedIn ScanState = "already_checked_in"
)

// Outcome describes what the last result screen shows.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeCheckedIn Outcome = "checked_in"
	OutcomeUndone    Outcome = "unchecked_in"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
)

var ErrInvalidTransition = errors.New("invalid scan flow transition")

// CheckInAPI is the part of Client the scan flow drives.
type CheckInAPI interface {
	Verify(ctx context.Context, code, eventID string) (*domain.TicketVerification, error)
	CheckIn(ctx context.Context, eventID, code string) (*domain.CheckInResult, error)
	UncheckIn(ctx context.Context, eventID, code string) (*domain.CheckInResult, error)
}

// ScanView is a snapshot of the flow for rendering.
type ScanView struct {
	State        ScanState
	Outcome      Outcome
	Code         string
	HolderName   string
	CheckInDate  *time.Time
	Message      string
	Err          error
	Verification *domain.TicketVerification
}

// ScanFlow walks one device through idle → scanned → confirming → committing → result.
// A ticket that is already checked in stops at already_checked_in, from where the
// operator can undo the check-in or go back to idle.
type ScanFlow struct {
	api     CheckInAPI
	eventID string
	view    ScanView
}

func NewScanFlow(api CheckInAPI, eventID string) *ScanFlow {
	return &ScanFlow{api: api, eventID: eventID, view: ScanView{State: StateIdle}}
}

func (f *ScanFlow) State() ScanState { return f.view.State }

func (f *ScanFlow) View() ScanView { return f.view }

// Scan verifies a code. Allowed from idle and from any terminal screen.
func (f *ScanFlow) Scan(ctx context.Context, code string) (ScanView, error) {
	switch f.view.State {
	case StateIdle, StateResult, StateAlreadyCheckedIn:
	default:
		return f.view, f.invalid("scan")
	}
	f.view = ScanView{State: StateScanned, Code: code}

	v, err := f.api.Verify(ctx, code, f.eventID)
	if err != nil {
		f.fail(err)
		return f.view, nil
	}
	f.view.Verification = v
	if !v.Valid {
		f.view.State = StateResult
		f.view.Outcome = OutcomeInvalid
		f.view.Message = v.Message
		return f.view, nil
	}
	if v.TicketCode != "" {
		f.view.Code = v.TicketCode
	}
	if v.User != nil {
		f.view.HolderName = v.User.FullName
	}
	if v.IsCheckedIn {
		f.view.State = StateAlreadyCheckedIn
		f.view.CheckInDate = v.CheckInDate
		return f.view, nil
	}
	f.view.State = StateConfirming
	return f.view, nil
}

// Confirm checks in the ticket shown on the confirming screen.
func (f *ScanFlow) Confirm(ctx context.Context) (ScanView, error) {
	if f.view.State != StateConfirming {
		return f.view, f.invalid("confirm")
	}
	f.view.State = StateCommitting

	res, err := f.api.CheckIn(ctx, f.eventID, f.view.Code)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == CodeAlreadyCheckedIn {
			// Another device won the race.
			f.view.State = StateAlreadyCheckedIn
			f.view.Message = apiErr.Message
			if at, ok := apiErr.CheckInDate(); ok {
				f.view.CheckInDate = &at
			}
			return f.view, nil
		}
		f.fail(err)
		return f.view, nil
	}
	f.view.State = StateResult
	f.view.Outcome = OutcomeCheckedIn
	f.view.HolderName = res.User.FullName
	f.view.CheckInDate = res.CheckInDate
	return f.view, nil
}

// Undo reverts a check-in. Allowed from already_checked_in and right after a successful check-in.
func (f *ScanFlow) Undo(ctx context.Context) (ScanView, error) {
	allowed := f.view.State == StateAlreadyCheckedIn ||
		(f.view.State == StateResult && f.view.Outcome == OutcomeCheckedIn)
	if !allowed {
		return f.view, f.invalid("undo")
	}
	f.view.State = StateCommitting

	res, err := f.api.UncheckIn(ctx, f.eventID, f.view.Code)
	if err != nil {
		f.fail(err)
		return f.view, nil
	}
	f.view.State = StateResult
	f.view.Outcome = OutcomeUndone
	f.view.HolderName = res.User.FullName
	f.view.CheckInDate = nil
	f.view.Message = ""
	return f.view, nil
}

// Cancel drops whatever is on screen and returns to idle.
func (f *ScanFlow) Cancel() ScanView {
	f.view = ScanView{State: StateIdle}
	return f.view
}

func (f *ScanFlow) fail(err error) {
	f.view.State = StateResult
	f.view.Outcome = OutcomeFailed
	f.view.Err = err
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		f.view.Message = apiErr.Message
	} else {
		f.view.Message = err.Error()
	}
}

func (f *ScanFlow) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, f.view.State)
}
