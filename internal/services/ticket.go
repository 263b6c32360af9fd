package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"eventcheckin/internal/domain"
	"eventcheckin/internal/metrics"
)

type ticketService struct {
	ticketRepo     domain.TicketRepository
	attendeeRepo   domain.AttendeeRepository
	authz          domain.Authorizer
	contextTimeout time.Duration
}

func NewTicketService(
	ticketRepo domain.TicketRepository,
	attendeeRepo domain.AttendeeRepository,
	authz domain.Authorizer,
	timeout time.Duration,
) domain.TicketService {
	return &ticketService{
		ticketRepo:     ticketRepo,
		attendeeRepo:   attendeeRepo,
		authz:          authz,
		contextTimeout: timeout,
	}
}

func (s *ticketService) VerifyTicket(ctx context.Context, code, eventID, callerID string) (*domain.TicketVerification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// An explicit event is checked first so that a caller without access learns nothing about the ticket.
	if eventID != "" {
		if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceCheckIn, domain.ActionRead); err != nil {
			metrics.RecordVerification(outcomeOf(err))
			return nil, err
		}
	}

	code = domain.NormalizeTicketCode(code)
	if !domain.ValidTicketCode(code) {
		metrics.RecordVerification(metrics.OutcomeTicketNotFound)
		return nil, domain.ErrTicketNotFound
	}

	details, err := s.ticketRepo.GetDetailsByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			metrics.RecordVerification(metrics.OutcomeTicketNotFound)
			return nil, domain.ErrTicketNotFound
		}
		metrics.RecordVerification(metrics.OutcomeError)
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	if eventID == "" {
		// Without an explicit event, a code on an event the caller cannot see answers like an
		// unknown code so that existence does not leak.
		if err := s.authz.Authorize(ctx, details.EventID, callerID, domain.ResourceCheckIn, domain.ActionRead); err != nil {
			metrics.RecordVerification(outcomeOf(err))
			if errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrTicketNotFound
			}
			return nil, err
		}
	} else if details.EventID != eventID {
		metrics.RecordVerification(metrics.OutcomeEventMismatch)
		return nil, domain.ErrEventMismatch
	}

	metrics.RecordVerification(metrics.OutcomeSuccess)
	return &domain.TicketVerification{
		Valid:      true,
		EventID:    details.EventID,
		TicketCode: details.Code,
		User: &domain.TicketUser{
			FullName: details.HolderFullName(),
			Email:    details.HolderEmail,
		},
		IsCheckedIn: details.IsCheckedIn,
		CheckInDate: details.CheckedInAt,
	}, nil
}

func (s *ticketService) GetAttendeeTicket(ctx context.Context, eventID, attendeeID, callerID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceCheckIn, domain.ActionRead); err != nil {
		return "", err
	}

	attendee, err := s.attendeeRepo.GetByID(ctx, attendeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get attendee: %w", err)
	}
	if attendee.EventID != eventID {
		return "", domain.ErrNotFound
	}
	if !attendee.IsApproved {
		return "", domain.ErrAttendeeNotApproved
	}

	ticket, err := s.ticketRepo.GetByAttendeeID(ctx, attendeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrAttendeeNotApproved
		}
		return "", fmt.Errorf("get ticket: %w", err)
	}
	if ticket.Revoked() {
		return "", domain.ErrAttendeeNotApproved
	}
	return ticket.Code, nil
}

var ticketCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func generateTicketCode() (string, error) {
	b := make([]rune, domain.TicketCodeLength)
	max := big.NewInt(int64(len(ticketCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = ticketCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// outcomeOf maps an error from a check-in path onto a metrics outcome label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		return metrics.OutcomeAlreadyCheckedIn
	case errors.Is(err, domain.ErrNotCheckedIn):
		return metrics.OutcomeNotCheckedIn
	case errors.Is(err, domain.ErrTicketNotFound):
		return metrics.OutcomeTicketNotFound
	case errors.Is(err, domain.ErrEventMismatch):
		return metrics.OutcomeEventMismatch
	case errors.Is(err, domain.ErrTransitionConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeForbidden
	default:
		return metrics.OutcomeError
	}
}
