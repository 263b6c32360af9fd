package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventcheckin/internal/domain"
	"eventcheckin/internal/metrics"
)

const maxTicketCodeAttempts = 5

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	ticketRepo     domain.TicketRepository
	authz          domain.Authorizer
	newTicketCode  func() (string, error)
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService with the given repositories.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	ticketRepo domain.TicketRepository,
	authz domain.Authorizer,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		ticketRepo:     ticketRepo,
		authz:          authz,
		newTicketCode:  generateTicketCode,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) Register(ctx context.Context, eventID, userID string) (*domain.Attendee, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	// Registration is idempotent.
	if existing, err := s.attendeeRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get attendee: %w", err)
	}

	now := time.Now()
	attendee := domain.NewAttendee(eventID, userID, false, now, now)
	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			existing, getErr := s.attendeeRepo.GetByEventAndUser(ctx, eventID, userID)
			if getErr != nil {
				return nil, false, fmt.Errorf("get attendee: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create attendee: %w", err)
	}

	if event.RequiresApproval {
		return attendee, true, nil
	}

	if err := s.approve(ctx, attendee, now); err != nil {
		if errors.Is(err, domain.ErrCapacityReached) {
			// A full open event turns the registration away instead of queueing it.
			if delErr := s.attendeeRepo.Delete(ctx, attendee.ID); delErr != nil {
				return nil, false, fmt.Errorf("discard attendee: %w", delErr)
			}
			return nil, false, domain.ErrCapacityReached
		}
		return nil, false, err
	}
	return attendee, true, nil
}

func (s *attendeeService) SetApproval(ctx context.Context, eventID, attendeeID string, approved bool, callerID string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceAttendees, domain.ActionWrite); err != nil {
		return nil, err
	}
	attendee, err := s.getEventAttendee(ctx, eventID, attendeeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if approved {
		if err := s.approve(ctx, attendee, now); err != nil {
			return nil, err
		}
		return attendee, nil
	}

	// Revoke first: a failed unapprove then leaves an approved attendee whose ticket can be reissued.
	if err := s.ticketRepo.Revoke(ctx, attendee.ID, callerID, now.UTC().Truncate(time.Microsecond)); err != nil {
		return nil, fmt.Errorf("revoke ticket: %w", err)
	}
	metrics.TicketsRevoked.Inc()
	if err := s.attendeeRepo.Unapprove(ctx, attendee.ID, now); err != nil {
		return nil, fmt.Errorf("unapprove attendee: %w", err)
	}
	attendee.IsApproved = false
	attendee.UpdatedAt = now
	return attendee, nil
}

// approve marks the attendee approved and issues (or reinstates) their ticket.
func (s *attendeeService) approve(ctx context.Context, attendee *domain.Attendee, now time.Time) error {
	if err := s.attendeeRepo.Approve(ctx, attendee.ID, now); err != nil {
		if errors.Is(err, domain.ErrCapacityReached) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("approve attendee: %w", err)
	}
	attendee.IsApproved = true
	attendee.UpdatedAt = now

	for range maxTicketCodeAttempts {
		code, err := s.newTicketCode()
		if err != nil {
			return fmt.Errorf("generate ticket code: %w", err)
		}
		ticket := domain.NewTicket(code, attendee.ID, attendee.EventID, now.UTC().Truncate(time.Microsecond))
		err = s.ticketRepo.Issue(ctx, ticket)
		if err == nil {
			metrics.TicketsIssued.Inc()
			return nil
		}
		if !errors.Is(err, domain.ErrTicketCodeTaken) {
			return fmt.Errorf("issue ticket: %w", err)
		}
	}
	return fmt.Errorf("issue ticket: %w", domain.ErrTicketCodeTaken)
}

func (s *attendeeService) ListAttendees(ctx context.Context, eventID, callerID string) ([]*domain.AttendeeListItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceAttendees, domain.ActionRead); err != nil {
		return nil, err
	}
	items, err := s.attendeeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return items, nil
}

func (s *attendeeService) RemoveAttendee(ctx context.Context, eventID, attendeeID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceAttendees, domain.ActionWrite); err != nil {
		return err
	}
	if _, err := s.getEventAttendee(ctx, eventID, attendeeID); err != nil {
		return err
	}
	if err := s.attendeeRepo.Delete(ctx, attendeeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete attendee: %w", err)
	}
	return nil
}

func (s *attendeeService) getEventAttendee(ctx context.Context, eventID, attendeeID string) (*domain.Attendee, error) {
	attendee, err := s.attendeeRepo.GetByID(ctx, attendeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	if attendee.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	return attendee, nil
}
