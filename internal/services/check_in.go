package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventcheckin/internal/domain"
	"eventcheckin/internal/metrics"
)

type checkInService struct {
	ticketRepo     domain.TicketRepository
	checkInRepo    domain.CheckInRepository
	eventRepo      domain.EventRepository
	authz          domain.Authorizer
	now            func() time.Time
	contextTimeout time.Duration
}

func NewCheckInService(
	ticketRepo domain.TicketRepository,
	checkInRepo domain.CheckInRepository,
	eventRepo domain.EventRepository,
	authz domain.Authorizer,
	timeout time.Duration,
) domain.CheckInService {
	return &checkInService{
		ticketRepo:     ticketRepo,
		checkInRepo:    checkInRepo,
		eventRepo:      eventRepo,
		authz:          authz,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

// timestamp returns the current time at the precision Postgres stores, so a stored check-in time
// compares equal to the one returned to the caller.
func (s *checkInService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *checkInService) CheckIn(ctx context.Context, eventID, code, callerID string) (*domain.CheckInResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	details, err := s.transition(ctx, eventID, code, callerID, s.ticketRepo.CheckIn)
	metrics.RecordTransition("check_in", outcomeOf(err))
	if err != nil {
		return nil, err
	}
	return &domain.CheckInResult{
		User:        domain.TicketUser{FullName: details.HolderFullName()},
		CheckInDate: details.CheckedInAt,
	}, nil
}

func (s *checkInService) UncheckIn(ctx context.Context, eventID, code, callerID string) (*domain.CheckInResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	details, err := s.transition(ctx, eventID, code, callerID, s.ticketRepo.UncheckIn)
	metrics.RecordTransition("uncheck_in", outcomeOf(err))
	if err != nil {
		return nil, err
	}
	return &domain.CheckInResult{
		User: domain.TicketUser{FullName: details.HolderFullName()},
	}, nil
}

type transitionFunc func(ctx context.Context, eventID, code, operatorID string, at time.Time) (*domain.TicketDetails, error)

func (s *checkInService) transition(ctx context.Context, eventID, code, callerID string, apply transitionFunc) (*domain.TicketDetails, error) {
	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceCheckIn, domain.ActionWrite); err != nil {
		return nil, err
	}

	code = domain.NormalizeTicketCode(code)
	if !domain.ValidTicketCode(code) {
		return nil, domain.ErrTicketNotFound
	}

	details, err := apply(ctx, eventID, code, callerID, s.timestamp())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound),
			errors.Is(err, domain.ErrEventMismatch),
			errors.Is(err, domain.ErrAlreadyCheckedIn),
			errors.Is(err, domain.ErrNotCheckedIn):
			return nil, err
		}
		return nil, fmt.Errorf("apply transition: %w", err)
	}
	return details, nil
}

func (s *checkInService) ListCheckIns(ctx context.Context, eventID, callerID string) ([]*domain.CheckInEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceCheckIn, domain.ActionRead); err != nil {
		return nil, err
	}
	entries, err := s.checkInRepo.ListLiveByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	return entries, nil
}

func (s *checkInService) GetCounts(ctx context.Context, eventID, callerID string) (*domain.EventCounts, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceCheckIn, domain.ActionRead); err != nil {
		return nil, err
	}
	counts, err := s.eventRepo.GetCounts(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get counts: %w", err)
	}
	return counts, nil
}
