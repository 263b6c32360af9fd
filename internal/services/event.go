package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventcheckin/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	roleRepo       domain.EventRoleRepository
	userRepo       domain.UserRepository
	authz          domain.Authorizer
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	roleRepo domain.EventRoleRepository,
	userRepo domain.UserRepository,
	authz domain.Authorizer,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		roleRepo:       roleRepo,
		userRepo:       userRepo,
		authz:          authz,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("event owner is required: %w", domain.ErrInvalidInput)
	}
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return fmt.Errorf("event name is required: %w", domain.ErrInvalidInput)
	}
	if event.EndsAt.Before(event.StartsAt) {
		return fmt.Errorf("event ends before it starts: %w", domain.ErrInvalidInput)
	}
	if event.Capacity != nil && *event.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceEvent, domain.ActionRead); err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceEvent, domain.ActionDelete); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListRoles(ctx context.Context, eventID, callerID string) ([]*domain.EventRoleAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceRoles, domain.ActionRead); err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *eventService) AssignRole(ctx context.Context, eventID, userID string, role domain.EventRole, callerID string) (*domain.EventRoleAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceRoles, domain.ActionWrite); err != nil {
		return nil, err
	}
	if !role.Valid() || role == domain.RoleCreator {
		return nil, fmt.Errorf("role %q cannot be assigned: %w", role, domain.ErrInvalidInput)
	}
	if err := s.ensureNotCreator(ctx, eventID, userID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.roleRepo.Assign(ctx, eventID, userID, role); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	return &domain.EventRoleAssignment{
		EventID:  eventID,
		UserID:   userID,
		Role:     role,
		Name:     user.Name,
		LastName: user.LastName,
		Email:    user.Email,
	}, nil
}

func (s *eventService) RemoveRole(ctx context.Context, eventID, userID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authz.Authorize(ctx, eventID, callerID, domain.ResourceRoles, domain.ActionWrite); err != nil {
		return err
	}
	if err := s.ensureNotCreator(ctx, eventID, userID); err != nil {
		return err
	}
	if err := s.roleRepo.Remove(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove role: %w", err)
	}
	return nil
}

// ensureNotCreator rejects changes to the creator's role.
func (s *eventService) ensureNotCreator(ctx context.Context, eventID, userID string) error {
	current, err := s.roleRepo.GetRole(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get event role: %w", err)
	}
	if current == domain.RoleCreator {
		return domain.ErrForbidden
	}
	return nil
}
