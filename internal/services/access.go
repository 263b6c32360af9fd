package services

import (
	"context"
	"errors"
	"fmt"

	"eventcheckin/internal/domain"
)

type eventAuthorizer struct {
	eventRepo domain.EventRepository
	roleRepo  domain.EventRoleRepository
	policy    domain.AccessPolicy
}

// NewEventAuthorizer resolves the caller's role on an event and asks policy whether the role permits the action.
func NewEventAuthorizer(eventRepo domain.EventRepository, roleRepo domain.EventRoleRepository, policy domain.AccessPolicy) domain.Authorizer {
	return &eventAuthorizer{
		eventRepo: eventRepo,
		roleRepo:  roleRepo,
		policy:    policy,
	}
}

func (a *eventAuthorizer) Authorize(ctx context.Context, eventID, userID string, resource domain.Resource, action domain.Action) error {
	role, err := a.roleRepo.GetRole(ctx, eventID, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get event role: %w", err)
		}
		// No role: tell a missing event apart from a missing permission.
		if _, err := a.eventRepo.GetByID(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		return domain.ErrForbidden
	}

	allowed, err := a.policy.Allowed(role, resource, action)
	if err != nil {
		return fmt.Errorf("evaluate policy: %w", err)
	}
	if !allowed {
		return domain.ErrForbidden
	}
	return nil
}
