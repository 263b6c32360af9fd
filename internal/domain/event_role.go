package domain

import "context"

// EventRole is a user's role on a single event.
type EventRole string

const (
	RoleCreator   EventRole = "CREATOR"
	RoleAdmin     EventRole = "ADMIN"
	RoleModerator EventRole = "MODERATOR"
)

// Valid reports whether r is a known role.
func (r EventRole) Valid() bool {
	switch r {
	case RoleCreator, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// Resource and Action name what a role may do on an event.
type (
	Resource string
	Action   string
)

const (
	ResourceEvent     Resource = "event"
	ResourceAttendees Resource = "attendees"
	ResourceCheckIn   Resource = "check-in"
	ResourceRoles     Resource = "roles"

	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// EventRoleAssignment is a role holder joined with the user's profile.
// swagger:model EventRoleAssignment
type EventRoleAssignment struct {
	EventID  string    `json:"eventId"`
	UserID   string    `json:"userId"`
	Role     EventRole `json:"role"`
	Name     string    `json:"name"`
	LastName string    `json:"lastName"`
	Email    string    `json:"email"`
}

// EventRoleRepository defines the interface for event role storage.
type EventRoleRepository interface {
	// Assign sets the user's role on the event, replacing any previous role.
	Assign(ctx context.Context, eventID, userID string, role EventRole) error
	// GetRole returns ErrNotFound when the user holds no role on the event.
	GetRole(ctx context.Context, eventID, userID string) (EventRole, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventRoleAssignment, error)
	Remove(ctx context.Context, eventID, userID string) error
}

// AccessPolicy decides whether a role may perform an action on a resource.
type AccessPolicy interface {
	Allowed(role EventRole, resource Resource, action Action) (bool, error)
}

// Authorizer checks a caller's permission on an event. It returns ErrNotFound when the event
// does not exist and ErrForbidden when the caller lacks the permission.
type Authorizer interface {
	Authorize(ctx context.Context, eventID, userID string, resource Resource, action Action) error
}
