package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a registered user. Users are owned by the surrounding application; this service only reads them.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins first and last name, falling back to the email when both are empty.
func FullName(name, lastName, email string) string {
	full := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(lastName))
	if full == "" {
		return email
	}
	return full
}

// FullName returns the display name used on check-in screens.
func (u *User) FullName() string {
	return FullName(u.Name, u.LastName, u.Email)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
// It is the session capability of the surrounding application: login and signup live elsewhere.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
	// VerifyBearer resolves an Authorization header value. An empty header or token yields ErrMissingCredentials.
	VerifyBearer(authorization string) (userID string, err error)
}
