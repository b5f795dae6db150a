package domain

import (
	"context"
	"strings"
	"time"
)

//go:generate mockgen -destination mocks/mock_user_repository.go -package mocks github.com/authcove/authcove/internal/domain UserRepository

// User is a tenant end-user (when EnvironmentID is set) or a platform user
// (when it is nil). Consumed by the core as a foreign-key endpoint and as a
// template-context source.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	PasswordHash   *string    `json:"-"`
	EnvironmentID  *string    `json:"environment_id,omitempty"`
	RoleID         *string    `json:"role_id,omitempty"`
	LastSignIn     *time.Time `json:"last_sign_in,omitempty"`
	EmailConfirmed bool       `json:"email_confirmed"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FirstName derives the leading name token from the full name. Empty when no
// full name is set.
func (u *User) FirstName() string {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		return ""
	}
	if idx := strings.IndexByte(name, ' '); idx > 0 {
		return name[:idx]
	}
	return name
}

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, id string) (*User, error)

	GetByEmail(ctx context.Context, environmentID, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	Delete(ctx context.Context, id string) error
}

// ErrUserNotFound is returned when a user is not found
type ErrUserNotFound struct {
	ID string
}

func (e *ErrUserNotFound) Error() string {
	return "user not found: " + e.ID
}

// UserSubscription ties a platform user to a billing subscription. Only a
// foreign-key placeholder here; payment integration lives elsewhere.
type UserSubscription struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ExternalID string    `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
