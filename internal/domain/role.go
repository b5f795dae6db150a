package domain

import (
	"context"
	"time"
)

// Role is a lookup entity assignable to environment users and referenced by
// the polymorphic project configuration join.
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Default   bool      `json:"default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Role) Validate() error {
	if r.Name == "" {
		return NewValidationError("name is required")
	}
	if len(r.Name) > 100 {
		return NewValidationError("name length must be between 1 and 100")
	}
	return nil
}

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
	Delete(ctx context.Context, id string) error
}
