package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_project_repository.go -package mocks github.com/authcove/authcove/internal/domain ProjectRepository

// Project is the top-level tenant unit. Every project owns one or more
// environments; deleting a project cascades to all of them.
type Project struct {
	ID             string    `json:"id"`
	AppName        string    `json:"app_name"`
	Active         bool      `json:"active"`
	Main           bool      `json:"main"`
	UserOwnerID    string    `json:"user_owner_id"`
	SubscriptionID *string   `json:"subscription_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Project) Validate() error {
	if p.AppName == "" {
		return NewValidationError("app_name is required")
	}
	if len(p.AppName) > 255 {
		return NewValidationError("app_name length must be between 1 and 255")
	}
	if p.UserOwnerID == "" {
		return NewValidationError("user_owner_id is required")
	}
	return nil
}

// ProjectSummary is the slice of project fields exposed to template contexts
// and merged configuration views.
type ProjectSummary struct {
	ID      string `json:"id"`
	AppName string `json:"app_name"`
}

// ProjectRepository defines the interface for project database operations
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error

	GetByID(ctx context.Context, id string) (*Project, error)

	// List returns all projects owned by a user
	List(ctx context.Context, userOwnerID string) ([]*Project, error)

	Update(ctx context.Context, project *Project) error

	// Delete removes a project. Environments and everything under them go
	// with it via the schema's cascade rules.
	Delete(ctx context.Context, id string) error
}

// ErrProjectNotFound is returned when a project is not found
type ErrProjectNotFound struct {
	ID string
}

func (e *ErrProjectNotFound) Error() string {
	return "project not found: " + e.ID
}
