package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_project_config_repository.go -package mocks github.com/authcove/authcove/internal/domain ProjectConfigRepository

// ConfigRelationKind tags which lookup table a ConfigRelation points into.
type ConfigRelationKind string

const (
	ConfigRelationCustomFields ConfigRelationKind = "CustomFields"
	ConfigRelationUserRoles    ConfigRelationKind = "UserRoles"
)

func (k ConfigRelationKind) Validate() error {
	switch k {
	case ConfigRelationCustomFields, ConfigRelationUserRoles:
		return nil
	}
	return fmt.Errorf("invalid config relation kind: %s", k)
}

// ConfigRelation is the tagged union (kind, id) the project configuration
// join dispatches on. The id must reference an existing Role or CustomField
// depending on the kind. This is an application-level invariant, since the target
// table varies and no foreign key can express it. Construct values through
// NewConfigRelation so unknown kinds never circulate.
type ConfigRelation struct {
	Kind ConfigRelationKind `json:"kind"`
	ID   string             `json:"id"`
}

func NewConfigRelation(kind ConfigRelationKind, id string) (ConfigRelation, error) {
	if err := kind.Validate(); err != nil {
		return ConfigRelation{}, NewValidationError(err.Error())
	}
	if id == "" {
		return ConfigRelation{}, NewValidationError("relation id is required")
	}
	return ConfigRelation{Kind: kind, ID: id}, nil
}

// ProjectConfig binds an environment+project pair to a polymorphic relation.
// Composite primary key (environment_id, project_id).
type ProjectConfig struct {
	EnvironmentID string         `json:"environment_id"`
	ProjectID     string         `json:"project_id"`
	Relation      ConfigRelation `json:"relation"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (c *ProjectConfig) Validate() error {
	if c.EnvironmentID == "" {
		return NewValidationError("environment_id is required")
	}
	if c.ProjectID == "" {
		return NewValidationError("project_id is required")
	}
	if err := c.Relation.Kind.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	if c.Relation.ID == "" {
		return NewValidationError("relation id is required")
	}
	return nil
}

// ProjectConfigRepository defines the interface for the environment/project
// configuration join
type ProjectConfigRepository interface {
	// Set creates or replaces the row for the (environment, project) pair
	Set(ctx context.Context, config *ProjectConfig) error

	// Get retrieves the row for the (environment, project) pair
	Get(ctx context.Context, environmentID, projectID string) (*ProjectConfig, error)

	// ListByEnvironment retrieves all rows of an environment
	ListByEnvironment(ctx context.Context, environmentID string) ([]*ProjectConfig, error)

	Delete(ctx context.Context, environmentID, projectID string) error
}

// ErrProjectConfigNotFound is returned when no row exists for an
// (environment, project) pair
type ErrProjectConfigNotFound struct {
	EnvironmentID string
	ProjectID     string
}

func (e *ErrProjectConfigNotFound) Error() string {
	return fmt.Sprintf("project config not found for environment %s and project %s", e.EnvironmentID, e.ProjectID)
}
