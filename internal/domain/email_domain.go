package domain

import (
	"context"
	"time"
)

// EmailDomain is an externally-verified sending domain attached to an
// environment. ExternalID is the id assigned by the verification provider.
type EmailDomain struct {
	ID            string    `json:"id"`
	EnvironmentID string    `json:"environment_id"`
	ExternalID    string    `json:"external_id"`
	Domain        string    `json:"domain"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (d *EmailDomain) Validate() error {
	if d.EnvironmentID == "" {
		return NewValidationError("environment_id is required")
	}
	if d.ExternalID == "" {
		return NewValidationError("external_id is required")
	}
	if d.Domain == "" {
		return NewValidationError("domain is required")
	}
	return nil
}

type EmailDomainRepository interface {
	Create(ctx context.Context, domain *EmailDomain) error
	GetByDomain(ctx context.Context, domain string) (*EmailDomain, error)
	List(ctx context.Context, environmentID string) ([]*EmailDomain, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// ErrEmailDomainNotFound is returned when an email domain is not found
type ErrEmailDomainNotFound struct {
	Domain string
}

func (e *ErrEmailDomainNotFound) Error() string {
	return "email domain not found: " + e.Domain
}
