package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_environment_repository.go -package mocks github.com/authcove/authcove/internal/domain EnvironmentRepository

// AuthProvider selects how end users of an environment authenticate.
type AuthProvider string

const (
	AuthProviderMagicLogin       AuthProvider = "MagicLogin"
	AuthProviderEmailAndPassword AuthProvider = "EmailAndPassword"
)

func (p AuthProvider) Validate() error {
	switch p {
	case AuthProviderMagicLogin, AuthProviderEmailAndPassword:
		return nil
	}
	return fmt.Errorf("invalid auth provider: %s", p)
}

// DomainVerificationStatus tracks a custom-domain check.
type DomainVerificationStatus string

const (
	DomainStatusVerifying DomainVerificationStatus = "Verifying"
	DomainStatusVerified  DomainVerificationStatus = "Verified"
	DomainStatusFailed    DomainVerificationStatus = "Failed"
)

func (s DomainVerificationStatus) Validate() error {
	switch s {
	case DomainStatusVerifying, DomainStatusVerified, DomainStatusFailed:
		return nil
	}
	return fmt.Errorf("invalid domain verification status: %s", s)
}

// Environment is an isolated auth configuration scope within a project: its
// own API credentials, token lifetimes, provider choice, custom domain and
// key-value configuration.
//
// PublicKey and SecretKey are globally unique and immutable once issued; they
// are the environment's API credentials.
type Environment struct {
	ID                     string       `json:"id"`
	ProjectID              string       `json:"project_id"`
	Name                   string       `json:"name"`
	Active                 bool         `json:"active"`
	PublicKey              string       `json:"public_key"`
	SecretKey              string       `json:"-"`
	TokenExpiration        int64        `json:"token_expiration"`
	RefreshTokenExpiration int64        `json:"refresh_token_expiration"`
	AppURL                 string       `json:"app_url"`
	AuthProvider           AuthProvider `json:"auth_provider"`

	CustomDomain            *string                   `json:"custom_domain,omitempty"`
	CustomDomainTXT         *string                   `json:"custom_domain_txt,omitempty"`
	CustomDomainStatus      *DomainVerificationStatus `json:"custom_domain_status,omitempty"`
	CustomDomainTXTStatus   *DomainVerificationStatus `json:"custom_domain_txt_status,omitempty"`
	CustomDomainLastChecked *time.Time                `json:"custom_domain_last_checked,omitempty"`
	CustomDomainVerifiedAt  *time.Time                `json:"custom_domain_verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Environment) Validate() error {
	if e.ProjectID == "" {
		return NewValidationError("project_id is required")
	}
	if e.Name == "" {
		return NewValidationError("name is required")
	}
	if len(e.Name) > 255 {
		return NewValidationError("name length must be between 1 and 255")
	}
	if e.AppURL != "" && !govalidator.IsURL(e.AppURL) {
		return NewValidationError("app_url is not a valid URL")
	}
	if err := e.AuthProvider.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	if e.TokenExpiration <= 0 {
		return NewValidationError("token_expiration must be positive")
	}
	if e.RefreshTokenExpiration <= 0 {
		return NewValidationError("refresh_token_expiration must be positive")
	}
	return nil
}

// BeginDomainVerification stages a new custom domain with the TXT record the
// tenant must publish. Both status fields reset to Verifying.
func (e *Environment) BeginDomainVerification(domain, txtRecord string, now time.Time) {
	verifying := DomainStatusVerifying
	e.CustomDomain = &domain
	e.CustomDomainTXT = &txtRecord
	e.CustomDomainStatus = &verifying
	e.CustomDomainTXTStatus = &verifying
	e.CustomDomainLastChecked = &now
	e.CustomDomainVerifiedAt = nil
}

// MarkDomainVerified records a successful check.
func (e *Environment) MarkDomainVerified(now time.Time) {
	verified := DomainStatusVerified
	e.CustomDomainStatus = &verified
	e.CustomDomainTXTStatus = &verified
	e.CustomDomainLastChecked = &now
	e.CustomDomainVerifiedAt = &now
}

// MarkDomainFailed records a failed check. The domain and TXT record stay in
// place so the tenant can fix DNS and retry.
func (e *Environment) MarkDomainFailed(now time.Time) {
	failed := DomainStatusFailed
	e.CustomDomainStatus = &failed
	e.CustomDomainTXTStatus = &failed
	e.CustomDomainLastChecked = &now
}

// EnvironmentSummary is the slice of environment fields injected into
// template contexts and merged configuration views.
type EnvironmentSummary struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	AppURL  string         `json:"app_url"`
	Project ProjectSummary `json:"project"`
}

// EnvironmentRepository defines the interface for environment database operations
type EnvironmentRepository interface {
	Create(ctx context.Context, environment *Environment) error

	GetByID(ctx context.Context, id string) (*Environment, error)

	// GetSummary fetches the environment plus its owning project's summary
	// fields in one round trip.
	GetSummary(ctx context.Context, id string) (*EnvironmentSummary, error)

	// List returns all environments of a project
	List(ctx context.Context, projectID string) ([]*Environment, error)

	// Update persists mutable fields. PublicKey and SecretKey are never
	// touched by updates.
	Update(ctx context.Context, environment *Environment) error

	Delete(ctx context.Context, id string) error
}

// ErrEnvironmentNotFound is returned when an environment is not found
type ErrEnvironmentNotFound struct {
	ID string
}

func (e *ErrEnvironmentNotFound) Error() string {
	return "environment not found: " + e.ID
}
