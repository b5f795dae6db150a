package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_email_template_repository.go -package mocks github.com/authcove/authcove/internal/domain EmailTemplateRepository

// EmailTemplateKind enumerates the built-in transactional email types. Each
// environment carries at most one template per kind.
type EmailTemplateKind string

const (
	EmailTemplateKindWelcome       EmailTemplateKind = "Welcome"
	EmailTemplateKindMagicLink     EmailTemplateKind = "MagicLink"
	EmailTemplateKindConfirmEmail  EmailTemplateKind = "ConfirmEmail"
	EmailTemplateKindResetPassword EmailTemplateKind = "ResetPassword"
	EmailTemplateKindInviteUser    EmailTemplateKind = "InviteUser"
)

func (k EmailTemplateKind) Validate() error {
	switch k {
	case EmailTemplateKindWelcome, EmailTemplateKindMagicLink, EmailTemplateKindConfirmEmail,
		EmailTemplateKindResetPassword, EmailTemplateKindInviteUser:
		return nil
	}
	return fmt.Errorf("invalid email template kind: %s", k)
}

// EmailTemplate is a stored transactional email. Subject, FromName, Preview
// and Content are themselves small template strings evaluated against a data
// context at send time.
type EmailTemplate struct {
	ID            string            `json:"id"`
	EnvironmentID string            `json:"environment_id"`
	Kind          EmailTemplateKind `json:"kind"`
	Name          string            `json:"name"`
	Subject       string            `json:"subject"`
	FromName      string            `json:"from_name"`
	FromEmail     string            `json:"from_email"`
	ReplyTo       string            `json:"reply_to,omitempty"`
	Content       string            `json:"content"`
	Preview       string            `json:"preview,omitempty"`
	Enabled       bool              `json:"enabled"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (t *EmailTemplate) Validate() error {
	if t.EnvironmentID == "" {
		return NewValidationError("environment_id is required")
	}
	if err := t.Kind.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	if t.Name == "" {
		return NewValidationError("name is required")
	}
	if len(t.Name) > 255 {
		return NewValidationError("name length must be between 1 and 255")
	}
	if t.Subject == "" {
		return NewValidationError("subject is required")
	}
	if t.Content == "" {
		return NewValidationError("content is required")
	}
	if t.FromEmail == "" {
		return NewValidationError("from_email is required")
	}
	if !govalidator.IsEmail(t.FromEmail) {
		return NewValidationError("from_email is not a valid email")
	}
	if t.ReplyTo != "" && !govalidator.IsEmail(t.ReplyTo) {
		return NewValidationError("reply_to is not a valid email")
	}
	return nil
}

// EmailTemplateRepository defines the interface for email template database operations
type EmailTemplateRepository interface {
	Create(ctx context.Context, template *EmailTemplate) error

	// GetByKind resolves the template of a kind for an environment,
	// enabled or not. Callers decide what a disabled template means.
	GetByKind(ctx context.Context, environmentID string, kind EmailTemplateKind) (*EmailTemplate, error)

	GetByID(ctx context.Context, environmentID, id string) (*EmailTemplate, error)

	// List retrieves all templates of an environment
	List(ctx context.Context, environmentID string) ([]*EmailTemplate, error)

	Update(ctx context.Context, template *EmailTemplate) error

	Delete(ctx context.Context, environmentID, id string) error
}

// ErrEmailTemplateNotFound is returned when no template of the requested kind
// exists for the environment
type ErrEmailTemplateNotFound struct {
	Kind          EmailTemplateKind
	EnvironmentID string
}

func (e *ErrEmailTemplateNotFound) Error() string {
	return fmt.Sprintf("email template %s not found for environment %s", e.Kind, e.EnvironmentID)
}
