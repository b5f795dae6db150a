package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_email_service.go -package mocks github.com/authcove/authcove/internal/domain EmailServiceInterface

// SendEmailParams is the request for a tenant-facing transactional email. The
// from address and content come from the environment's stored template.
type SendEmailParams struct {
	To            string            `json:"to"`
	Kind          EmailTemplateKind `json:"email_template_type"`
	EnvironmentID string            `json:"environment_id"`
	UserID        string            `json:"user_id,omitempty"`
	Data          MapOfAny          `json:"data,omitempty"`
	ScheduledAt   *time.Time        `json:"scheduled_at,omitempty"`
}

func (p *SendEmailParams) Validate() error {
	if p.To == "" {
		return NewValidationError("to is required")
	}
	if !govalidator.IsEmail(p.To) {
		return NewValidationError("to is not a valid email")
	}
	if err := p.Kind.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	if p.EnvironmentID == "" {
		return NewValidationError("environment_id is required")
	}
	return nil
}

// InternalSender is the closed set of operational identities internal
// notifications are sent from.
type InternalSender string

const (
	InternalSenderSupport InternalSender = "support"
	InternalSenderFounder InternalSender = "founder"
)

// InternalSenderIdentity is the sending identity an InternalSender maps to.
type InternalSenderIdentity struct {
	Name  string
	Email string
}

// internalSenders is the static lookup table behind InternalSender. Adding a
// channel means adding a constant and a row here, nothing configurable.
var internalSenders = map[InternalSender]InternalSenderIdentity{
	InternalSenderSupport: {Name: "Authcove Support", Email: "support@authcove.com"},
	InternalSenderFounder: {Name: "Nico from Authcove", Email: "nico@authcove.com"},
}

// Identity resolves the sending identity for the channel.
func (s InternalSender) Identity() (InternalSenderIdentity, error) {
	identity, ok := internalSenders[s]
	if !ok {
		return InternalSenderIdentity{}, fmt.Errorf("unknown internal sender: %s", s)
	}
	return identity, nil
}

// InternalEmailParams is the request for a fixed internal operational
// notification.
type InternalEmailParams struct {
	From        InternalSender `json:"from"`
	To          string         `json:"to"`
	Subject     string         `json:"subject"`
	Content     string         `json:"content"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
}

func (p *InternalEmailParams) Validate() error {
	if _, err := p.From.Identity(); err != nil {
		return NewValidationError(err.Error())
	}
	if p.To == "" {
		return NewValidationError("to is required")
	}
	if !govalidator.IsEmail(p.To) {
		return NewValidationError("to is not a valid email")
	}
	if p.Subject == "" {
		return NewValidationError("subject is required")
	}
	return nil
}

// EmailSendStatus classifies how an email attempt ended.
type EmailSendStatus string

const (
	// EmailSendStatusSent means the transport accepted the message.
	EmailSendStatusSent EmailSendStatus = "sent"
	// EmailSendStatusScheduled means the transport accepted a deferred send.
	EmailSendStatusScheduled EmailSendStatus = "scheduled"
	// EmailSendStatusSkipped means no enabled template existed; nothing was
	// rendered or dispatched.
	EmailSendStatusSkipped EmailSendStatus = "skipped"
	// EmailSendStatusRenderFailed means template evaluation failed.
	EmailSendStatusRenderFailed EmailSendStatus = "render_failed"
	// EmailSendStatusDispatchFailed means the transport rejected the message.
	EmailSendStatusDispatchFailed EmailSendStatus = "dispatch_failed"
)

// EmailSendOutcome is the typed result of one email attempt. Email is a
// best-effort side channel: the public send entry points log the outcome and
// discard it, never surfacing a failure to the triggering flow. Keeping the
// outcome as an explicit value (instead of suppressing errors ad hoc) is what
// lets tests assert on the discarded result.
type EmailSendOutcome struct {
	Status EmailSendStatus
	Err    error
}

// Failed reports whether the attempt ended in any failure state.
func (o EmailSendOutcome) Failed() bool {
	return o.Status == EmailSendStatusRenderFailed || o.Status == EmailSendStatusDispatchFailed
}

// EmailServiceInterface is the email surface exposed to callers outside the
// core. Both methods are best-effort: they never return an error caused by
// rendering or dispatch.
type EmailServiceInterface interface {
	Send(ctx context.Context, params SendEmailParams)
	SendInternal(ctx context.Context, params InternalEmailParams)
}
