package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_token_repository.go -package mocks github.com/authcove/authcove/internal/domain TokenRepository

// TokenType drives the interpretation of a token's RelationID. The storage
// layer never validates what the relation points to.
type TokenType string

const (
	TokenTypeMagicLogin    TokenType = "MagicLogin"
	TokenTypeRefresh       TokenType = "Refresh"
	TokenTypeConfirmEmail  TokenType = "ConfirmEmail"
	TokenTypeResetPassword TokenType = "ResetPassword"
	TokenTypeInviteUser    TokenType = "InviteUser"
)

func (t TokenType) Validate() error {
	switch t {
	case TokenTypeMagicLogin, TokenTypeRefresh, TokenTypeConfirmEmail, TokenTypeResetPassword, TokenTypeInviteUser:
		return nil
	}
	return fmt.Errorf("invalid token type: %s", t)
}

// Token is a short-lived, logically single-use credential. The token string
// is the primary key and must be cryptographically unguessable; generation
// happens in the issuing flow, not here. EnvironmentID is nil for
// platform-level tokens.
type Token struct {
	Token         string    `json:"token"`
	Type          TokenType `json:"type"`
	RelationID    string    `json:"relation_id"`
	EnvironmentID *string   `json:"environment_id,omitempty"`
	Expires       time.Time `json:"expires"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t *Token) Validate() error {
	if t.Token == "" {
		return NewValidationError("token is required")
	}
	if err := t.Type.Validate(); err != nil {
		return NewValidationError(err.Error())
	}
	if t.RelationID == "" {
		return NewValidationError("relation_id is required")
	}
	if t.Expires.IsZero() {
		return NewValidationError("expires is required")
	}
	return nil
}

// Valid reports whether the token is still usable at the given instant. An
// expired row is invalid even if it has not been swept yet. Callers must
// evaluate this at the moment of use and never cache the result.
func (t *Token) Valid(now time.Time) bool {
	return now.Before(t.Expires)
}

// TokenRepository defines the interface for token database operations.
// Consumption (lookup, validity check, delete) is a consumer-side
// transaction; expiry sweeps are a collaborator responsibility exposed here
// as DeleteExpired.
type TokenRepository interface {
	Create(ctx context.Context, token *Token) error

	// GetByToken looks a token up by its opaque string (primary key)
	GetByToken(ctx context.Context, token string) (*Token, error)

	// Delete removes a token after single use
	Delete(ctx context.Context, token string) error

	// DeleteExpired garbage-collects rows whose expiry is before the cutoff
	// and returns how many were removed
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// ErrTokenNotFound is returned when a token is not found
type ErrTokenNotFound struct{}

func (e *ErrTokenNotFound) Error() string {
	return "token not found"
}
