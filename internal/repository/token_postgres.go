package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/authcove/authcove/internal/domain"
)

type tokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new PostgreSQL token repository
func NewTokenRepository(db *sql.DB) domain.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (token, type, relation_id, environment_id, expires, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		token.Token,
		token.Type,
		token.RelationID,
		token.EnvironmentID,
		token.Expires,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByToken looks a token up by its opaque string. The token column is the
// primary key, so this is a single index lookup.
func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*domain.Token, error) {
	var (
		result        domain.Token
		environmentID sql.NullString
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT token, type, relation_id, environment_id, expires, created_at FROM tokens WHERE token = $1`,
		token,
	).Scan(
		&result.Token,
		&result.Type,
		&result.RelationID,
		&environmentID,
		&result.Expires,
		&result.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrTokenNotFound{}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if environmentID.Valid {
		result.EnvironmentID = &environmentID.String
	}

	return &result, nil
}

func (r *tokenRepository) Delete(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrTokenNotFound{}
	}

	return nil
}

// DeleteExpired garbage-collects rows whose expiry is before the cutoff.
func (r *tokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE expires < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rowsAffected, nil
}
