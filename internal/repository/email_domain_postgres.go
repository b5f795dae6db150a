package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/authcove/authcove/internal/domain"
)

type emailDomainRepository struct {
	db *sql.DB
}

// NewEmailDomainRepository creates a new PostgreSQL email domain repository
func NewEmailDomainRepository(db *sql.DB) domain.EmailDomainRepository {
	return &emailDomainRepository{db: db}
}

func (r *emailDomainRepository) Create(ctx context.Context, emailDomain *domain.EmailDomain) error {
	if emailDomain.ID == "" {
		emailDomain.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	emailDomain.CreatedAt = now
	emailDomain.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_domains (id, environment_id, external_id, domain, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		emailDomain.ID,
		emailDomain.EnvironmentID,
		emailDomain.ExternalID,
		emailDomain.Domain,
		emailDomain.Status,
		emailDomain.CreatedAt,
		emailDomain.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email domain: %w", err)
	}
	return nil
}

func (r *emailDomainRepository) GetByDomain(ctx context.Context, name string) (*domain.EmailDomain, error) {
	var emailDomain domain.EmailDomain
	err := r.db.QueryRowContext(ctx, `
		SELECT id, environment_id, external_id, domain, status, created_at, updated_at
		FROM email_domains WHERE domain = $1
	`, name).Scan(
		&emailDomain.ID,
		&emailDomain.EnvironmentID,
		&emailDomain.ExternalID,
		&emailDomain.Domain,
		&emailDomain.Status,
		&emailDomain.CreatedAt,
		&emailDomain.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrEmailDomainNotFound{Domain: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email domain: %w", err)
	}
	return &emailDomain, nil
}

func (r *emailDomainRepository) List(ctx context.Context, environmentID string) ([]*domain.EmailDomain, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, environment_id, external_id, domain, status, created_at, updated_at
		FROM email_domains WHERE environment_id = $1 ORDER BY domain
	`, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list email domains: %w", err)
	}
	defer rows.Close()

	var domains []*domain.EmailDomain
	for rows.Next() {
		var emailDomain domain.EmailDomain
		err := rows.Scan(
			&emailDomain.ID,
			&emailDomain.EnvironmentID,
			&emailDomain.ExternalID,
			&emailDomain.Domain,
			&emailDomain.Status,
			&emailDomain.CreatedAt,
			&emailDomain.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email domain: %w", err)
		}
		domains = append(domains, &emailDomain)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate email domains: %w", err)
	}

	return domains, nil
}

func (r *emailDomainRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE email_domains SET status = $1, updated_at = $2 WHERE id = $3
	`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update email domain status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEmailDomainNotFound{Domain: id}
	}

	return nil
}

func (r *emailDomainRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM email_domains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email domain: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEmailDomainNotFound{Domain: id}
	}

	return nil
}
