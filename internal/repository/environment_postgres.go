package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/authcove/authcove/internal/domain"
)

const environmentColumns = `id, project_id, name, active, public_key, secret_key,
	token_expiration, refresh_token_expiration, app_url, auth_provider,
	custom_domain, custom_domain_txt, custom_domain_status, custom_domain_txt_status,
	custom_domain_last_checked, custom_domain_verified_at, created_at, updated_at`

type environmentRepository struct {
	db *sql.DB
}

// NewEnvironmentRepository creates a new PostgreSQL environment repository
func NewEnvironmentRepository(db *sql.DB) domain.EnvironmentRepository {
	return &environmentRepository{db: db}
}

func (r *environmentRepository) Create(ctx context.Context, environment *domain.Environment) error {
	if environment.ID == "" {
		environment.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	environment.CreatedAt = now
	environment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO environments (`+environmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		environment.ID,
		environment.ProjectID,
		environment.Name,
		environment.Active,
		environment.PublicKey,
		environment.SecretKey,
		environment.TokenExpiration,
		environment.RefreshTokenExpiration,
		environment.AppURL,
		environment.AuthProvider,
		environment.CustomDomain,
		environment.CustomDomainTXT,
		environment.CustomDomainStatus,
		environment.CustomDomainTXTStatus,
		environment.CustomDomainLastChecked,
		environment.CustomDomainVerifiedAt,
		environment.CreatedAt,
		environment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create environment: %w", err)
	}
	return nil
}

func (r *environmentRepository) GetByID(ctx context.Context, id string) (*domain.Environment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+environmentColumns+` FROM environments WHERE id = $1`,
		id,
	)

	environment, err := scanEnvironment(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrEnvironmentNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get environment: %w", err)
	}

	return environment, nil
}

// GetSummary fetches the environment and its owning project's summary fields
// in one round trip.
func (r *environmentRepository) GetSummary(ctx context.Context, id string) (*domain.EnvironmentSummary, error) {
	var (
		summary domain.EnvironmentSummary
		appURL  sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.name, e.app_url, p.id, p.app_name
		FROM environments e
		JOIN projects p ON p.id = e.project_id
		WHERE e.id = $1
	`, id).Scan(
		&summary.ID,
		&summary.Name,
		&appURL,
		&summary.Project.ID,
		&summary.Project.AppName,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrEnvironmentNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get environment summary: %w", err)
	}

	summary.AppURL = appURL.String
	return &summary, nil
}

func (r *environmentRepository) List(ctx context.Context, projectID string) ([]*domain.Environment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+environmentColumns+` FROM environments WHERE project_id = $1 ORDER BY created_at`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	defer rows.Close()

	var environments []*domain.Environment
	for rows.Next() {
		environment, err := scanEnvironment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan environment: %w", err)
		}
		environments = append(environments, environment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating environment rows: %w", err)
	}

	return environments, nil
}

// Update persists mutable fields. The key pair is deliberately absent from
// the statement: credentials are immutable once issued.
func (r *environmentRepository) Update(ctx context.Context, environment *domain.Environment) error {
	environment.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE environments SET
			name = $1,
			active = $2,
			token_expiration = $3,
			refresh_token_expiration = $4,
			app_url = $5,
			auth_provider = $6,
			custom_domain = $7,
			custom_domain_txt = $8,
			custom_domain_status = $9,
			custom_domain_txt_status = $10,
			custom_domain_last_checked = $11,
			custom_domain_verified_at = $12,
			updated_at = $13
		WHERE id = $14
	`,
		environment.Name,
		environment.Active,
		environment.TokenExpiration,
		environment.RefreshTokenExpiration,
		environment.AppURL,
		environment.AuthProvider,
		environment.CustomDomain,
		environment.CustomDomainTXT,
		environment.CustomDomainStatus,
		environment.CustomDomainTXTStatus,
		environment.CustomDomainLastChecked,
		environment.CustomDomainVerifiedAt,
		environment.UpdatedAt,
		environment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update environment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEnvironmentNotFound{ID: environment.ID}
	}

	return nil
}

func (r *environmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM environments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete environment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEnvironmentNotFound{ID: id}
	}

	return nil
}

func scanEnvironment(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Environment, error) {
	var (
		environment                           domain.Environment
		appURL, customDomain, customDomainTXT sql.NullString
		domainStatus, txtStatus               sql.NullString
		lastChecked, verifiedAt               sql.NullTime
	)

	err := scanner.Scan(
		&environment.ID,
		&environment.ProjectID,
		&environment.Name,
		&environment.Active,
		&environment.PublicKey,
		&environment.SecretKey,
		&environment.TokenExpiration,
		&environment.RefreshTokenExpiration,
		&appURL,
		&environment.AuthProvider,
		&customDomain,
		&customDomainTXT,
		&domainStatus,
		&txtStatus,
		&lastChecked,
		&verifiedAt,
		&environment.CreatedAt,
		&environment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	environment.AppURL = appURL.String
	if customDomain.Valid {
		environment.CustomDomain = &customDomain.String
	}
	if customDomainTXT.Valid {
		environment.CustomDomainTXT = &customDomainTXT.String
	}
	if domainStatus.Valid {
		status := domain.DomainVerificationStatus(domainStatus.String)
		environment.CustomDomainStatus = &status
	}
	if txtStatus.Valid {
		status := domain.DomainVerificationStatus(txtStatus.String)
		environment.CustomDomainTXTStatus = &status
	}
	if lastChecked.Valid {
		environment.CustomDomainLastChecked = &lastChecked.Time
	}
	if verifiedAt.Valid {
		environment.CustomDomainVerifiedAt = &verifiedAt.Time
	}

	return &environment, nil
}
