package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/authcove/authcove/internal/domain"
)

const emailTemplateColumns = `id, environment_id, kind, name, subject, from_name, from_email, reply_to, content, preview, enabled, created_at, updated_at`

type emailTemplateRepository struct {
	db *sql.DB
}

// NewEmailTemplateRepository creates a new PostgreSQL email template repository
func NewEmailTemplateRepository(db *sql.DB) domain.EmailTemplateRepository {
	return &emailTemplateRepository{db: db}
}

func (r *emailTemplateRepository) Create(ctx context.Context, template *domain.EmailTemplate) error {
	if template.ID == "" {
		template.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_templates (`+emailTemplateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		template.ID,
		template.EnvironmentID,
		template.Kind,
		template.Name,
		template.Subject,
		template.FromName,
		template.FromEmail,
		template.ReplyTo,
		template.Content,
		template.Preview,
		template.Enabled,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email template: %w", err)
	}
	return nil
}

// GetByKind resolves the template of a kind for an environment. At most one
// exists per (environment, kind).
func (r *emailTemplateRepository) GetByKind(ctx context.Context, environmentID string, kind domain.EmailTemplateKind) (*domain.EmailTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+emailTemplateColumns+` FROM email_templates WHERE environment_id = $1 AND kind = $2`,
		environmentID, kind,
	)

	template, err := scanEmailTemplate(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrEmailTemplateNotFound{Kind: kind, EnvironmentID: environmentID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email template: %w", err)
	}

	return template, nil
}

func (r *emailTemplateRepository) GetByID(ctx context.Context, environmentID, id string) (*domain.EmailTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+emailTemplateColumns+` FROM email_templates WHERE environment_id = $1 AND id = $2`,
		environmentID, id,
	)

	template, err := scanEmailTemplate(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrEmailTemplateNotFound{EnvironmentID: environmentID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email template: %w", err)
	}

	return template, nil
}

func (r *emailTemplateRepository) List(ctx context.Context, environmentID string) ([]*domain.EmailTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+emailTemplateColumns+` FROM email_templates WHERE environment_id = $1 ORDER BY kind`,
		environmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list email templates: %w", err)
	}
	defer rows.Close()

	var templates []*domain.EmailTemplate
	for rows.Next() {
		template, err := scanEmailTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email template: %w", err)
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email template rows: %w", err)
	}

	return templates, nil
}

func (r *emailTemplateRepository) Update(ctx context.Context, template *domain.EmailTemplate) error {
	template.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE email_templates SET
			name = $1,
			subject = $2,
			from_name = $3,
			from_email = $4,
			reply_to = $5,
			content = $6,
			preview = $7,
			enabled = $8,
			updated_at = $9
		WHERE environment_id = $10 AND id = $11
	`,
		template.Name,
		template.Subject,
		template.FromName,
		template.FromEmail,
		template.ReplyTo,
		template.Content,
		template.Preview,
		template.Enabled,
		template.UpdatedAt,
		template.EnvironmentID,
		template.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update email template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEmailTemplateNotFound{Kind: template.Kind, EnvironmentID: template.EnvironmentID}
	}

	return nil
}

func (r *emailTemplateRepository) Delete(ctx context.Context, environmentID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM email_templates WHERE environment_id = $1 AND id = $2`,
		environmentID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete email template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEmailTemplateNotFound{EnvironmentID: environmentID}
	}

	return nil
}

func scanEmailTemplate(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.EmailTemplate, error) {
	var (
		template                   domain.EmailTemplate
		fromName, replyTo, preview sql.NullString
	)

	err := scanner.Scan(
		&template.ID,
		&template.EnvironmentID,
		&template.Kind,
		&template.Name,
		&template.Subject,
		&fromName,
		&template.FromEmail,
		&replyTo,
		&template.Content,
		&preview,
		&template.Enabled,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	template.FromName = fromName.String
	template.ReplyTo = replyTo.String
	template.Preview = preview.String

	return &template, nil
}
