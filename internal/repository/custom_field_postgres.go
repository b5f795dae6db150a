package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/authcove/authcove/internal/domain"
)

type customFieldRepository struct {
	db *sql.DB
}

// NewCustomFieldRepository creates a new PostgreSQL custom field repository
func NewCustomFieldRepository(db *sql.DB) domain.CustomFieldRepository {
	return &customFieldRepository{db: db}
}

func (r *customFieldRepository) Create(ctx context.Context, field *domain.CustomField) error {
	if field.ID == "" {
		field.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	field.CreatedAt = now
	field.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_fields (id, name, type, relation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, field.ID, field.Name, field.Type, field.Relation, field.CreatedAt, field.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create custom field: %w", err)
	}
	return nil
}

func (r *customFieldRepository) GetByID(ctx context.Context, id string) (*domain.CustomField, error) {
	var field domain.CustomField
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, relation, created_at, updated_at FROM custom_fields WHERE id = $1
	`, id).Scan(&field.ID, &field.Name, &field.Type, &field.Relation, &field.CreatedAt, &field.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "custom field", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom field: %w", err)
	}
	return &field, nil
}

func (r *customFieldRepository) List(ctx context.Context) ([]*domain.CustomField, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, relation, created_at, updated_at FROM custom_fields ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	defer rows.Close()

	var fields []*domain.CustomField
	for rows.Next() {
		var field domain.CustomField
		if err := rows.Scan(&field.ID, &field.Name, &field.Type, &field.Relation, &field.CreatedAt, &field.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan custom field: %w", err)
		}
		fields = append(fields, &field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate custom fields: %w", err)
	}

	return fields, nil
}

func (r *customFieldRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM custom_fields WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom field: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "custom field", ID: id}
	}

	return nil
}
