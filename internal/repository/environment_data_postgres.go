package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/authcove/authcove/internal/domain"
)

type environmentDataRepository struct {
	db *sql.DB
}

// NewEnvironmentDataRepository creates a new PostgreSQL environment data repository
func NewEnvironmentDataRepository(db *sql.DB) domain.EnvironmentDataRepository {
	return &environmentDataRepository{db: db}
}

// Get retrieves a row by normalized key
func (r *environmentDataRepository) Get(ctx context.Context, environmentID, id string) (*domain.EnvironmentData, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, environment_id, value, created_at, updated_at FROM environment_data WHERE environment_id = $1 AND id = $2`,
		environmentID, id,
	)

	data, err := scanEnvironmentData(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrEnvironmentDataNotFound{Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get environment data: %w", err)
	}

	return data, nil
}

// GetMany retrieves the rows whose ids are in the given set
func (r *environmentDataRepository) GetMany(ctx context.Context, environmentID string, ids []string) ([]*domain.EnvironmentData, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("id", "environment_id", "value", "created_at", "updated_at").
		From("environment_data").
		Where(sq.Eq{"environment_id": environmentID, "id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.queryRows(ctx, query, args...)
}

// List retrieves all rows of an environment
func (r *environmentDataRepository) List(ctx context.Context, environmentID string) ([]*domain.EnvironmentData, error) {
	return r.queryRows(ctx,
		`SELECT id, environment_id, value, created_at, updated_at FROM environment_data WHERE environment_id = $1 ORDER BY id`,
		environmentID,
	)
}

// Upsert creates the row or wholly replaces its value. Concurrent upserts to
// the same key race at row-level granularity; last writer wins. On conflict
// the original created_at survives, so the stored timestamps are read back.
func (r *environmentDataRepository) Upsert(ctx context.Context, environmentID string, data *domain.EnvironmentData) error {
	now := time.Now().UTC()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO environment_data (id, environment_id, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (environment_id, id)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, data.ID, environmentID, data.Value, now, now).Scan(&data.CreatedAt, &data.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert environment data: %w", err)
	}

	data.EnvironmentID = environmentID
	return nil
}

// Update replaces the value of an existing row
func (r *environmentDataRepository) Update(ctx context.Context, environmentID string, data *domain.EnvironmentData) error {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE environment_data SET value = $1, updated_at = $2 WHERE environment_id = $3 AND id = $4`,
		data.Value, now, environmentID, data.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update environment data: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEnvironmentDataNotFound{Key: data.ID}
	}

	data.EnvironmentID = environmentID
	data.UpdatedAt = now
	return nil
}

// Delete removes a row by normalized key. A second delete is an error, not a
// no-op.
func (r *environmentDataRepository) Delete(ctx context.Context, environmentID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM environment_data WHERE environment_id = $1 AND id = $2`,
		environmentID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete environment data: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrEnvironmentDataNotFound{Key: id}
	}

	return nil
}

func (r *environmentDataRepository) queryRows(ctx context.Context, query string, args ...interface{}) ([]*domain.EnvironmentData, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query environment data: %w", err)
	}
	defer rows.Close()

	var result []*domain.EnvironmentData
	for rows.Next() {
		data, err := scanEnvironmentData(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan environment data: %w", err)
		}
		result = append(result, data)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating environment data rows: %w", err)
	}

	return result, nil
}

func scanEnvironmentData(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.EnvironmentData, error) {
	var data domain.EnvironmentData
	err := scanner.Scan(
		&data.ID,
		&data.EnvironmentID,
		&data.Value,
		&data.CreatedAt,
		&data.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &data, nil
}
