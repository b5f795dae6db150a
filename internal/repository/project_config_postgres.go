package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/authcove/authcove/internal/domain"
)

type projectConfigRepository struct {
	db *sql.DB
}

// NewProjectConfigRepository creates a new PostgreSQL project config repository
func NewProjectConfigRepository(db *sql.DB) domain.ProjectConfigRepository {
	return &projectConfigRepository{db: db}
}

func (r *projectConfigRepository) Set(ctx context.Context, config *domain.ProjectConfig) error {
	now := time.Now().UTC()
	config.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_configs (environment_id, project_id, relation_kind, relation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (environment_id, project_id) DO UPDATE
		SET relation_kind = EXCLUDED.relation_kind,
			relation_id = EXCLUDED.relation_id,
			updated_at = EXCLUDED.updated_at
	`,
		config.EnvironmentID,
		config.ProjectID,
		config.Relation.Kind,
		config.Relation.ID,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to set project config: %w", err)
	}
	return nil
}

func (r *projectConfigRepository) Get(ctx context.Context, environmentID, projectID string) (*domain.ProjectConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT environment_id, project_id, relation_kind, relation_id, created_at, updated_at
		FROM project_configs
		WHERE environment_id = $1 AND project_id = $2
	`, environmentID, projectID)

	config, err := scanProjectConfig(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrProjectConfigNotFound{EnvironmentID: environmentID, ProjectID: projectID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project config: %w", err)
	}

	return config, nil
}

func (r *projectConfigRepository) ListByEnvironment(ctx context.Context, environmentID string) ([]*domain.ProjectConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT environment_id, project_id, relation_kind, relation_id, created_at, updated_at
		FROM project_configs
		WHERE environment_id = $1
		ORDER BY project_id
	`, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project configs: %w", err)
	}
	defer rows.Close()

	var configs []*domain.ProjectConfig
	for rows.Next() {
		config, err := scanProjectConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project config: %w", err)
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project configs: %w", err)
	}

	return configs, nil
}

func (r *projectConfigRepository) Delete(ctx context.Context, environmentID, projectID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM project_configs WHERE environment_id = $1 AND project_id = $2`,
		environmentID, projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete project config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrProjectConfigNotFound{EnvironmentID: environmentID, ProjectID: projectID}
	}

	return nil
}

func scanProjectConfig(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.ProjectConfig, error) {
	var config domain.ProjectConfig
	err := scanner.Scan(
		&config.EnvironmentID,
		&config.ProjectID,
		&config.Relation.Kind,
		&config.Relation.ID,
		&config.CreatedAt,
		&config.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &config, nil
}
