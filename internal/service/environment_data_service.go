package service

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/logger"
)

// EnvironmentDataService resolves merged environment configuration: the
// environment's own summary fields plus its key-value data rows. All keys
// crossing this boundary are normalized before touching the store, so callers
// can pass UI labels and still hit the canonical slot.
type EnvironmentDataService struct {
	repo    domain.EnvironmentDataRepository
	envRepo domain.EnvironmentRepository
	logger  logger.Logger
}

func NewEnvironmentDataService(
	repo domain.EnvironmentDataRepository,
	envRepo domain.EnvironmentRepository,
	logger logger.Logger,
) *EnvironmentDataService {
	return &EnvironmentDataService{
		repo:    repo,
		envRepo: envRepo,
		logger:  logger,
	}
}

// FetchAll returns the environment summary fields merged with every data row.
// Data rows never shadow the summary fields.
func (s *EnvironmentDataService) FetchAll(ctx context.Context, environmentID string) (map[string]interface{}, error) {
	summary, err := s.envRepo.GetSummary(ctx, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment summary: %w", err)
	}

	rows, err := s.repo.List(ctx, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list environment data: %w", err)
	}

	return mergeConfig(summary, rows), nil
}

// FetchSubset returns the environment summary fields merged with the data rows
// whose normalized keys are in the given set. Unknown keys are silently absent
// from the result.
func (s *EnvironmentDataService) FetchSubset(ctx context.Context, environmentID string, keys []string) (map[string]interface{}, error) {
	summary, err := s.envRepo.GetSummary(ctx, environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment summary: %w", err)
	}

	normalized := make([]string, 0, len(keys))
	for _, key := range keys {
		if id := domain.NormalizeKey(key); id != "" {
			normalized = append(normalized, id)
		}
	}

	rows, err := s.repo.GetMany(ctx, environmentID, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment data subset: %w", err)
	}

	return mergeConfig(summary, rows), nil
}

// GetOne retrieves a single data row by key.
func (s *EnvironmentDataService) GetOne(ctx context.Context, environmentID, key string) (*domain.EnvironmentData, error) {
	return s.repo.Get(ctx, environmentID, domain.NormalizeKey(key))
}

// GetOnePath retrieves a nested value inside a stored JSON document, addressed
// by a gjson path ("smtp.host", "providers.0.name"). Returns NotFound when the
// row exists but the path does not resolve.
func (s *EnvironmentDataService) GetOnePath(ctx context.Context, environmentID, key, path string) (interface{}, error) {
	id := domain.NormalizeKey(key)
	data, err := s.repo.Get(ctx, environmentID, id)
	if err != nil {
		return nil, err
	}

	raw, err := data.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal environment data value: %w", err)
	}

	result := gjson.GetBytes(raw, path)
	if !result.Exists() {
		return nil, &domain.ErrEnvironmentDataNotFound{Key: id + "." + path}
	}

	return result.Value(), nil
}

// Upsert creates the row for the key or wholly replaces its value, then
// returns the stored row. The audit line carries the caller-supplied key so
// operators can trace which surface wrote the slot.
func (s *EnvironmentDataService) Upsert(ctx context.Context, environmentID string, data *domain.EnvironmentData) (*domain.EnvironmentData, error) {
	callerKey := data.ID
	data.ID = domain.NormalizeKey(callerKey)
	if data.ID == "" {
		return nil, domain.NewValidationError("key is required")
	}

	if err := s.repo.Upsert(ctx, environmentID, data); err != nil {
		return nil, fmt.Errorf("failed to upsert environment data: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"environment_id": environmentID,
		"key":            callerKey,
		"id":             data.ID,
	}).Info("Environment data upserted")

	return data, nil
}

// Update replaces the value of an existing row. Unlike Upsert it fails with
// NotFound when the key has never been set.
func (s *EnvironmentDataService) Update(ctx context.Context, environmentID string, data *domain.EnvironmentData) (*domain.EnvironmentData, error) {
	data.ID = domain.NormalizeKey(data.ID)
	if data.ID == "" {
		return nil, domain.NewValidationError("key is required")
	}

	if err := s.repo.Update(ctx, environmentID, data); err != nil {
		return nil, err
	}

	return data, nil
}

// Delete removes a row by key. Deleting an absent key is an error: the caller
// asked to remove something that was never there.
func (s *EnvironmentDataService) Delete(ctx context.Context, environmentID, key string) error {
	return s.repo.Delete(ctx, environmentID, domain.NormalizeKey(key))
}

// mergeConfig flattens the environment summary into the base map, then folds
// the data rows in. Summary fields win on key collision.
func mergeConfig(summary *domain.EnvironmentSummary, rows []*domain.EnvironmentData) map[string]interface{} {
	merged := make(map[string]interface{}, len(rows)+4)
	for _, row := range rows {
		merged[row.ID] = row.Value.Data
	}

	merged["id"] = summary.ID
	merged["name"] = summary.Name
	merged["app_url"] = summary.AppURL
	merged["project"] = map[string]interface{}{
		"id":       summary.Project.ID,
		"app_name": summary.Project.AppName,
	}

	return merged
}
