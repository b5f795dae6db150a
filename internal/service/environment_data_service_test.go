package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/logger"
)

// MockEnvironmentDataRepository is an in-memory domain.EnvironmentDataRepository
type MockEnvironmentDataRepository struct {
	rows     map[string]map[string]*domain.EnvironmentData
	getError error
}

func NewMockEnvironmentDataRepository() *MockEnvironmentDataRepository {
	return &MockEnvironmentDataRepository{
		rows: make(map[string]map[string]*domain.EnvironmentData),
	}
}

func (m *MockEnvironmentDataRepository) Get(ctx context.Context, environmentID, id string) (*domain.EnvironmentData, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	data, exists := m.rows[environmentID][id]
	if !exists {
		return nil, &domain.ErrEnvironmentDataNotFound{Key: id}
	}
	return data, nil
}

func (m *MockEnvironmentDataRepository) GetMany(ctx context.Context, environmentID string, ids []string) ([]*domain.EnvironmentData, error) {
	var result []*domain.EnvironmentData
	for _, id := range ids {
		if data, exists := m.rows[environmentID][id]; exists {
			result = append(result, data)
		}
	}
	return result, nil
}

func (m *MockEnvironmentDataRepository) List(ctx context.Context, environmentID string) ([]*domain.EnvironmentData, error) {
	var result []*domain.EnvironmentData
	for _, data := range m.rows[environmentID] {
		result = append(result, data)
	}
	return result, nil
}

func (m *MockEnvironmentDataRepository) Upsert(ctx context.Context, environmentID string, data *domain.EnvironmentData) error {
	if m.rows[environmentID] == nil {
		m.rows[environmentID] = make(map[string]*domain.EnvironmentData)
	}
	data.EnvironmentID = environmentID
	now := time.Now().UTC()
	if existing, ok := m.rows[environmentID][data.ID]; ok {
		// The store keeps the original created_at on replace.
		data.CreatedAt = existing.CreatedAt
	} else {
		data.CreatedAt = now
	}
	data.UpdatedAt = now
	m.rows[environmentID][data.ID] = data
	return nil
}

func (m *MockEnvironmentDataRepository) Update(ctx context.Context, environmentID string, data *domain.EnvironmentData) error {
	if _, exists := m.rows[environmentID][data.ID]; !exists {
		return &domain.ErrEnvironmentDataNotFound{Key: data.ID}
	}
	m.rows[environmentID][data.ID] = data
	return nil
}

func (m *MockEnvironmentDataRepository) Delete(ctx context.Context, environmentID, id string) error {
	if _, exists := m.rows[environmentID][id]; !exists {
		return &domain.ErrEnvironmentDataNotFound{Key: id}
	}
	delete(m.rows[environmentID], id)
	return nil
}

// MockEnvironmentRepository covers the subset of domain.EnvironmentRepository
// these tests exercise.
type MockEnvironmentRepository struct {
	environments map[string]*domain.Environment
	summaries    map[string]*domain.EnvironmentSummary
	updateCalls  int
}

func NewMockEnvironmentRepository() *MockEnvironmentRepository {
	return &MockEnvironmentRepository{
		environments: make(map[string]*domain.Environment),
		summaries:    make(map[string]*domain.EnvironmentSummary),
	}
}

func (m *MockEnvironmentRepository) Create(ctx context.Context, environment *domain.Environment) error {
	m.environments[environment.ID] = environment
	return nil
}

func (m *MockEnvironmentRepository) GetByID(ctx context.Context, id string) (*domain.Environment, error) {
	environment, exists := m.environments[id]
	if !exists {
		return nil, &domain.ErrEnvironmentNotFound{ID: id}
	}
	return environment, nil
}

func (m *MockEnvironmentRepository) GetSummary(ctx context.Context, id string) (*domain.EnvironmentSummary, error) {
	summary, exists := m.summaries[id]
	if !exists {
		return nil, &domain.ErrEnvironmentNotFound{ID: id}
	}
	return summary, nil
}

func (m *MockEnvironmentRepository) List(ctx context.Context, projectID string) ([]*domain.Environment, error) {
	var result []*domain.Environment
	for _, environment := range m.environments {
		if environment.ProjectID == projectID {
			result = append(result, environment)
		}
	}
	return result, nil
}

func (m *MockEnvironmentRepository) Update(ctx context.Context, environment *domain.Environment) error {
	if _, exists := m.environments[environment.ID]; !exists {
		return &domain.ErrEnvironmentNotFound{ID: environment.ID}
	}
	m.environments[environment.ID] = environment
	m.updateCalls++
	return nil
}

func (m *MockEnvironmentRepository) Delete(ctx context.Context, id string) error {
	if _, exists := m.environments[id]; !exists {
		return &domain.ErrEnvironmentNotFound{ID: id}
	}
	delete(m.environments, id)
	return nil
}

func testSummary() *domain.EnvironmentSummary {
	return &domain.EnvironmentSummary{
		ID:     "env-1",
		Name:   "production",
		AppURL: "https://app.example.com",
		Project: domain.ProjectSummary{
			ID:      "proj-1",
			AppName: "Acme",
		},
	}
}

func setupDataService(t *testing.T) (*EnvironmentDataService, *MockEnvironmentDataRepository, *MockEnvironmentRepository) {
	dataRepo := NewMockEnvironmentDataRepository()
	envRepo := NewMockEnvironmentRepository()
	envRepo.summaries["env-1"] = testSummary()
	return NewEnvironmentDataService(dataRepo, envRepo, logger.NewTestLogger(t)), dataRepo, envRepo
}

func TestEnvironmentDataService_FetchAll(t *testing.T) {
	ctx := context.Background()
	service, dataRepo, _ := setupDataService(t)

	_, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "Enable SignUp", Value: domain.JSONValue{Data: true}})
	require.NoError(t, err)
	_, err = service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "smtp host", Value: domain.JSONValue{Data: "smtp.example.com"}})
	require.NoError(t, err)

	merged, err := service.FetchAll(ctx, "env-1")
	require.NoError(t, err)

	// Summary fields plus both data rows under normalized keys.
	assert.Equal(t, "env-1", merged["id"])
	assert.Equal(t, "production", merged["name"])
	assert.Equal(t, "https://app.example.com", merged["app_url"])
	assert.Equal(t, map[string]interface{}{"id": "proj-1", "app_name": "Acme"}, merged["project"])
	assert.Equal(t, true, merged["enable_signup"])
	assert.Equal(t, "smtp.example.com", merged["smtp_host"])

	// The caller-supplied labels never appear as keys.
	_, hasRawKey := merged["Enable SignUp"]
	assert.False(t, hasRawKey)
	assert.Len(t, dataRepo.rows["env-1"], 2)
}

func TestEnvironmentDataService_FetchAll_UnknownEnvironment(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupDataService(t)

	_, err := service.FetchAll(ctx, "env-missing")
	require.Error(t, err)
	var notFound *domain.ErrEnvironmentNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestEnvironmentDataService_FetchSubset(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupDataService(t)

	_, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "enable_signup", Value: domain.JSONValue{Data: true}})
	require.NoError(t, err)
	_, err = service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "smtp_host", Value: domain.JSONValue{Data: "smtp.example.com"}})
	require.NoError(t, err)

	// Keys arrive as cosmetic variants; one of them was never stored.
	merged, err := service.FetchSubset(ctx, "env-1", []string{"Enable SignUp", "missing-key"})
	require.NoError(t, err)

	assert.Equal(t, true, merged["enable_signup"])
	assert.Equal(t, "production", merged["name"])

	// Requested-but-absent keys are silently omitted, not errors.
	_, present := merged["missing_key"]
	assert.False(t, present)

	// Stored keys outside the subset stay out.
	_, present = merged["smtp_host"]
	assert.False(t, present)
}

func TestEnvironmentDataService_GetOne(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupDataService(t)

	_, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "Enable SignUp", Value: domain.JSONValue{Data: true}})
	require.NoError(t, err)

	t.Run("variant_key_hits_same_slot", func(t *testing.T) {
		data, err := service.GetOne(ctx, "env-1", " enable-signup ")
		require.NoError(t, err)
		assert.Equal(t, "enable_signup", data.ID)
		assert.Equal(t, true, data.Value.Data)
	})

	t.Run("absent_key", func(t *testing.T) {
		_, err := service.GetOne(ctx, "env-1", "never_set")
		var notFound *domain.ErrEnvironmentDataNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "never_set", notFound.Key)
	})
}

func TestEnvironmentDataService_GetOnePath(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupDataService(t)

	_, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{
		ID: "smtp",
		Value: domain.JSONValue{Data: map[string]interface{}{
			"host": "smtp.example.com",
			"port": float64(587),
		}},
	})
	require.NoError(t, err)

	t.Run("nested_value", func(t *testing.T) {
		value, err := service.GetOnePath(ctx, "env-1", "smtp", "host")
		require.NoError(t, err)
		assert.Equal(t, "smtp.example.com", value)
	})

	t.Run("numeric_value", func(t *testing.T) {
		value, err := service.GetOnePath(ctx, "env-1", "smtp", "port")
		require.NoError(t, err)
		assert.Equal(t, float64(587), value)
	})

	t.Run("unresolved_path", func(t *testing.T) {
		_, err := service.GetOnePath(ctx, "env-1", "smtp", "password")
		var notFound *domain.ErrEnvironmentDataNotFound
		require.ErrorAs(t, err, &notFound)
	})
}

func TestEnvironmentDataService_Upsert(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupDataService(t)

	t.Run("normalizes_and_returns_stored_row", func(t *testing.T) {
		stored, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "Enable SignUp", Value: domain.JSONValue{Data: true}})
		require.NoError(t, err)
		assert.Equal(t, "enable_signup", stored.ID)
		assert.Equal(t, "env-1", stored.EnvironmentID)
		assert.False(t, stored.CreatedAt.IsZero())
		assert.False(t, stored.UpdatedAt.IsZero())
	})

	t.Run("replaces_whole_value", func(t *testing.T) {
		first, err := service.GetOne(ctx, "env-1", "enable_signup")
		require.NoError(t, err)

		stored, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "enable_signup", Value: domain.JSONValue{Data: false}})
		require.NoError(t, err)
		assert.Equal(t, first.CreatedAt, stored.CreatedAt, "replace keeps the original created_at")

		data, err := service.GetOne(ctx, "env-1", "enable_signup")
		require.NoError(t, err)
		assert.Equal(t, false, data.Value.Data)
	})

	t.Run("normalizes_to_empty", func(t *testing.T) {
		_, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "  --  ", Value: domain.JSONValue{Data: 1}})
		require.Error(t, err)
		assert.IsType(t, domain.ValidationError{}, err)
	})
}

func TestEnvironmentDataService_Update(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupDataService(t)

	t.Run("absent_key", func(t *testing.T) {
		_, err := service.Update(ctx, "env-1", &domain.EnvironmentData{ID: "never_set", Value: domain.JSONValue{Data: 1}})
		var notFound *domain.ErrEnvironmentDataNotFound
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("existing_key", func(t *testing.T) {
		_, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "retries", Value: domain.JSONValue{Data: 3}})
		require.NoError(t, err)

		updated, err := service.Update(ctx, "env-1", &domain.EnvironmentData{ID: "Retries", Value: domain.JSONValue{Data: 5}})
		require.NoError(t, err)
		assert.Equal(t, "retries", updated.ID)
		assert.Equal(t, 5, updated.Value.Data)
	})
}

func TestEnvironmentDataService_Delete(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupDataService(t)

	_, err := service.Upsert(ctx, "env-1", &domain.EnvironmentData{ID: "enable_signup", Value: domain.JSONValue{Data: true}})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, "env-1", "Enable SignUp"))

	// Double delete is an error, not a silent no-op.
	err = service.Delete(ctx, "env-1", "enable_signup")
	var notFound *domain.ErrEnvironmentDataNotFound
	require.ErrorAs(t, err, &notFound)
}
