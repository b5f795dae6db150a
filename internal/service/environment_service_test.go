package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/logger"
)

// MockDNSResolver returns canned TXT records.
type MockDNSResolver struct {
	records map[string][]string
	err     error
}

func (m *MockDNSResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records[name], nil
}

func setupEnvironmentService(t *testing.T) (*EnvironmentService, *MockEnvironmentRepository, *MockDNSResolver) {
	repo := NewMockEnvironmentRepository()
	resolver := &MockDNSResolver{records: make(map[string][]string)}
	service := NewEnvironmentService(repo, logger.NewTestLogger(t))
	service.resolver = resolver
	return service, repo, resolver
}

func newTestEnvironment() *domain.Environment {
	return &domain.Environment{
		ID:                     "env-1",
		ProjectID:              "proj-1",
		Name:                   "production",
		Active:                 true,
		TokenExpiration:        900,
		RefreshTokenExpiration: 2592000,
		AuthProvider:           domain.AuthProviderMagicLogin,
	}
}

func TestEnvironmentService_Create(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := setupEnvironmentService(t)

	environment := newTestEnvironment()
	require.NoError(t, service.Create(ctx, environment))

	assert.True(t, strings.HasPrefix(environment.PublicKey, "pk_"))
	assert.True(t, strings.HasPrefix(environment.SecretKey, "sk_"))
	assert.Contains(t, repo.environments, "env-1")

	// A second environment gets its own credentials.
	other := newTestEnvironment()
	other.ID = "env-2"
	require.NoError(t, service.Create(ctx, other))
	assert.NotEqual(t, environment.SecretKey, other.SecretKey)
}

func TestEnvironmentService_Create_InvalidEnvironment(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := setupEnvironmentService(t)

	environment := newTestEnvironment()
	environment.Name = ""
	err := service.Create(ctx, environment)
	require.Error(t, err)
	assert.Empty(t, repo.environments)
}

func TestEnvironmentService_CustomDomainVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("begin_then_verify", func(t *testing.T) {
		service, repo, resolver := setupEnvironmentService(t)
		environment := newTestEnvironment()
		require.NoError(t, service.Create(ctx, environment))

		txtRecord, err := service.BeginCustomDomainVerification(ctx, "env-1", "auth.example.com")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(txtRecord, "authcove-verify="))

		staged := repo.environments["env-1"]
		assert.Equal(t, domain.DomainStatusVerifying, *staged.CustomDomainStatus)

		resolver.records["auth.example.com"] = []string{"v=spf1 -all", txtRecord}

		verified, err := service.CheckCustomDomain(ctx, "env-1")
		require.NoError(t, err)
		assert.True(t, verified)
		assert.Equal(t, domain.DomainStatusVerified, *repo.environments["env-1"].CustomDomainStatus)
		assert.NotNil(t, repo.environments["env-1"].CustomDomainVerifiedAt)
	})

	t.Run("missing_txt_record_fails", func(t *testing.T) {
		service, repo, resolver := setupEnvironmentService(t)
		environment := newTestEnvironment()
		require.NoError(t, service.Create(ctx, environment))

		_, err := service.BeginCustomDomainVerification(ctx, "env-1", "auth.example.com")
		require.NoError(t, err)
		resolver.records["auth.example.com"] = []string{"v=spf1 -all"}

		verified, err := service.CheckCustomDomain(ctx, "env-1")
		require.NoError(t, err)
		assert.False(t, verified)

		failed := repo.environments["env-1"]
		assert.Equal(t, domain.DomainStatusFailed, *failed.CustomDomainStatus)
		// Domain and TXT stay staged so the tenant can fix DNS and retry.
		assert.NotNil(t, failed.CustomDomain)
		assert.NotNil(t, failed.CustomDomainTXT)
	})

	t.Run("dns_error_counts_as_failed_check", func(t *testing.T) {
		service, repo, resolver := setupEnvironmentService(t)
		environment := newTestEnvironment()
		require.NoError(t, service.Create(ctx, environment))

		_, err := service.BeginCustomDomainVerification(ctx, "env-1", "auth.example.com")
		require.NoError(t, err)
		resolver.err = errors.New("dns timeout")

		verified, err := service.CheckCustomDomain(ctx, "env-1")
		require.NoError(t, err)
		assert.False(t, verified)
		assert.Equal(t, domain.DomainStatusFailed, *repo.environments["env-1"].CustomDomainStatus)
	})

	t.Run("no_domain_staged", func(t *testing.T) {
		service, _, _ := setupEnvironmentService(t)
		environment := newTestEnvironment()
		require.NoError(t, service.Create(ctx, environment))

		_, err := service.CheckCustomDomain(ctx, "env-1")
		require.Error(t, err)
		assert.IsType(t, domain.ValidationError{}, err)
	})

	t.Run("unknown_environment", func(t *testing.T) {
		service, _, _ := setupEnvironmentService(t)

		_, err := service.BeginCustomDomainVerification(ctx, "env-missing", "auth.example.com")
		var notFound *domain.ErrEnvironmentNotFound
		require.ErrorAs(t, err, &notFound)
	})
}
