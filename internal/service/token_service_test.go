package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/logger"
	"github.com/authcove/authcove/pkg/signer"
)

// MockTokenRepository is an in-memory domain.TokenRepository
type MockTokenRepository struct {
	tokens map[string]*domain.Token
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{tokens: make(map[string]*domain.Token)}
}

func (m *MockTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *MockTokenRepository) GetByToken(ctx context.Context, token string) (*domain.Token, error) {
	result, exists := m.tokens[token]
	if !exists {
		return nil, &domain.ErrTokenNotFound{}
	}
	return result, nil
}

func (m *MockTokenRepository) Delete(ctx context.Context, token string) error {
	if _, exists := m.tokens[token]; !exists {
		return &domain.ErrTokenNotFound{}
	}
	delete(m.tokens, token)
	return nil
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for key, token := range m.tokens {
		if token.Expires.Before(cutoff) {
			delete(m.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

func setupTokenService(t *testing.T) (*TokenService, *MockTokenRepository) {
	repo := NewMockTokenRepository()
	return NewTokenService(repo, logger.NewTestLogger(t)), repo
}

func TestTokenService_Issue(t *testing.T) {
	ctx := context.Background()
	service, repo := setupTokenService(t)

	err := service.Issue(ctx, &domain.Token{
		Token:      "tok_abc",
		Type:       domain.TokenTypeMagicLogin,
		RelationID: "user-1",
		Expires:    time.Now().Add(15 * time.Minute),
	})
	require.NoError(t, err)
	assert.Len(t, repo.tokens, 1)

	err = service.Issue(ctx, &domain.Token{
		Token: "tok_bad",
		Type:  "Unknown",
	})
	require.Error(t, err)
	assert.Len(t, repo.tokens, 1)
}

func TestTokenService_Consume(t *testing.T) {
	ctx := context.Background()

	t.Run("valid_token_single_use", func(t *testing.T) {
		service, repo := setupTokenService(t)
		repo.tokens["tok_abc"] = &domain.Token{
			Token:      "tok_abc",
			Type:       domain.TokenTypeMagicLogin,
			RelationID: "user-1",
			Expires:    time.Now().Add(15 * time.Minute),
		}

		token, err := service.Consume(ctx, "tok_abc", domain.TokenTypeMagicLogin)
		require.NoError(t, err)
		assert.Equal(t, "user-1", token.RelationID)
		assert.Empty(t, repo.tokens, "consumed token is deleted")

		// Second use fails.
		_, err = service.Consume(ctx, "tok_abc", domain.TokenTypeMagicLogin)
		var notFound *domain.ErrTokenNotFound
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("expired_token_rejected_and_removed", func(t *testing.T) {
		service, repo := setupTokenService(t)
		repo.tokens["tok_old"] = &domain.Token{
			Token:      "tok_old",
			Type:       domain.TokenTypeResetPassword,
			RelationID: "user-1",
			Expires:    time.Now().Add(-time.Minute),
		}

		_, err := service.Consume(ctx, "tok_old", domain.TokenTypeResetPassword)
		var notFound *domain.ErrTokenNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Empty(t, repo.tokens, "expired row is swept on touch")
	})

	t.Run("type_mismatch_rejected", func(t *testing.T) {
		service, repo := setupTokenService(t)
		repo.tokens["tok_abc"] = &domain.Token{
			Token:      "tok_abc",
			Type:       domain.TokenTypeMagicLogin,
			RelationID: "user-1",
			Expires:    time.Now().Add(15 * time.Minute),
		}

		_, err := service.Consume(ctx, "tok_abc", domain.TokenTypeResetPassword)
		var notFound *domain.ErrTokenNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Len(t, repo.tokens, 1, "mismatched token is not consumed")
	})

	t.Run("unknown_token", func(t *testing.T) {
		service, _ := setupTokenService(t)

		_, err := service.Consume(ctx, "tok_missing", domain.TokenTypeMagicLogin)
		var notFound *domain.ErrTokenNotFound
		require.ErrorAs(t, err, &notFound)
	})
}

func TestTokenService_IssueSession(t *testing.T) {
	service, _ := setupTokenService(t)
	env := &domain.Environment{
		ID:                     "env-1",
		SecretKey:              "sk_live_secret",
		TokenExpiration:        900,
		RefreshTokenExpiration: 86400,
	}

	pair, err := service.IssueSession(env, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// Both tokens verify against the environment's own signer.
	sg := signer.New(env.SecretKey, env.ID, 900*time.Second, 86400*time.Second)

	access, err := sg.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signer.TokenKindAccess, access.Kind)
	assert.Equal(t, "env-1", access.EnvironmentID)
	assert.Equal(t, "user-1", access.Subject)

	refresh, err := sg.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, signer.TokenKindRefresh, refresh.Kind)

	// A different environment's signer rejects them.
	other := signer.New("sk_live_other", "env-1", 900*time.Second, 86400*time.Second)
	_, err = other.Verify(pair.AccessToken)
	require.Error(t, err)
}

func TestTokenService_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	service, repo := setupTokenService(t)

	repo.tokens["tok_live"] = &domain.Token{
		Token: "tok_live", Type: domain.TokenTypeRefresh, RelationID: "user-1",
		Expires: time.Now().Add(time.Hour),
	}
	repo.tokens["tok_old"] = &domain.Token{
		Token: "tok_old", Type: domain.TokenTypeRefresh, RelationID: "user-2",
		Expires: time.Now().Add(-time.Hour),
	}

	deleted, err := service.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Contains(t, repo.tokens, "tok_live")
	assert.NotContains(t, repo.tokens, "tok_old")
}
