package service

import (
	"context"
	"fmt"
	"time"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/logger"
	"github.com/authcove/authcove/pkg/signer"
)

// TokenService wraps the token store with the validity contract: a row past
// its expiry is treated as absent at the moment of use, whether or not the
// sweep has removed it yet.
type TokenService struct {
	repo   domain.TokenRepository
	logger logger.Logger
}

func NewTokenService(repo domain.TokenRepository, logger logger.Logger) *TokenService {
	return &TokenService{
		repo:   repo,
		logger: logger,
	}
}

// Issue stores a new token row. The opaque token string is generated by the
// issuing flow; this layer only validates and persists it.
func (s *TokenService) Issue(ctx context.Context, token *domain.Token) error {
	if err := token.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, token)
}

// Consume looks a token up, checks its validity and deletes it, enforcing
// single use. Expired tokens are deleted on the spot and reported as not
// found.
func (s *TokenService) Consume(ctx context.Context, tokenString string, tokenType domain.TokenType) (*domain.Token, error) {
	token, err := s.repo.GetByToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if token.Type != tokenType {
		return nil, &domain.ErrTokenNotFound{}
	}

	if !token.Valid(time.Now()) {
		if err := s.repo.Delete(ctx, tokenString); err != nil {
			return nil, fmt.Errorf("failed to delete expired token: %w", err)
		}
		return nil, &domain.ErrTokenNotFound{}
	}

	if err := s.repo.Delete(ctx, tokenString); err != nil {
		return nil, fmt.Errorf("failed to delete token: %w", err)
	}

	return token, nil
}

// SessionTokens is the signed access/refresh pair issued for a user session.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// IssueSession signs an access/refresh pair with the environment's secret key.
// Expirations are stored on the environment in seconds.
func (s *TokenService) IssueSession(env *domain.Environment, userID string) (*SessionTokens, error) {
	sg := signer.New(env.SecretKey, env.ID,
		time.Duration(env.TokenExpiration)*time.Second,
		time.Duration(env.RefreshTokenExpiration)*time.Second,
	)

	access, err := sg.Sign(signer.TokenKindAccess, userID)
	if err != nil {
		return nil, err
	}
	refresh, err := sg.Sign(signer.TokenKindRefresh, userID)
	if err != nil {
		return nil, err
	}

	return &SessionTokens{AccessToken: access, RefreshToken: refresh}, nil
}

// PurgeExpired garbage-collects every token row past its expiry.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("Expired tokens purged")
	}
	return deleted, nil
}
