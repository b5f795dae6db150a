package service

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/crypto"
	"github.com/authcove/authcove/pkg/logger"
)

// DNSResolver looks up TXT records. Wrapped in an interface so domain
// verification is testable without real DNS.
type DNSResolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

type netResolver struct{}

func (netResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	return net.DefaultResolver.LookupTXT(ctx, name)
}

// EnvironmentService owns environment provisioning and the custom-domain
// verification loop. API credentials are generated once at creation and never
// rotated through Update.
type EnvironmentService struct {
	repo     domain.EnvironmentRepository
	resolver DNSResolver
	logger   logger.Logger
}

func NewEnvironmentService(repo domain.EnvironmentRepository, logger logger.Logger) *EnvironmentService {
	return &EnvironmentService{
		repo:     repo,
		resolver: netResolver{},
		logger:   logger,
	}
}

// Create provisions a new environment with a fresh credential pair.
func (s *EnvironmentService) Create(ctx context.Context, environment *domain.Environment) error {
	publicKey, secretKey, err := crypto.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %w", err)
	}
	environment.PublicKey = publicKey
	environment.SecretKey = secretKey

	if err := environment.Validate(); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, environment); err != nil {
		return fmt.Errorf("failed to create environment: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"environment_id": environment.ID,
		"project_id":     environment.ProjectID,
	}).Info("Environment created")

	return nil
}

// BeginCustomDomainVerification stages a custom domain on the environment and
// returns the TXT record the tenant must publish at the domain apex.
func (s *EnvironmentService) BeginCustomDomainVerification(ctx context.Context, environmentID, customDomain string) (string, error) {
	environment, err := s.repo.GetByID(ctx, environmentID)
	if err != nil {
		return "", err
	}

	txtRecord := crypto.DomainTXTRecord(customDomain, environment.SecretKey)
	environment.BeginDomainVerification(customDomain, txtRecord, time.Now().UTC())

	if err := s.repo.Update(ctx, environment); err != nil {
		return "", fmt.Errorf("failed to update environment: %w", err)
	}

	return txtRecord, nil
}

// CheckCustomDomain runs one verification pass: look up the domain's TXT
// records and compare against the expected value. The result is persisted
// either way so the tenant sees the latest check.
func (s *EnvironmentService) CheckCustomDomain(ctx context.Context, environmentID string) (bool, error) {
	environment, err := s.repo.GetByID(ctx, environmentID)
	if err != nil {
		return false, err
	}
	if environment.CustomDomain == nil || environment.CustomDomainTXT == nil {
		return false, domain.NewValidationError("environment has no custom domain staged")
	}

	now := time.Now().UTC()
	verified := false

	records, err := s.resolver.LookupTXT(ctx, *environment.CustomDomain)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"environment_id": environmentID,
			"domain":         *environment.CustomDomain,
			"error":          err.Error(),
		}).Warn("Custom domain TXT lookup failed")
	} else {
		for _, record := range records {
			if strings.TrimSpace(record) == *environment.CustomDomainTXT {
				verified = true
				break
			}
		}
	}

	if verified {
		environment.MarkDomainVerified(now)
	} else {
		environment.MarkDomainFailed(now)
	}

	if err := s.repo.Update(ctx, environment); err != nil {
		return false, fmt.Errorf("failed to update environment: %w", err)
	}

	return verified, nil
}
