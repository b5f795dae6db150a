package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/liquid"
	"github.com/authcove/authcove/pkg/logger"
	"github.com/authcove/authcove/pkg/mailer"
	"github.com/authcove/authcove/pkg/mjml"
	"github.com/authcove/authcove/pkg/templates"
)

// EmailService renders and dispatches outbound email. Email is a best-effort
// side channel of the flows that trigger it: a missing template, a broken
// template or a transport failure is logged and swallowed, never propagated
// to the caller. The unexported send paths return a typed outcome so the
// behavior stays testable.
type EmailService struct {
	templateRepo domain.EmailTemplateRepository
	envRepo      domain.EnvironmentRepository
	userRepo     domain.UserRepository
	mailer       mailer.Mailer
	engine       *liquid.Engine
	logger       logger.Logger
}

func NewEmailService(
	templateRepo domain.EmailTemplateRepository,
	envRepo domain.EnvironmentRepository,
	userRepo domain.UserRepository,
	mailer mailer.Mailer,
	logger logger.Logger,
) *EmailService {
	return &EmailService{
		templateRepo: templateRepo,
		envRepo:      envRepo,
		userRepo:     userRepo,
		mailer:       mailer,
		engine:       liquid.NewEngine(),
		logger:       logger,
	}
}

// Send dispatches a tenant-facing transactional email from the environment's
// stored template of the given kind.
func (s *EmailService) Send(ctx context.Context, params domain.SendEmailParams) {
	outcome := s.send(ctx, params)
	s.logOutcome(outcome, map[string]interface{}{
		"environment_id": params.EnvironmentID,
		"kind":           params.Kind,
		"to":             params.To,
	})
}

// SendInternal dispatches a fixed operational notification from one of the
// internal sender identities.
func (s *EmailService) SendInternal(ctx context.Context, params domain.InternalEmailParams) {
	outcome := s.sendInternal(ctx, params)
	s.logOutcome(outcome, map[string]interface{}{
		"from":    params.From,
		"to":      params.To,
		"subject": params.Subject,
	})
}

func (s *EmailService) send(ctx context.Context, params domain.SendEmailParams) domain.EmailSendOutcome {
	if err := params.Validate(); err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: err}
	}

	template, err := s.templateRepo.GetByKind(ctx, params.EnvironmentID, params.Kind)
	if err != nil {
		var notFound *domain.ErrEmailTemplateNotFound
		if errors.As(err, &notFound) {
			return domain.EmailSendOutcome{Status: domain.EmailSendStatusSkipped, Err: err}
		}
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: err}
	}
	if !template.Enabled {
		return domain.EmailSendOutcome{
			Status: domain.EmailSendStatusSkipped,
			Err:    &domain.ErrEmailTemplateNotFound{Kind: params.Kind, EnvironmentID: params.EnvironmentID},
		}
	}

	data, err := s.buildContext(ctx, params)
	if err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: err}
	}

	fromName, err := s.engine.Render(template.FromName, data)
	if err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: fmt.Errorf("failed to render from name: %w", err)}
	}
	subject, err := s.engine.Render(template.Subject, data)
	if err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: fmt.Errorf("failed to render subject: %w", err)}
	}
	preview, err := s.engine.Render(template.Preview, data)
	if err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: fmt.Errorf("failed to render preview: %w", err)}
	}

	// The rendered preview joins the context before the body renders, so
	// content templates can embed it as the hidden preheader line.
	data["preview"] = preview

	content, err := s.engine.Render(template.Content, data)
	if err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: fmt.Errorf("failed to render content: %w", err)}
	}

	return s.dispatch(ctx, mailer.Message{
		FromName:    fromName,
		FromEmail:   template.FromEmail,
		To:          params.To,
		Subject:     subject,
		HTML:        content,
		ReplyTo:     template.ReplyTo,
		ScheduledAt: params.ScheduledAt,
	})
}

func (s *EmailService) sendInternal(ctx context.Context, params domain.InternalEmailParams) domain.EmailSendOutcome {
	if err := params.Validate(); err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: err}
	}

	identity, err := params.From.Identity()
	if err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: err}
	}

	html, err := mjml.ToHTML(ctx, templates.InternalNotification(params.Subject, params.Content))
	if err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusRenderFailed, Err: err}
	}

	return s.dispatch(ctx, mailer.Message{
		FromName:    identity.Name,
		FromEmail:   identity.Email,
		To:          params.To,
		Subject:     params.Subject,
		HTML:        html,
		ScheduledAt: params.ScheduledAt,
	})
}

// buildContext assembles the template data context. Caller data goes in
// first; the environment and user summaries are fetched fresh and layered on
// top, so templates always see current entity state.
func (s *EmailService) buildContext(ctx context.Context, params domain.SendEmailParams) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(params.Data)+12)
	for k, v := range params.Data {
		data[k] = v
	}

	summary, err := s.envRepo.GetSummary(ctx, params.EnvironmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment summary: %w", err)
	}
	data["environment_id"] = summary.ID
	data["environment_name"] = summary.Name
	data["app_url"] = summary.AppURL
	data["project_id"] = summary.Project.ID
	data["project_app_name"] = summary.Project.AppName

	if params.UserID != "" {
		user, err := s.userRepo.GetByID(ctx, params.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		data["user_id"] = user.ID
		data["user_email"] = user.Email
		data["user_full_name"] = user.FullName
		data["user_first_name"] = user.FirstName()
		data["user_email_confirmed"] = user.EmailConfirmed
		if user.LastSignIn != nil {
			data["user_last_sign_in"] = user.LastSignIn.UTC().Format(time.RFC3339)
		}
		if user.ProfilePicture != nil {
			data["user_profile_picture"] = *user.ProfilePicture
		}
	}

	return data, nil
}

func (s *EmailService) dispatch(ctx context.Context, msg mailer.Message) domain.EmailSendOutcome {
	if err := s.mailer.Send(ctx, msg); err != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusDispatchFailed, Err: err}
	}
	if msg.ScheduledAt != nil {
		return domain.EmailSendOutcome{Status: domain.EmailSendStatusScheduled}
	}
	return domain.EmailSendOutcome{Status: domain.EmailSendStatusSent}
}

func (s *EmailService) logOutcome(outcome domain.EmailSendOutcome, fields map[string]interface{}) {
	fields["status"] = outcome.Status
	log := s.logger.WithFields(fields)

	switch outcome.Status {
	case domain.EmailSendStatusSent:
		log.Info("Email sent")
	case domain.EmailSendStatusScheduled:
		log.Info("Email scheduled")
	case domain.EmailSendStatusSkipped:
		log.Info("Email skipped: no enabled template")
	default:
		log.WithField("error", outcome.Err.Error()).Error("Email failed")
	}
}
