package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcove/authcove/internal/domain"
	"github.com/authcove/authcove/pkg/logger"
	"github.com/authcove/authcove/pkg/mailer"
)

// MockEmailTemplateRepository keys templates by (environment, kind).
type MockEmailTemplateRepository struct {
	templates map[string]*domain.EmailTemplate
}

func NewMockEmailTemplateRepository() *MockEmailTemplateRepository {
	return &MockEmailTemplateRepository{templates: make(map[string]*domain.EmailTemplate)}
}

func (m *MockEmailTemplateRepository) key(environmentID string, kind domain.EmailTemplateKind) string {
	return environmentID + "/" + string(kind)
}

func (m *MockEmailTemplateRepository) Create(ctx context.Context, template *domain.EmailTemplate) error {
	m.templates[m.key(template.EnvironmentID, template.Kind)] = template
	return nil
}

func (m *MockEmailTemplateRepository) GetByKind(ctx context.Context, environmentID string, kind domain.EmailTemplateKind) (*domain.EmailTemplate, error) {
	template, exists := m.templates[m.key(environmentID, kind)]
	if !exists {
		return nil, &domain.ErrEmailTemplateNotFound{Kind: kind, EnvironmentID: environmentID}
	}
	return template, nil
}

func (m *MockEmailTemplateRepository) GetByID(ctx context.Context, environmentID, id string) (*domain.EmailTemplate, error) {
	for _, template := range m.templates {
		if template.EnvironmentID == environmentID && template.ID == id {
			return template, nil
		}
	}
	return nil, &domain.ErrEmailTemplateNotFound{EnvironmentID: environmentID}
}

func (m *MockEmailTemplateRepository) List(ctx context.Context, environmentID string) ([]*domain.EmailTemplate, error) {
	var result []*domain.EmailTemplate
	for _, template := range m.templates {
		if template.EnvironmentID == environmentID {
			result = append(result, template)
		}
	}
	return result, nil
}

func (m *MockEmailTemplateRepository) Update(ctx context.Context, template *domain.EmailTemplate) error {
	m.templates[m.key(template.EnvironmentID, template.Kind)] = template
	return nil
}

func (m *MockEmailTemplateRepository) Delete(ctx context.Context, environmentID, id string) error {
	return nil
}

// MockUserRepository covers GetByID; the other methods are unused here.
type MockUserRepository struct {
	users map[string]*domain.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, &domain.ErrUserNotFound{ID: id}
	}
	return user, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, environmentID, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, &domain.ErrUserNotFound{ID: email}
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error { return nil }
func (m *MockUserRepository) Delete(ctx context.Context, id string) error         { return nil }

// MockMailer records delivered messages and optionally fails.
type MockMailer struct {
	sent      []mailer.Message
	sendError error
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.sendError != nil {
		return m.sendError
	}
	m.sent = append(m.sent, msg)
	return nil
}

func setupEmailService(t *testing.T) (*EmailService, *MockEmailTemplateRepository, *MockUserRepository, *MockMailer) {
	templateRepo := NewMockEmailTemplateRepository()
	envRepo := NewMockEnvironmentRepository()
	envRepo.summaries["env-1"] = testSummary()
	userRepo := NewMockUserRepository()
	transport := &MockMailer{}
	service := NewEmailService(templateRepo, envRepo, userRepo, transport, logger.NewTestLogger(t))
	return service, templateRepo, userRepo, transport
}

func welcomeTemplate() *domain.EmailTemplate {
	return &domain.EmailTemplate{
		ID:            "tpl-1",
		EnvironmentID: "env-1",
		Kind:          domain.EmailTemplateKindWelcome,
		Name:          "Welcome",
		Subject:       "Welcome to {{ project_app_name }}",
		FromName:      "{{ environment_name }} team",
		FromEmail:     "hello@example.com",
		ReplyTo:       "support@example.com",
		Preview:       "Hi {% if user_first_name %}{{ user_first_name }}{% else %}there{% endif %}",
		Content:       "<span>{{ preview }}</span><p>Welcome, {{ user_full_name }}. Visit {{ app_url }}.</p>",
		Enabled:       true,
	}
}

func TestEmailService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("renders_and_dispatches", func(t *testing.T) {
		service, templateRepo, userRepo, transport := setupEmailService(t)
		require.NoError(t, templateRepo.Create(ctx, welcomeTemplate()))
		require.NoError(t, userRepo.Create(ctx, &domain.User{
			ID:       "user-1",
			Email:    "ada@example.com",
			FullName: "Ada Lovelace",
		}))

		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
			UserID:        "user-1",
		})

		assert.Equal(t, domain.EmailSendStatusSent, outcome.Status)
		require.Len(t, transport.sent, 1)
		msg := transport.sent[0]
		assert.Equal(t, "Welcome to Acme", msg.Subject)
		assert.Equal(t, "production team", msg.FromName)
		assert.Equal(t, "hello@example.com", msg.FromEmail)
		assert.Equal(t, "support@example.com", msg.ReplyTo)
		// Preview renders before content and is available inside it.
		assert.Contains(t, msg.HTML, "<span>Hi Ada</span>")
		assert.Contains(t, msg.HTML, "Welcome, Ada Lovelace.")
		assert.Contains(t, msg.HTML, "https://app.example.com")
	})

	t.Run("caller_data_in_context", func(t *testing.T) {
		service, templateRepo, _, transport := setupEmailService(t)
		template := welcomeTemplate()
		template.Content = "<a href=\"{{ magic_link }}\">Sign in</a>"
		require.NoError(t, templateRepo.Create(ctx, template))

		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
			Data:          domain.MapOfAny{"magic_link": "https://app.example.com/m/abc"},
		})

		assert.Equal(t, domain.EmailSendStatusSent, outcome.Status)
		require.Len(t, transport.sent, 1)
		assert.Contains(t, transport.sent[0].HTML, "https://app.example.com/m/abc")
	})

	t.Run("no_template_skips", func(t *testing.T) {
		service, _, _, transport := setupEmailService(t)

		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
		})

		assert.Equal(t, domain.EmailSendStatusSkipped, outcome.Status)
		var notFound *domain.ErrEmailTemplateNotFound
		assert.ErrorAs(t, outcome.Err, &notFound)
		assert.Empty(t, transport.sent, "nothing is rendered or dispatched")
	})

	t.Run("disabled_template_skips", func(t *testing.T) {
		service, templateRepo, _, transport := setupEmailService(t)
		template := welcomeTemplate()
		template.Enabled = false
		require.NoError(t, templateRepo.Create(ctx, template))

		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
		})

		assert.Equal(t, domain.EmailSendStatusSkipped, outcome.Status)
		assert.Empty(t, transport.sent)
	})

	t.Run("render_failure_is_no_op", func(t *testing.T) {
		service, templateRepo, _, transport := setupEmailService(t)
		template := welcomeTemplate()
		template.Subject = "{% if %}"
		require.NoError(t, templateRepo.Create(ctx, template))

		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
		})

		assert.Equal(t, domain.EmailSendStatusRenderFailed, outcome.Status)
		assert.Error(t, outcome.Err)
		assert.Empty(t, transport.sent)
	})

	t.Run("dispatch_failure_swallowed", func(t *testing.T) {
		service, templateRepo, _, transport := setupEmailService(t)
		require.NoError(t, templateRepo.Create(ctx, welcomeTemplate()))
		transport.sendError = errors.New("smtp connection refused")

		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
		})

		assert.Equal(t, domain.EmailSendStatusDispatchFailed, outcome.Status)
		assert.Error(t, outcome.Err)

		// The exported entry point swallows it entirely.
		service.Send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
		})
	})

	t.Run("scheduled_send", func(t *testing.T) {
		service, templateRepo, _, transport := setupEmailService(t)
		require.NoError(t, templateRepo.Create(ctx, welcomeTemplate()))

		scheduledAt := time.Now().Add(2 * time.Hour)
		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "ada@example.com",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
			ScheduledAt:   &scheduledAt,
		})

		assert.Equal(t, domain.EmailSendStatusScheduled, outcome.Status)
		require.Len(t, transport.sent, 1)
		require.NotNil(t, transport.sent[0].ScheduledAt)
	})

	t.Run("invalid_params", func(t *testing.T) {
		service, _, _, transport := setupEmailService(t)

		outcome := service.send(ctx, domain.SendEmailParams{
			To:            "not-an-email",
			Kind:          domain.EmailTemplateKindWelcome,
			EnvironmentID: "env-1",
		})

		assert.True(t, outcome.Failed())
		assert.Empty(t, transport.sent)
	})
}

func TestEmailService_SendInternal(t *testing.T) {
	ctx := context.Background()

	t.Run("support_identity", func(t *testing.T) {
		service, _, _, transport := setupEmailService(t)

		outcome := service.sendInternal(ctx, domain.InternalEmailParams{
			From:    domain.InternalSenderSupport,
			To:      "ops@example.com",
			Subject: "New workspace created",
			Content: "Workspace proj-1 is live.",
		})

		assert.Equal(t, domain.EmailSendStatusSent, outcome.Status)
		require.Len(t, transport.sent, 1)
		msg := transport.sent[0]
		assert.Equal(t, "Authcove Support", msg.FromName)
		assert.Equal(t, "support@authcove.com", msg.FromEmail)
		assert.Equal(t, "New workspace created", msg.Subject)
		assert.Contains(t, msg.HTML, "Workspace proj-1 is live.")
	})

	t.Run("unknown_sender", func(t *testing.T) {
		service, _, _, transport := setupEmailService(t)

		outcome := service.sendInternal(ctx, domain.InternalEmailParams{
			From:    "marketing",
			To:      "ops@example.com",
			Subject: "Hello",
		})

		assert.True(t, outcome.Failed())
		assert.Empty(t, transport.sent)
	})

	t.Run("dispatch_failure_swallowed", func(t *testing.T) {
		service, _, _, transport := setupEmailService(t)
		transport.sendError = errors.New("smtp timeout")

		outcome := service.sendInternal(ctx, domain.InternalEmailParams{
			From:    domain.InternalSenderFounder,
			To:      "ops@example.com",
			Subject: "Weekly digest",
			Content: "All good.",
		})

		assert.Equal(t, domain.EmailSendStatusDispatchFailed, outcome.Status)

		// Exported entry point never propagates it.
		service.SendInternal(ctx, domain.InternalEmailParams{
			From:    domain.InternalSenderFounder,
			To:      "ops@example.com",
			Subject: "Weekly digest",
			Content: "All good.",
		})
	})
}
