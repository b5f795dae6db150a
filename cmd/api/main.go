package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authcove/authcove/config"
	"github.com/authcove/authcove/internal/database"
	"github.com/authcove/authcove/internal/repository"
	"github.com/authcove/authcove/internal/service"
	"github.com/authcove/authcove/pkg/logger"
	"github.com/authcove/authcove/pkg/mailer"
)

// tokenPurgeInterval is how often expired token rows are swept.
const tokenPurgeInterval = time.Hour

// App bundles the wired core services. Transport layers (HTTP, gRPC) attach
// on top of this in their own binaries.
type App struct {
	Config          *config.Config
	Logger          logger.Logger
	Environments    *service.EnvironmentService
	EnvironmentData *service.EnvironmentDataService
	Emails          *service.EmailService
	Tokens          *service.TokenService
}

func buildApp(cfg *config.Config, log logger.Logger, db *sql.DB) *App {
	environmentRepo := repository.NewEnvironmentRepository(db)
	environmentDataRepo := repository.NewEnvironmentDataRepository(db)
	emailTemplateRepo := repository.NewEmailTemplateRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	userRepo := repository.NewUserRepository(db)

	var outbound mailer.Mailer
	if cfg.IsDevelopment() {
		outbound = mailer.NewConsoleMailer()
	} else {
		outbound = mailer.NewSMTPMailer(&mailer.Config{
			SMTPHost:     cfg.SMTP.Host,
			SMTPPort:     cfg.SMTP.Port,
			SMTPUsername: cfg.SMTP.Username,
			SMTPPassword: cfg.SMTP.Password,
		})
	}

	return &App{
		Config:          cfg,
		Logger:          log,
		Environments:    service.NewEnvironmentService(environmentRepo, log),
		EnvironmentData: service.NewEnvironmentDataService(environmentDataRepo, environmentRepo, log),
		Emails:          service.NewEmailService(emailTemplateRepo, environmentRepo, userRepo, outbound, log),
		Tokens:          service.NewTokenService(tokenRepo, log),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.WithField("version", cfg.Version).Info("Starting authcove core")

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.InitializeDatabase(db, cfg.RootEmail); err != nil {
		log.WithField("error", err.Error()).Fatal("Failed to initialize database")
	}

	app := buildApp(cfg, log, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic token GC. Consumption checks validity at use time, so the
	// sweep only bounds table growth.
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	log.Info("Core services ready")

	for {
		select {
		case <-ticker.C:
			if _, err := app.Tokens.PurgeExpired(ctx); err != nil {
				log.WithField("error", err.Error()).Error("Token purge failed")
			}
		case <-ctx.Done():
			log.Info("Shutting down")
			return
		}
	}
}
