package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"blueelephant/config"
	"blueelephant/internal/adapters/auth"
	"blueelephant/internal/adapters/email"
	"blueelephant/internal/adapters/oauth"
	delivery "blueelephant/internal/delivery/http"
	"blueelephant/internal/delivery/http/controllers"
	"blueelephant/internal/delivery/http/middleware"
	"blueelephant/internal/domain"
	"blueelephant/internal/repository/postgres"
	"blueelephant/internal/services"
)

// @title Blue Elephant API
// @version 1.0
// @description Events, testimonials, volunteer applications and registrations for Aaria's Blue Elephant.
// @BasePath /
func main() {
	logger := config.NewLogger()
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	defer db.Close()

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	testimonialRepo := postgres.NewTestimonialRepository(db)
	volunteerRepo := postgres.NewVolunteerApplicationRepository(db)
	registrationRepo := postgres.NewEventRegistrationRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	// Email
	var emails domain.EmailService
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		logger.Error("email templates unavailable, notifications disabled", "error", err)
	} else {
		mailer := email.NewMailer(email.MailerConfig{
			Provider:    cfg.EmailProvider,
			FromAddress: cfg.EmailFromAddress,
			FromName:    cfg.EmailFromName,
			SES: email.SESConfig{
				Region:          cfg.AWSRegion,
				AccessKeyID:     cfg.AWSAccessKeyID,
				SecretAccessKey: cfg.AWSSecretAccessKey,
			},
		}, logger)
		emails = services.NewEmailService(mailer, renderer, logger)
	}

	// Data store
	store := services.NewStore(eventRepo, testimonialRepo, volunteerRepo, registrationRepo, emails, cfg.NotifyEmail, logger)

	// Identity
	members := services.NewMemberCounter(profileRepo, cfg.MembersSeed, logger)
	provider := oauth.NewProvider(oauth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL(),
	}, auth.NewStateSigner(cfg.StateSecret, auth.DefaultStateTTL), profileRepo, logger)
	registry := services.NewSessionRegistry(provider.NewClient, members, services.RoleRules{
		AdminEmail: cfg.AdminEmail,
		OrgDomain:  cfg.OrgDomain,
	}, logger)
	defer registry.Close()

	// HTTP
	cookies, err := middleware.NewCookieStore([]byte(cfg.SessionKey), cfg.CookieSecure, cfg.SessionMaxAge)
	if err != nil {
		logger.Error("cookie store", "error", err)
		os.Exit(1)
	}
	sessions := middleware.NewSessionLoader(cookies, registry, logger)
	mux := delivery.NewRouter(delivery.Controllers{
		Auth:          controllers.NewAuthController(logger, sessions),
		Me:            controllers.NewMeController(logger, members),
		Events:        controllers.NewEventController(logger, store),
		Testimonials:  controllers.NewTestimonialController(logger, store),
		Volunteers:    controllers.NewVolunteerController(logger, store),
		Registrations: controllers.NewRegistrationController(logger, store),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           delivery.NewHandler(mux, sessions, cfg.AllowedOrigins, logger),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial load runs in the background; reads see empty collections until it lands.
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		store.FetchAll(loadCtx)
		members.Refresh(loadCtx)
		logger.Info("initial load complete",
			"events", len(store.Events()),
			"testimonials", len(store.Testimonials()),
			"volunteer_applications", len(store.VolunteerApplications()),
			"registrations", len(store.EventRegistrations()),
			"members", members.Value())
	}()

	go sweepSessions(ctx, registry, cfg.SessionIdleTTL, logger)

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Environment, "configured", cfg.Configured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}

func sweepSessions(ctx context.Context, registry *services.SessionRegistry, maxIdle time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(maxIdle); n > 0 {
				logger.Debug("swept idle browser sessions", "count", n, "open", registry.Len())
			}
		}
	}
}
