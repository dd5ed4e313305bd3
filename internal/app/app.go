// Package app wires configuration, storage, adapters and services into a
// ready-to-embed conference backend. The host platform mounts its own
// transport and authentication in front of the service interfaces.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"conferencecentral/config"
	"conferencecentral/internal/adapters/cache"
	"conferencecentral/internal/adapters/email"
	"conferencecentral/internal/adapters/tasks"
	"conferencecentral/internal/domain"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/services"
)

const serviceTimeout = 5 * time.Second

// App bundles the wired services of the conference backend.
type App struct {
	Logger *slog.Logger
	DB     *sql.DB
	Tasks  *tasks.Runner

	Profiles      domain.ProfileService
	Conferences   domain.ConferenceService
	Sessions      domain.SessionService
	Attendees     domain.AttendeeService
	Wishlists     domain.WishlistService
	Featured      domain.FeaturedService
	Announcements domain.AnnouncementService
	Email         domain.EmailService
}

// New builds the application from config and starts the task runner.
func New(cfg *config.Config) (*App, error) {
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	confRepo := postgres.NewConferenceRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	wishlistRepo := postgres.NewWishlistRepository(db)
	ledger := postgres.NewRegistrationLedger(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create mailer: %w", err)
	}

	factCache := cache.NewLRU(cfg.CacheSize, cfg.CacheTTL)
	runner := tasks.NewRunner(cfg.TaskWorkers, logger)

	profileSvc := services.NewProfileService(profileRepo)
	conferenceSvc := services.NewConferenceService(confRepo, profileRepo, runner, logger, serviceTimeout)
	sessionSvc := services.NewSessionService(sessionRepo, confRepo, runner, logger)
	attendeeSvc := services.NewAttendeeService(ledger, confRepo, profileRepo, profileSvc)
	wishlistSvc := services.NewWishlistService(wishlistRepo, sessionRepo)
	featuredSvc := services.NewFeaturedService(sessionRepo, factCache, logger)
	announcementSvc := services.NewAnnouncementService(confRepo, factCache, logger)
	emailSvc := services.NewEmailService(mailer, logger)

	registerTaskHandlers(runner, featuredSvc, announcementSvc, emailSvc)
	runner.Start()

	return &App{
		Logger:        logger,
		DB:            db,
		Tasks:         runner,
		Profiles:      profileSvc,
		Conferences:   conferenceSvc,
		Sessions:      sessionSvc,
		Attendees:     attendeeSvc,
		Wishlists:     wishlistSvc,
		Featured:      featuredSvc,
		Announcements: announcementSvc,
		Email:         emailSvc,
	}, nil
}

// Close drains the task runner and releases the database pool.
func (a *App) Close() error {
	a.Tasks.Close()
	return a.DB.Close()
}

// registerTaskHandlers binds the deferred task names to their idempotent
// handlers. Repeated delivery of any of these is harmless: each one fully
// recomputes and overwrites its derived fact (or re-sends an email the
// provider deduplicates poorly — an accepted at-least-once consequence).
func registerTaskHandlers(
	runner *tasks.Runner,
	featured domain.FeaturedService,
	announcements domain.AnnouncementService,
	emails domain.EmailService,
) {
	runner.Handle(domain.TaskRefreshFeaturedSpeaker, func(ctx context.Context, payload map[string]string) error {
		return featured.RefreshFeaturedSpeaker(ctx, payload["conference_id"])
	})
	runner.Handle(domain.TaskRefreshAnnouncement, func(ctx context.Context, payload map[string]string) error {
		_, err := announcements.Refresh(ctx)
		return err
	})
	runner.Handle(domain.TaskSendConfirmationEmail, func(ctx context.Context, payload map[string]string) error {
		data := &domain.ConferenceConfirmationEmailData{
			Email:          payload["email"],
			OrganizerName:  payload["organizer_name"],
			ConferenceName: payload["conference_name"],
			City:           payload["city"],
		}
		if raw := payload["start_date"]; raw != "" {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				data.StartDate = &t
			}
		}
		return emails.SendConferenceConfirmation(ctx, data)
	})
}
