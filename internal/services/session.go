package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
)

type sessionService struct {
	sessionRepo domain.SessionRepository
	confRepo    domain.ConferenceRepository
	scheduler   domain.TaskScheduler
	logger      *slog.Logger
}

// NewSessionService creates a SessionService with the given repositories.
func NewSessionService(
	sessionRepo domain.SessionRepository,
	confRepo domain.ConferenceRepository,
	scheduler domain.TaskScheduler,
	logger *slog.Logger,
) domain.SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		confRepo:    confRepo,
		scheduler:   scheduler,
		logger:      logger,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userID, conferenceID string, form *domain.SessionForm) (*domain.Session, error) {
	if form == nil || form.Name == "" {
		return nil, fmt.Errorf("%w: session name is required", domain.ErrInvalidArgument)
	}
	if form.Type != "" && !form.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown session type %q", domain.ErrInvalidArgument, form.Type)
	}

	conf, err := s.confRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if conf.OrganizerID != userID {
		return nil, fmt.Errorf("%w: only the conference organizer can add sessions", domain.ErrForbidden)
	}

	sess := domain.NewSession(conferenceID, form.Name, form.Speakers, form.Type, form.Date, form.StartTime, time.Now())
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	// The featured-speaker fact is recomputed in the background after the
	// session is stored; a scheduling failure never rolls the create back.
	payload := map[string]string{"conference_id": conferenceID}
	if err := s.scheduler.Schedule(ctx, domain.TaskRefreshFeaturedSpeaker, payload); err != nil {
		s.logger.Warn("schedule featured speaker refresh", "conference_id", conferenceID, "error", err)
	}

	return sess, nil
}

func (s *sessionService) ListConferenceSessions(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	if _, err := s.confRepo.GetByID(ctx, conferenceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	sessions, err := s.sessionRepo.ListByConferenceID(ctx, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) ListConferenceSessionsByType(ctx context.Context, conferenceID string, sessionType domain.SessionType) ([]*domain.Session, error) {
	if !sessionType.Valid() {
		return nil, fmt.Errorf("%w: unknown session type %q", domain.ErrInvalidArgument, sessionType)
	}
	if _, err := s.confRepo.GetByID(ctx, conferenceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	sessions, err := s.sessionRepo.ListByConferenceIDAndType(ctx, conferenceID, sessionType)
	if err != nil {
		return nil, fmt.Errorf("list sessions by type: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) ListSessionsBySpeaker(ctx context.Context, speaker string) ([]*domain.Session, error) {
	if speaker == "" {
		return nil, fmt.Errorf("%w: speaker is required", domain.ErrInvalidArgument)
	}
	sessions, err := s.sessionRepo.ListBySpeaker(ctx, speaker)
	if err != nil {
		return nil, fmt.Errorf("list sessions by speaker: %w", err)
	}
	return sessions, nil
}
