package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

// Defaults applied when a conference is created with missing fields.
var (
	defaultCity   = "Default City"
	defaultTopics = []string{"Default", "Topic"}
)

type conferenceService struct {
	confRepo       domain.ConferenceRepository
	profileRepo    domain.ProfileRepository
	scheduler      domain.TaskScheduler
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewConferenceService creates a ConferenceService with the given repositories.
func NewConferenceService(
	confRepo domain.ConferenceRepository,
	profileRepo domain.ProfileRepository,
	scheduler domain.TaskScheduler,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ConferenceService {
	return &conferenceService{
		confRepo:       confRepo,
		profileRepo:    profileRepo,
		scheduler:      scheduler,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *conferenceService) CreateConference(ctx context.Context, organizerID string, form *domain.ConferenceForm) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, fmt.Errorf("%w: organizer is required", domain.ErrInvalidArgument)
	}
	if form == nil || form.Name == "" {
		return nil, fmt.Errorf("%w: conference name is required", domain.ErrInvalidArgument)
	}
	if form.MaxAttendees < 0 {
		return nil, fmt.Errorf("%w: max attendees cannot be negative", domain.ErrInvalidArgument)
	}

	city := form.City
	if city == "" {
		city = defaultCity
	}
	topics := form.Topics
	if len(topics) == 0 {
		topics = defaultTopics
	}

	conf := domain.NewConference(organizerID, form.Name, city, topics, form.MaxAttendees, form.StartDate, form.EndDate, time.Now())
	if err := s.confRepo.Create(ctx, conf); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}

	// Confirmation email goes out through the deferred task runner; a
	// scheduling failure never fails the creation.
	if prof, err := s.profileRepo.GetByID(ctx, organizerID); err == nil && prof.MainEmail != "" {
		payload := map[string]string{
			"email":           prof.MainEmail,
			"organizer_name":  prof.DisplayName,
			"conference_id":   conf.ID,
			"conference_name": conf.Name,
			"city":            conf.City,
		}
		if conf.StartDate != nil {
			payload["start_date"] = conf.StartDate.Format(time.RFC3339)
		}
		if err := s.scheduler.Schedule(ctx, domain.TaskSendConfirmationEmail, payload); err != nil {
			s.logger.Warn("schedule confirmation email", "conference_id", conf.ID, "error", err)
		}
	}

	return conf, nil
}

func (s *conferenceService) UpdateConference(ctx context.Context, userID, conferenceID string, patch *domain.ConferenceUpdate) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.confRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if conf.OrganizerID != userID {
		return nil, fmt.Errorf("%w: only the organizer can update the conference", domain.ErrForbidden)
	}

	if patch.Name != nil {
		conf.Name = *patch.Name
	}
	if patch.City != nil {
		conf.City = *patch.City
	}
	if len(patch.Topics) > 0 {
		conf.Topics = patch.Topics
	}
	if patch.MaxAttendees != nil {
		if *patch.MaxAttendees < 0 {
			return nil, fmt.Errorf("%w: max attendees cannot be negative", domain.ErrInvalidArgument)
		}
		// Growing capacity frees the difference; shrinking clamps so
		// seats_available never exceeds max_attendees.
		conf.SeatsAvailable += *patch.MaxAttendees - conf.MaxAttendees
		if conf.SeatsAvailable > *patch.MaxAttendees {
			conf.SeatsAvailable = *patch.MaxAttendees
		}
		if conf.SeatsAvailable < 0 {
			conf.SeatsAvailable = 0
		}
		conf.MaxAttendees = *patch.MaxAttendees
	}
	if patch.StartDate != nil {
		conf.StartDate = patch.StartDate
		conf.Month = int(patch.StartDate.Month())
	}
	if patch.EndDate != nil {
		conf.EndDate = patch.EndDate
	}
	conf.UpdatedAt = time.Now()

	if err := s.confRepo.Update(ctx, conf); err != nil {
		return nil, fmt.Errorf("update conference: %w", err)
	}
	return conf, nil
}

func (s *conferenceService) GetConference(ctx context.Context, conferenceID string) (*domain.ConferenceWithOrganizer, error) {
	conf, err := s.confRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	result := &domain.ConferenceWithOrganizer{Conference: conf}
	if prof, err := s.profileRepo.GetByID(ctx, conf.OrganizerID); err == nil {
		result.OrganizerName = prof.DisplayName
	}
	return result, nil
}

func (s *conferenceService) ListConferencesCreatedBy(ctx context.Context, userID string) ([]*domain.Conference, error) {
	confs, err := s.confRepo.ListByOrganizerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	return confs, nil
}

func (s *conferenceService) QueryConferences(ctx context.Context, filters []query.Filter) ([]*domain.ConferenceWithOrganizer, error) {
	plan, err := query.Compile(filters)
	if err != nil {
		return nil, err
	}

	confs, err := s.confRepo.Query(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return s.withOrganizerNames(ctx, confs)
}

// withOrganizerNames resolves organizer display names with one multi-get.
func (s *conferenceService) withOrganizerNames(ctx context.Context, confs []*domain.Conference) ([]*domain.ConferenceWithOrganizer, error) {
	seen := make(map[string]struct{}, len(confs))
	ids := make([]string, 0, len(confs))
	for _, c := range confs {
		if _, ok := seen[c.OrganizerID]; !ok {
			seen[c.OrganizerID] = struct{}{}
			ids = append(ids, c.OrganizerID)
		}
	}

	profiles, err := s.profileRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list organizer profiles: %w", err)
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.DisplayName
	}

	result := make([]*domain.ConferenceWithOrganizer, 0, len(confs))
	for _, c := range confs {
		result = append(result, &domain.ConferenceWithOrganizer{
			Conference:    c,
			OrganizerName: names[c.OrganizerID],
		})
	}
	return result, nil
}
