package services

import (
	"context"
	"fmt"

	"conferencecentral/internal/domain"
)

type attendeeService struct {
	ledger      domain.RegistrationLedger
	confRepo    domain.ConferenceRepository
	profileRepo domain.ProfileRepository
	profiles    domain.ProfileService
}

// NewAttendeeService creates an AttendeeService. All seat accounting goes
// through the ledger; this service only orchestrates around it.
func NewAttendeeService(
	ledger domain.RegistrationLedger,
	confRepo domain.ConferenceRepository,
	profileRepo domain.ProfileRepository,
	profiles domain.ProfileService,
) domain.AttendeeService {
	return &attendeeService{
		ledger:      ledger,
		confRepo:    confRepo,
		profileRepo: profileRepo,
		profiles:    profiles,
	}
}

func (s *attendeeService) RegisterForConference(ctx context.Context, userID, conferenceID string) (bool, error) {
	// Profiles are created lazily on first access; the registration row
	// references the profile, so make sure it exists first.
	if _, err := s.profiles.GetOrCreateProfile(ctx, userID, ""); err != nil {
		return false, fmt.Errorf("get profile: %w", err)
	}
	return s.ledger.Register(ctx, userID, conferenceID)
}

func (s *attendeeService) UnregisterFromConference(ctx context.Context, userID, conferenceID string) (bool, error) {
	return s.ledger.Unregister(ctx, userID, conferenceID)
}

func (s *attendeeService) ConferencesToAttend(ctx context.Context, userID string) ([]*domain.ConferenceWithOrganizer, error) {
	ids, err := s.ledger.ListConferenceIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.ConferenceWithOrganizer{}, nil
	}

	confs, err := s.confRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}

	organizerIDs := make([]string, 0, len(confs))
	seen := make(map[string]struct{}, len(confs))
	for _, c := range confs {
		if _, ok := seen[c.OrganizerID]; !ok {
			seen[c.OrganizerID] = struct{}{}
			organizerIDs = append(organizerIDs, c.OrganizerID)
		}
	}
	profiles, err := s.profileRepo.ListByIDs(ctx, organizerIDs)
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
