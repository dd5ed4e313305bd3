package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

type profileService struct {
	profileRepo domain.ProfileRepository
}

// NewProfileService creates a ProfileService with the given repository.
func NewProfileService(profileRepo domain.ProfileRepository) domain.ProfileService {
	return &profileService{profileRepo: profileRepo}
}

// GetOrCreateProfile loads the user's profile, creating it on first access.
func (s *profileService) GetOrCreateProfile(ctx context.Context, userID, mainEmail string) (*domain.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}

	prof, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		return prof, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	prof = domain.NewProfile(userID, mainEmail, time.Now())
	if err := s.profileRepo.Create(ctx, prof); err != nil {
		// Two first-access requests can race the lazy create; the loser
		// just reads the winner's row.
		if errors.Is(err, domain.ErrConflict) {
			return s.profileRepo.GetByID(ctx, userID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return prof, nil
}

func (s *profileService) SaveProfile(ctx context.Context, userID string, displayName string, size domain.TeeShirtSize) (*domain.Profile, error) {
	if size != "" && !size.Valid() {
		return nil, fmt.Errorf("%w: unknown tee shirt size %q", domain.ErrInvalidArgument, size)
	}

	prof, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if displayName != "" {
		prof.DisplayName = displayName
	}
	if size != "" {
		prof.TeeShirtSize = size
	}
	prof.UpdatedAt = time.Now()

	if err := s.profileRepo.Update(ctx, prof); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return prof, nil
}
