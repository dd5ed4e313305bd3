package services

import (
	"context"
	"fmt"
	"log/slog"

	"conferencecentral/internal/domain"
)

const featuredSpeakerTpl = "Today's featured speaker is %s"

func featuredSpeakerCacheKey(conferenceID string) string {
	return "featured_speaker:" + conferenceID
}

// MostFrequent returns the mode of items: one counting pass plus the running
// maximum. On ties the first element to reach the winning count (in input
// order) wins, so the result is deterministic for a given ordering.
func MostFrequent[T comparable](items []T) (T, error) {
	winner, _, err := mostFrequent(items)
	return winner, err
}

func mostFrequent[T comparable](items []T) (T, int, error) {
	var winner T
	if len(items) == 0 {
		return winner, 0, fmt.Errorf("%w: cannot take the mode of an empty collection", domain.ErrInvalidArgument)
	}
	counts := make(map[T]int, len(items))
	best := 0
	for _, item := range items {
		counts[item]++
		if counts[item] > best {
			best = counts[item]
			winner = item
		}
	}
	return winner, best, nil
}

type featuredService struct {
	sessionRepo domain.SessionRepository
	cache       domain.Cache
	logger      *slog.Logger
}

// NewFeaturedService creates a FeaturedService over the session collection
// and the best-effort cache.
func NewFeaturedService(sessionRepo domain.SessionRepository, cache domain.Cache, logger *slog.Logger) domain.FeaturedService {
	return &featuredService{
		sessionRepo: sessionRepo,
		cache:       cache,
		logger:      logger,
	}
}

// RefreshFeaturedSpeaker recomputes the conference's featured speaker and
// fully overwrites the cached entry. A speaker must appear at more than one
// session to be featured; otherwise the entry is cleared.
func (s *featuredService) RefreshFeaturedSpeaker(ctx context.Context, conferenceID string) error {
	sessions, err := s.sessionRepo.ListByConferenceID(ctx, conferenceID)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	var speakers []string
	for _, sess := range sessions {
		speakers = append(speakers, sess.Speakers...)
	}

	key := featuredSpeakerCacheKey(conferenceID)
	if len(speakers) == 0 {
		s.cache.Delete(key)
		return nil
	}

	winner, count, err := mostFrequent(speakers)
	if err != nil {
		return err
	}
	if count <= 1 {
		s.cache.Delete(key)
		s.logger.Debug("no featured speaker", "conference_id", conferenceID)
		return nil
	}

	s.cache.Set(key, fmt.Sprintf(featuredSpeakerTpl, winner))
	s.logger.Info("featured speaker refreshed", "conference_id", conferenceID, "speaker", winner, "sessions", count)
	return nil
}

// FeaturedSpeaker returns the cached featured-speaker message. A miss means
// no refresh has published one yet; callers treat that as "not available".
func (s *featuredService) FeaturedSpeaker(conferenceID string) (string, bool) {
	return s.cache.Get(featuredSpeakerCacheKey(conferenceID))
}

// BusiestSpeaker computes the speaker appearing at the most sessions across
// all conferences.
func (s *featuredService) BusiestSpeaker(ctx context.Context) (string, error) {
	sessions, err := s.sessionRepo.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("list sessions: %w", err)
	}

	var speakers []string
	for _, sess := range sessions {
		speakers = append(speakers, sess.Speakers...)
	}
	if len(speakers) == 0 {
		return "", fmt.Errorf("%w: no sessions with speakers exist", domain.ErrNotFound)
	}
	return MostFrequent(speakers)
}
