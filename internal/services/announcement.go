package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conferencecentral/internal/domain"
)

const (
	announcementCacheKey = "recent_announcements"
	announcementTpl      = "Last chance to attend! The following conferences are nearly sold out: %s"
	// nearlySoldOutSeats is the seat threshold below which a conference makes
	// it into the announcement.
	nearlySoldOutSeats = 5
)

type announcementService struct {
	confRepo domain.ConferenceRepository
	cache    domain.Cache
	logger   *slog.Logger
}

// NewAnnouncementService creates an AnnouncementService over the conference
// collection and the best-effort cache.
func NewAnnouncementService(confRepo domain.ConferenceRepository, cache domain.Cache, logger *slog.Logger) domain.AnnouncementService {
	return &announcementService{
		confRepo: confRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Refresh recomputes the nearly-sold-out announcement. With no qualifying
// conferences the cache entry is deleted, so Current reports a miss rather
// than a stale message.
func (s *announcementService) Refresh(ctx context.Context) (string, error) {
	confs, err := s.confRepo.ListNearlySoldOut(ctx, nearlySoldOutSeats)
	if err != nil {
		return "", fmt.Errorf("list nearly sold out conferences: %w", err)
	}

	if len(confs) == 0 {
		s.cache.Delete(announcementCacheKey)
		return "", nil
	}

	names := make([]string, 0, len(confs))
	for _, c := range confs {
		names = append(names, c.Name)
	}
	announcement := fmt.Sprintf(announcementTpl, strings.Join(names, ", "))
	s.cache.Set(announcementCacheKey, announcement)
	s.logger.Info("announcement refreshed", "conferences", len(confs))
	return announcement, nil
}

func (s *announcementService) Current() (string, bool) {
	return s.cache.Get(announcementCacheKey)
}
