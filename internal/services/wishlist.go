package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

type wishlistService struct {
	wishlistRepo domain.WishlistRepository
	sessionRepo  domain.SessionRepository
}

// NewWishlistService creates a WishlistService with the given repositories.
func NewWishlistService(wishlistRepo domain.WishlistRepository, sessionRepo domain.SessionRepository) domain.WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		sessionRepo:  sessionRepo,
	}
}

func (s *wishlistService) AddToWishlist(ctx context.Context, userID, sessionID string) (*domain.WishlistItem, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	// Check-then-insert; concurrent duplicate adds from the same user are
	// caught by the repository's unique index instead.
	exists, err := s.wishlistRepo.ExistsByProfileAndSession(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("check wishlist: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: session already in wishlist", domain.ErrConflict)
	}

	item := domain.NewWishlistItem(userID, sessionID, sess.ConferenceID, time.Now())
	if err := s.wishlistRepo.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: session already in wishlist", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create wishlist item: %w", err)
	}
	return item, nil
}

func (s *wishlistService) SessionsInWishlist(ctx context.Context, userID, conferenceID string) ([]*domain.Session, error) {
	items, err := s.wishlistRepo.ListByProfileAndConference(ctx, userID, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	if len(items) == 0 {
		return []*domain.Session{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.SessionID)
	}
	sessions, err := s.sessionRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	byID := make(map[string]*domain.Session, len(sessions))
	for _, sess := range sessions {
		byID[sess.ID] = sess
	}

	// Preserve wishlist order; a stale entry whose session is gone is
	// skipped, not an error.
	result := make([]*domain.Session, 0, len(items))
	for _, item := range items {
		if sess, ok := byID[item.SessionID]; ok {
			result = append(result, sess)
		}
	}
	return result, nil
}

func (s *wishlistService) MostWishlistedSession(ctx context.Context) (*domain.Session, error) {
	ids, err := s.wishlistRepo.ListAllSessionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wishlisted sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no sessions have been wishlisted", domain.ErrNotFound)
	}

	winner, err := MostFrequent(ids)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessionRepo.GetByID(ctx, winner)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The winning entry dangles; treat as no result.
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}
