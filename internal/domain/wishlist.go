package domain

import (
	"context"
	"time"
)

// WishlistItem bookmarks a session for a profile. The session's parent
// conference id is denormalized so wishlists can be filtered per conference
// without resolving every session.
type WishlistItem struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	SessionID    string    `json:"session_id"`
	ConferenceID string    `json:"conference_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewWishlistItem returns a new WishlistItem. ID is typically set by the repository on create.
func NewWishlistItem(profileID, sessionID, conferenceID string, createdAt time.Time) *WishlistItem {
	return &WishlistItem{
		ProfileID:    profileID,
		SessionID:    sessionID,
		ConferenceID: conferenceID,
		CreatedAt:    createdAt,
	}
}

// WishlistRepository defines storage operations for wishlist items.
type WishlistRepository interface {
	// Create stores the item. Returns ErrConflict when the (profile, session)
	// pair already exists.
	Create(ctx context.Context, item *WishlistItem) error
	ExistsByProfileAndSession(ctx context.Context, profileID, sessionID string) (bool, error)
	ListByProfileAndConference(ctx context.Context, profileID, conferenceID string) ([]*WishlistItem, error)
	// ListAllSessionIDs returns the session id of every wishlist item across
	// all users, with repetitions.
	ListAllSessionIDs(ctx context.Context) ([]string, error)
}

// WishlistService defines per-user session bookmarking.
type WishlistService interface {
	// AddToWishlist bookmarks the session for the user. Returns ErrNotFound
	// if the session does not exist and ErrConflict if already bookmarked.
	AddToWishlist(ctx context.Context, userID, sessionID string) (*WishlistItem, error)
	// SessionsInWishlist returns the user's wishlisted sessions within the
	// conference. Dangling entries for deleted sessions are skipped.
	SessionsInWishlist(ctx context.Context, userID, conferenceID string) ([]*Session, error)
	// MostWishlistedSession returns the session bookmarked most often across
	// all users. Returns ErrNotFound when no wishlist entries exist.
	MostWishlistedSession(ctx context.Context) (*Session, error)
}
