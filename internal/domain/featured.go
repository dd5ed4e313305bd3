package domain

import "context"

// FeaturedService maintains cached derived facts about speakers.
type FeaturedService interface {
	// RefreshFeaturedSpeaker recomputes the most frequent speaker across the
	// conference's sessions and overwrites the cached entry. A speaker
	// appearing only once is never featured; the entry is cleared instead.
	// Idempotent; safe to deliver more than once.
	RefreshFeaturedSpeaker(ctx context.Context, conferenceID string) error
	// FeaturedSpeaker returns the cached featured-speaker message. ok is
	// false when no refresh has published one yet; that is not an error.
	FeaturedSpeaker(conferenceID string) (string, bool)
	// BusiestSpeaker returns the speaker appearing at the most sessions
	// across all conferences. Returns ErrNotFound when no sessions exist.
	BusiestSpeaker(ctx context.Context) (string, error)
}

// AnnouncementService maintains the cached nearly-sold-out announcement.
type AnnouncementService interface {
	// Refresh recomputes the announcement from conferences that are nearly
	// sold out and overwrites or clears the cache entry. Returns the new
	// announcement ("" when cleared).
	Refresh(ctx context.Context) (string, error)
	// Current returns the cached announcement; ok is false on a miss.
	Current() (string, bool)
}
