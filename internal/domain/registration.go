package domain

import (
	"context"
	"time"
)

// Registration records that a profile holds one seat at a conference.
// At most one registration exists per (profile, conference) pair.
type Registration struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	ConferenceID string    `json:"conference_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegistrationLedger is the transactional seat-booking port. Register and
// Unregister each run as one atomic unit spanning the registration row and
// the conference's seat counter; concurrent registrations against the same
// conference must never oversell it.
type RegistrationLedger interface {
	// Register books one seat. Returns ErrNotFound if the conference does not
	// exist, ErrConflict if the user is already registered or the conference
	// is sold out, and ErrAborted when the transaction kept conflicting after
	// retries. On success the boolean is true.
	Register(ctx context.Context, profileID, conferenceID string) (bool, error)
	// Unregister releases the user's seat. Returns (false, nil) when the user
	// was not registered; ErrNotFound if the conference does not exist.
	Unregister(ctx context.Context, profileID, conferenceID string) (bool, error)
	// ListConferenceIDs returns the ids of conferences the profile attends.
	ListConferenceIDs(ctx context.Context, profileID string) ([]string, error)
}

// AttendeeService defines attendee-facing registration operations.
type AttendeeService interface {
	RegisterForConference(ctx context.Context, userID, conferenceID string) (bool, error)
	UnregisterFromConference(ctx context.Context, userID, conferenceID string) (bool, error)
	ConferencesToAttend(ctx context.Context, userID string) ([]*ConferenceWithOrganizer, error)
}
