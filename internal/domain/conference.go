package domain

import (
	"context"
	"time"

	"conferencecentral/internal/query"
)

// Conference represents a conference created by an organizer profile.
type Conference struct {
	ID             string     `json:"id"`
	OrganizerID    string     `json:"organizer_id"`
	Name           string     `json:"name"`
	City           string     `json:"city"`
	Topics         []string   `json:"topics"`
	MaxAttendees   int        `json:"max_attendees"`
	SeatsAvailable int        `json:"seats_available"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	// Month is derived from StartDate on create/update; 0 when no start date is set.
	Month     int       `json:"month"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConference returns a new Conference with the given fields. ID is typically set by the repository on create.
func NewConference(organizerID, name, city string, topics []string, maxAttendees int, startDate, endDate *time.Time, createdAt time.Time) *Conference {
	c := &Conference{
		OrganizerID:    organizerID,
		Name:           name,
		City:           city,
		Topics:         topics,
		MaxAttendees:   maxAttendees,
		SeatsAvailable: maxAttendees,
		StartDate:      startDate,
		EndDate:        endDate,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	if startDate != nil {
		c.Month = int(startDate.Month())
	}
	return c
}

// ReserveSeat takes one seat. Returns ErrConflict when the conference is sold out.
func (c *Conference) ReserveSeat() error {
	if c.SeatsAvailable <= 0 {
		return ErrConflict
	}
	c.SeatsAvailable--
	return nil
}

// ReleaseSeat returns one seat, never exceeding MaxAttendees.
func (c *Conference) ReleaseSeat() {
	if c.SeatsAvailable < c.MaxAttendees {
		c.SeatsAvailable++
	}
}

// SoldOut reports whether no seats remain.
func (c *Conference) SoldOut() bool {
	return c.SeatsAvailable <= 0
}

// ConferenceRepository defines the interface for conference storage.
type ConferenceRepository interface {
	Create(ctx context.Context, conf *Conference) error
	GetByID(ctx context.Context, id string) (*Conference, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Conference, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Conference, error)
	// ListNearlySoldOut returns conferences with 0 < seats_available <= maxSeats.
	ListNearlySoldOut(ctx context.Context, maxSeats int) ([]*Conference, error)
	// Query executes a compiled filter plan against the conference collection.
	Query(ctx context.Context, plan *query.Plan) ([]*Conference, error)
	Update(ctx context.Context, conf *Conference) error
}

// ConferenceForm is the input for creating a conference.
type ConferenceForm struct {
	Name         string     `json:"name"`
	City         string     `json:"city"`
	Topics       []string   `json:"topics"`
	MaxAttendees int        `json:"max_attendees"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// ConferenceUpdate carries the fields of a partial conference update; nil means "leave unchanged".
type ConferenceUpdate struct {
	Name         *string    `json:"name,omitempty"`
	City         *string    `json:"city,omitempty"`
	Topics       []string   `json:"topics,omitempty"`
	MaxAttendees *int       `json:"max_attendees,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// ConferenceWithOrganizer bundles a conference with its organizer's display name.
type ConferenceWithOrganizer struct {
	Conference    *Conference `json:"conference"`
	OrganizerName string      `json:"organizer_name"`
}

// ConferenceService defines organizer-facing conference operations.
type ConferenceService interface {
	CreateConference(ctx context.Context, organizerID string, form *ConferenceForm) (*Conference, error)
	UpdateConference(ctx context.Context, userID, conferenceID string, patch *ConferenceUpdate) (*Conference, error)
	GetConference(ctx context.Context, conferenceID string) (*ConferenceWithOrganizer, error)
	ListConferencesCreatedBy(ctx context.Context, userID string) ([]*Conference, error)
	// QueryConferences compiles the raw filters and returns matching conferences
	// with organizer display names resolved.
	QueryConferences(ctx context.Context, filters []query.Filter) ([]*ConferenceWithOrganizer, error)
}
