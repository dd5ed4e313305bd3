package domain

import (
	"context"
	"time"
)

// SessionType tags a conference session.
type SessionType string

const (
	SessionTypeUnspecified SessionType = "UNSPECIFIED"
	SessionTypeLecture     SessionType = "LECTURE"
	SessionTypeKeynote     SessionType = "KEYNOTE"
	SessionTypeWorkshop    SessionType = "WORKSHOP"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeUnspecified, SessionTypeLecture, SessionTypeKeynote, SessionTypeWorkshop:
		return true
	}
	return false
}

// Session represents a talk belonging to exactly one conference.
type Session struct {
	ID           string      `json:"id"`
	ConferenceID string      `json:"conference_id"`
	Name         string      `json:"name"`
	// Speakers is an ordered list; the same speaker may appear across sessions.
	Speakers  []string    `json:"speakers"`
	Type      SessionType `json:"session_type"`
	Date      *time.Time  `json:"date,omitempty"`
	// StartTime is a time of day; the date part is not meaningful.
	StartTime *time.Time `json:"start_time,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSession returns a new Session with the given fields. ID is typically set by the repository on create.
func NewSession(conferenceID, name string, speakers []string, sessionType SessionType, date, startTime *time.Time, createdAt time.Time) *Session {
	if sessionType == "" {
		sessionType = SessionTypeUnspecified
	}
	return &Session{
		ConferenceID: conferenceID,
		Name:         name,
		Speakers:     speakers,
		Type:         sessionType,
		Date:         date,
		StartTime:    startTime,
		CreatedAt:    createdAt,
	}
}

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	Create(ctx context.Context, sess *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	ListByConferenceID(ctx context.Context, conferenceID string) ([]*Session, error)
	ListByConferenceIDAndType(ctx context.Context, conferenceID string, sessionType SessionType) ([]*Session, error)
	// ListBySpeaker returns sessions across all conferences featuring the speaker.
	ListBySpeaker(ctx context.Context, speaker string) ([]*Session, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Session, error)
	ListAll(ctx context.Context) ([]*Session, error)
}

// SessionForm is the input for creating a session.
type SessionForm struct {
	Name      string      `json:"name"`
	Speakers  []string    `json:"speakers"`
	Type      SessionType `json:"session_type"`
	Date      *time.Time  `json:"date,omitempty"`
	StartTime *time.Time  `json:"start_time,omitempty"`
}

// SessionService defines session operations. Sessions are created by the
// owning conference's organizer.
type SessionService interface {
	CreateSession(ctx context.Context, userID, conferenceID string, form *SessionForm) (*Session, error)
	ListConferenceSessions(ctx context.Context, conferenceID string) ([]*Session, error)
	ListConferenceSessionsByType(ctx context.Context, conferenceID string, sessionType SessionType) ([]*Session, error)
	ListSessionsBySpeaker(ctx context.Context, speaker string) ([]*Session, error)
}
