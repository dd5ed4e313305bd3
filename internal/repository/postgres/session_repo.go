package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const sessionColumns = "id, conference_id, name, speakers, session_type, date, start_time, created_at"

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	q := `
		INSERT INTO sessions (conference_id, name, speakers, session_type, date, start_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, q,
		s.ConferenceID, s.Name, pq.Array(s.Speakers), string(s.Type), s.Date, s.StartTime, s.CreatedAt,
	).Scan(&s.ID)
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	s, err := scanSession(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *sessionRepository) ListByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE conference_id = $1 ORDER BY date, start_time, name`
	return r.list(ctx, q, conferenceID)
}

func (r *sessionRepository) ListByConferenceIDAndType(ctx context.Context, conferenceID string, sessionType domain.SessionType) ([]*domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE conference_id = $1 AND session_type = $2 ORDER BY date, start_time, name`
	return r.list(ctx, q, conferenceID, string(sessionType))
}

func (r *sessionRepository) ListBySpeaker(ctx context.Context, speaker string) ([]*domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE $1 = ANY(speakers) ORDER BY date, start_time, name`
	return r.list(ctx, q, speaker)
}

func (r *sessionRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Session, error) {
	if len(ids) == 0 {
		return []*domain.Session{}, nil
	}
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ANY($1)`
	return r.list(ctx, q, pq.Array(ids))
}

func (r *sessionRepository) ListAll(ctx context.Context) ([]*domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions`
	return r.list(ctx, q)
}

func (r *sessionRepository) list(ctx context.Context, q string, args ...interface{}) ([]*domain.Session, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*domain.Session, error) {
	s := &domain.Session{}
	var sessionType string
	var dateNull, startNull sql.NullTime
	err := row.Scan(
		&s.ID, &s.ConferenceID, &s.Name, pq.Array(&s.Speakers),
		&sessionType, &dateNull, &startNull, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Type = domain.SessionType(sessionType)
	if dateNull.Valid {
		s.Date = &dateNull.Time
	}
	if startNull.Valid {
		s.StartTime = &startNull.Time
	}
	return s, nil
}
