package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

const conferenceColumns = "id, organizer_id, name, city, topics, max_attendees, seats_available, start_date, end_date, month, created_at, updated_at"

type conferenceRepository struct {
	DB *sql.DB
}

func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{
		DB: db,
	}
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	q := `
		INSERT INTO conferences (organizer_id, name, city, topics, max_attendees, seats_available, start_date, end_date, month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, q,
		c.OrganizerID, c.Name, c.City, pq.Array(c.Topics),
		c.MaxAttendees, c.SeatsAvailable, c.StartDate, c.EndDate, c.Month,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *conferenceRepository) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	q := `SELECT ` + conferenceColumns + ` FROM conferences WHERE id = $1`
	c, err := scanConference(r.DB.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Conference, error) {
	q := `SELECT ` + conferenceColumns + ` FROM conferences WHERE organizer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, organizerID)
}

func (r *conferenceRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Conference, error) {
	if len(ids) == 0 {
		return []*domain.Conference{}, nil
	}
	q := `SELECT ` + conferenceColumns + ` FROM conferences WHERE id = ANY($1) ORDER BY name`
	return r.list(ctx, q, pq.Array(ids))
}

func (r *conferenceRepository) ListNearlySoldOut(ctx context.Context, maxSeats int) ([]*domain.Conference, error) {
	q := `SELECT ` + conferenceColumns + ` FROM conferences WHERE seats_available > 0 AND seats_available <= $1 ORDER BY name`
	return r.list(ctx, q, maxSeats)
}

// Query renders a compiled filter plan into a parameterized SELECT. Field
// names come from the compiler's closed enum, never from raw client input.
func (r *conferenceRepository) Query(ctx context.Context, plan *query.Plan) ([]*domain.Conference, error) {
	var (
		where []string
		args  []interface{}
	)
	for _, cond := range plan.Conditions {
		n := len(args) + 1
		switch {
		case cond.Field == query.FieldTopics && cond.Operator == query.OpEQ:
			where = append(where, fmt.Sprintf("$%d = ANY(topics)", n))
		case cond.Field == query.FieldTopics && cond.Operator == query.OpNE:
			where = append(where, fmt.Sprintf("NOT ($%d = ANY(topics))", n))
		default:
			where = append(where, fmt.Sprintf("%s %s $%d", cond.Field, cond.Operator, n))
		}
		args = append(args, cond.Value)
	}

	q := `SELECT ` + conferenceColumns + ` FROM conferences`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY ` + strings.Join(plan.OrderBy, ", ")

	return r.list(ctx, q, args...)
}

func (r *conferenceRepository) Update(ctx context.Context, c *domain.Conference) error {
	q := `
		UPDATE conferences
		SET name = $2, city = $3, topics = $4, max_attendees = $5, seats_available = $6,
		    start_date = $7, end_date = $8, month = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, q,
		c.ID, c.Name, c.City, pq.Array(c.Topics),
		c.MaxAttendees, c.SeatsAvailable, c.StartDate, c.EndDate, c.Month, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *conferenceRepository) list(ctx context.Context, q string, args ...interface{}) ([]*domain.Conference, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	confs := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		confs = append(confs, c)
	}
	return confs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConference(row rowScanner) (*domain.Conference, error) {
	c := &domain.Conference{}
	var startNull, endNull sql.NullTime
	err := row.Scan(
		&c.ID, &c.OrganizerID, &c.Name, &c.City, pq.Array(&c.Topics),
		&c.MaxAttendees, &c.SeatsAvailable, &startNull, &endNull, &c.Month,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startNull.Valid {
		c.StartDate = &startNull.Time
	}
	if endNull.Valid {
		c.EndDate = &endNull.Time
	}
	return c, nil
}
