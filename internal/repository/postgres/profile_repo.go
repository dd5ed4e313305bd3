package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{
		DB: db,
	}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	q := `
		INSERT INTO profiles (id, display_name, main_email, tee_shirt_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, q, p.ID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	q := `
		SELECT id, display_name, main_email, tee_shirt_size, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	p := &domain.Profile{}
	var size string
	err := r.DB.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.DisplayName, &p.MainEmail, &size, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.TeeShirtSize = domain.TeeShirtSize(size)
	return p, nil
}

func (r *profileRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return []*domain.Profile{}, nil
	}
	q := `
		SELECT id, display_name, main_email, tee_shirt_size, created_at, updated_at
		FROM profiles
		WHERE id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*domain.Profile, 0, len(ids))
	for rows.Next() {
		p := &domain.Profile{}
		var size string
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.MainEmail, &size, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.TeeShirtSize = domain.TeeShirtSize(size)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	q := `
		UPDATE profiles
		SET display_name = $2, main_email = $3, tee_shirt_size = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, q, p.ID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize), p.UpdatedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
