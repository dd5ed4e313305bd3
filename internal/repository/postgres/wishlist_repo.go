package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type wishlistRepository struct {
	DB *sql.DB
}

func NewWishlistRepository(db *sql.DB) domain.WishlistRepository {
	return &wishlistRepository{
		DB: db,
	}
}

// Create relies on the unique (profile_id, session_id) index to backstop the
// service's check-then-insert against racing duplicate adds.
func (r *wishlistRepository) Create(ctx context.Context, item *domain.WishlistItem) error {
	q := `
		INSERT INTO wishlist_items (profile_id, session_id, conference_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, q, item.ProfileID, item.SessionID, item.ConferenceID, item.CreatedAt).
		Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *wishlistRepository) ExistsByProfileAndSession(ctx context.Context, profileID, sessionID string) (bool, error) {
	q := `SELECT EXISTS(SELECT 1 FROM wishlist_items WHERE profile_id = $1 AND session_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, q, profileID, sessionID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *wishlistRepository) ListByProfileAndConference(ctx context.Context, profileID, conferenceID string) ([]*domain.WishlistItem, error) {
	q := `
		SELECT id, profile_id, session_id, conference_id, created_at
		FROM wishlist_items
		WHERE profile_id = $1 AND conference_id = $2
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, q, profileID, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.WishlistItem, 0)
	for rows.Next() {
		item := &domain.WishlistItem{}
		if err := rows.Scan(&item.ID, &item.ProfileID, &item.SessionID, &item.ConferenceID, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *wishlistRepository) ListAllSessionIDs(ctx context.Context) ([]string, error) {
	q := `SELECT session_id FROM wishlist_items`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
