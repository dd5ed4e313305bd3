package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

// SQLSTATE codes this package reacts to.
const (
	uniqueViolation      pq.ErrorCode = "23505"
	serializationFailure pq.ErrorCode = "40001"
	deadlockDetected     pq.ErrorCode = "40P01"
)

// maxTxAttempts bounds retries of a registration transaction on write
// conflicts before surfacing ErrAborted.
const maxTxAttempts = 3

// registrationLedger implements domain.RegistrationLedger. Register and
// Unregister run as serializable transactions spanning the registrations
// table and the conference's seat counter; the conference row is locked for
// the duration so two registrations against the last seat cannot both commit.
type registrationLedger struct {
	DB *sql.DB
}

func NewRegistrationLedger(db *sql.DB) domain.RegistrationLedger {
	return &registrationLedger{
		DB: db,
	}
}

func (l *registrationLedger) Register(ctx context.Context, profileID, conferenceID string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		ok, err := l.register(ctx, profileID, conferenceID)
		if err != nil && retryableTxError(err) {
			lastErr = err
			continue
		}
		return ok, err
	}
	return false, fmt.Errorf("%w: register kept conflicting: %v", domain.ErrAborted, lastErr)
}

func (l *registrationLedger) register(ctx context.Context, profileID, conferenceID string) (bool, error) {
	tx, err := l.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return false, fmt.Errorf("begin registration tx: %w", err)
	}
	defer tx.Rollback()

	conf, err := lockConferenceSeats(ctx, tx, conferenceID)
	if err != nil {
		return false, err
	}

	var registered bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM registrations WHERE profile_id = $1 AND conference_id = $2)`,
		profileID, conferenceID,
	).Scan(&registered)
	if err != nil {
		return false, err
	}
	if registered {
		return false, fmt.Errorf("%w: already registered for this conference", domain.ErrConflict)
	}

	if err := conf.ReserveSeat(); err != nil {
		return false, fmt.Errorf("%w: no seats available", domain.ErrConflict)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO registrations (profile_id, conference_id, created_at) VALUES ($1, $2, $3)`,
		profileID, conferenceID, time.Now(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return false, fmt.Errorf("%w: already registered for this conference", domain.ErrConflict)
		}
		return false, err
	}

	if err := updateConferenceSeats(ctx, tx, conferenceID, conf.SeatsAvailable); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (l *registrationLedger) Unregister(ctx context.Context, profileID, conferenceID string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		ok, err := l.unregister(ctx, profileID, conferenceID)
		if err != nil && retryableTxError(err) {
			lastErr = err
			continue
		}
		return ok, err
	}
	return false, fmt.Errorf("%w: unregister kept conflicting: %v", domain.ErrAborted, lastErr)
}

func (l *registrationLedger) unregister(ctx context.Context, profileID, conferenceID string) (bool, error) {
	tx, err := l.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return false, fmt.Errorf("begin unregistration tx: %w", err)
	}
	defer tx.Rollback()

	conf, err := lockConferenceSeats(ctx, tx, conferenceID)
	if err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM registrations WHERE profile_id = $1 AND conference_id = $2`,
		profileID, conferenceID,
	)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Not registered: a no-op, not an error.
		return false, nil
	}

	conf.ReleaseSeat()
	if err := updateConferenceSeats(ctx, tx, conferenceID, conf.SeatsAvailable); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (l *registrationLedger) ListConferenceIDs(ctx context.Context, profileID string) ([]string, error) {
	rows, err := l.DB.QueryContext(ctx,
		`SELECT conference_id FROM registrations WHERE profile_id = $1 ORDER BY created_at`,
		profileID,
	)
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

// lockConferenceSeats loads the conference's seat counters under FOR UPDATE.
// The domain methods on the returned value decide the mutation; only
// SeatsAvailable is written back.
func lockConferenceSeats(ctx context.Context, tx *sql.Tx, conferenceID string) (*domain.Conference, error) {
	conf := &domain.Conference{ID: conferenceID}
	err := tx.QueryRowContext(ctx,
		`SELECT seats_available, max_attendees FROM conferences WHERE id = $1 FOR UPDATE`,
		conferenceID,
	).Scan(&conf.SeatsAvailable, &conf.MaxAttendees)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return conf, nil
}

func updateConferenceSeats(ctx context.Context, tx *sql.Tx, conferenceID string, seats int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE conferences SET seats_available = $2, updated_at = $3 WHERE id = $1`,
		conferenceID, seats, time.Now(),
	)
	return err
}

func retryableTxError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == serializationFailure || pqErr.Code == deadlockDetected
	}
	return false
}
