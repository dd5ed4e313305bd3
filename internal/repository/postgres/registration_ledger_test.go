package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"conferencecentral/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func expectSeatLock(mock sqlmock.Sqlmock, conferenceID string, seats, max int) {
	mock.ExpectQuery(`SELECT seats_available, max_attendees FROM conferences WHERE id = \$1 FOR UPDATE`).
		WithArgs(conferenceID).
		WillReturnRows(sqlmock.NewRows([]string{"seats_available", "max_attendees"}).AddRow(seats, max))
}

func expectDuplicateCheck(mock sqlmock.Sqlmock, profileID, conferenceID string, registered bool) {
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM registrations WHERE profile_id = \$1 AND conference_id = \$2\)`).
		WithArgs(profileID, conferenceID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(registered))
}

func TestRegistrationLedger_Register(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 2, 10)
	expectDuplicateCheck(mock, "user-1", "conf-1", false)
	mock.ExpectExec(`INSERT INTO registrations \(profile_id, conference_id, created_at\)`).
		WithArgs("user-1", "conf-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE conferences SET seats_available = \$2`).
		WithArgs("conf-1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ledger := NewRegistrationLedger(db)
	ok, err := ledger.Register(ctx, "user-1", "conf-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationLedger_RegisterSoldOut(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 0, 10)
	expectDuplicateCheck(mock, "user-1", "conf-1", false)
	mock.ExpectRollback()

	ledger := NewRegistrationLedger(db)
	_, err = ledger.Register(ctx, "user-1", "conf-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationLedger_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 5, 10)
	expectDuplicateCheck(mock, "user-1", "conf-1", true)
	mock.ExpectRollback()

	ledger := NewRegistrationLedger(db)
	_, err = ledger.Register(ctx, "user-1", "conf-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A racing insert can slip past the existence check; the unique index turns
// it into the same conflict error.
func TestRegistrationLedger_RegisterUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 5, 10)
	expectDuplicateCheck(mock, "user-1", "conf-1", false)
	mock.ExpectExec(`INSERT INTO registrations`).
		WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	ledger := NewRegistrationLedger(db)
	_, err = ledger.Register(ctx, "user-1", "conf-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationLedger_RegisterUnknownConference(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT seats_available, max_attendees FROM conferences`).
		WithArgs("conf-missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	ledger := NewRegistrationLedger(db)
	_, err = ledger.Register(ctx, "user-1", "conf-missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A serialization failure rolls the attempt back and the whole transaction
// runs again; the caller only sees the successful second attempt.
func TestRegistrationLedger_RegisterRetriesSerializationFailure(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// First attempt aborts mid-transaction.
	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 2, 10)
	expectDuplicateCheck(mock, "user-1", "conf-1", false)
	mock.ExpectExec(`INSERT INTO registrations`).
		WillReturnError(&pq.Error{Code: serializationFailure})
	mock.ExpectRollback()

	// Second attempt commits.
	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 2, 10)
	expectDuplicateCheck(mock, "user-1", "conf-1", false)
	mock.ExpectExec(`INSERT INTO registrations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE conferences SET seats_available = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ledger := NewRegistrationLedger(db)
	ok, err := ledger.Register(ctx, "user-1", "conf-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationLedger_RegisterAbortsAfterRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < maxTxAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT seats_available, max_attendees FROM conferences`).
			WillReturnError(&pq.Error{Code: deadlockDetected})
		mock.ExpectRollback()
	}

	ledger := NewRegistrationLedger(db)
	_, err = ledger.Register(ctx, "user-1", "conf-1")
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrAborted))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationLedger_Unregister(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 2, 10)
	mock.ExpectExec(`DELETE FROM registrations WHERE profile_id = \$1 AND conference_id = \$2`).
		WithArgs("user-1", "conf-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE conferences SET seats_available = \$2`).
		WithArgs("conf-1", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ledger := NewRegistrationLedger(db)
	ok, err := ledger.Unregister(ctx, "user-1", "conf-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

// The freed seat never pushes the counter past max_attendees.
func TestRegistrationLedger_UnregisterClampsAtCapacity(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 10, 10)
	mock.ExpectExec(`DELETE FROM registrations`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE conferences SET seats_available = \$2`).
		WithArgs("conf-1", 10, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ledger := NewRegistrationLedger(db)
	ok, err := ledger.Unregister(ctx, "user-1", "conf-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationLedger_UnregisterNotRegistered(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectSeatLock(mock, "conf-1", 2, 10)
	mock.ExpectExec(`DELETE FROM registrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ledger := NewRegistrationLedger(db)
	ok, err := ledger.Unregister(ctx, "user-1", "conf-1")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationLedger_ListConferenceIDs(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT conference_id FROM registrations WHERE profile_id = \$1 ORDER BY created_at`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"conference_id"}).AddRow("conf-1").AddRow("conf-2"))

	ledger := NewRegistrationLedger(db)
	ids, err := ledger.ListConferenceIDs(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, []string{"conf-1", "conf-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
