package lock

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var holdCols = []string{"id", "slot_id", "holder_id", "expires_at", "metadata", "created_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func TestCreateHold(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := &Hold{ID: "h-1", SlotID: "slot-1", HolderID: "playo", ExpiresAt: now.Add(5 * time.Minute), Metadata: Metadata{"cart": "42"}, CreatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO holds (id, slot_id, holder_id, expires_at, metadata, created_at)")).
		WithArgs("h-1", "slot-1", "playo", h.ExpiresAt, sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateHold(context.Background(), h))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHold(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM holds WHERE id = $1")).
		WithArgs("h-1").
		WillReturnRows(sqlmock.NewRows(holdCols).
			AddRow("h-1", "slot-1", "playo", now.Add(time.Minute), []byte(`{"cart":"42"}`), now))

	h, err := repo.GetHold(context.Background(), "h-1")
	require.NoError(t, err)
	assert.Equal(t, "42", h.Metadata["cart"])

	mock.ExpectQuery(regexp.QuoteMeta("FROM holds WHERE slot_id = $1")).
		WithArgs("slot-9").
		WillReturnRows(sqlmock.NewRows(holdCols))

	_, err = repo.GetHoldBySlot(context.Background(), "slot-9")
	assert.ErrorIs(t, err, ErrHoldNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteHold(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM holds WHERE id = $1 RETURNING")).
		WithArgs("h-1").
		WillReturnRows(sqlmock.NewRows(holdCols).
			AddRow("h-1", "slot-1", "playo", now, []byte(`{}`), now))

	h, err := repo.DeleteHold(context.Background(), "h-1")
	require.NoError(t, err)
	assert.Equal(t, "slot-1", h.SlotID)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM holds WHERE id = $1 RETURNING")).
		WithArgs("h-1").
		WillReturnRows(sqlmock.NewRows(holdCols))

	_, err = repo.DeleteHold(context.Background(), "h-1")
	assert.ErrorIs(t, err, ErrHoldNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteHoldsBySlot(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM holds WHERE slot_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteHoldsBySlot(context.Background(), []string{"slot-1", "slot-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeleteHoldsBySlot(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrphanedHolds(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM holds h WHERE h.expires_at <= $1 AND NOT EXISTS")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteOrphanedHolds(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
