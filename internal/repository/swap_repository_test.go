package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skillswap-api/internal/models"
)

func newSwapRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

var swapTestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSwapRepositoryAcceptGuard(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE swap_requests`)).
		WithArgs("swap-1", swapTestNow, "Tuesdays").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Accept(context.Background(), "swap-1", "Tuesdays", swapTestNow)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryAcceptGuardMiss(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	// Zero rows affected: the record was no longer pending.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE swap_requests`)).
		WithArgs("swap-1", swapTestNow, "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Accept(context.Background(), "swap-1", "", swapTestNow)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryCompleteCommitsCountersWithStatus(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE swap_requests`)).
		WithArgs("swap-1", swapTestNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs("alice", "bob", swapTestNow).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ok, err := repo.Complete(context.Background(), "swap-1", "alice", "bob", swapTestNow)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryCompleteGuardMissRollsBack(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	// If the status guard misses, no counter update runs and the tx rolls
	// back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE swap_requests`)).
		WithArgs("swap-1", swapTestNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ok, err := repo.Complete(context.Background(), "swap-1", "alice", "bob", swapTestNow)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryCancelGuardsOnOpenStatuses(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`status IN ('pending', 'accepted')`)).
		WithArgs("swap-1", swapTestNow, "changed my mind").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Cancel(context.Background(), "swap-1", "changed my mind", swapTestNow)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryDeleteGuardsOnRequesterAndPending(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM swap_requests WHERE id = $1 AND requester_id = $2 AND status = 'pending'`)).
		WithArgs("swap-1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "swap-1", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryRejectExpired(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`WHERE status = 'pending' AND response_by < $1`)).
		WithArgs(swapTestNow).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.RejectExpired(context.Background(), swapTestNow)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryHasPendingDuplicate(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("alice", "bob", "Spanish", "Guitar").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasPendingDuplicate(context.Background(), "alice", "bob", "Spanish", "Guitar")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRepositoryListFiltersByRole(t *testing.T) {
	db, mock, cleanup := newSwapRepoMock(t)
	defer cleanup()
	repo := NewSwapRepository(db)

	rows := sqlmock.NewRows([]string{"id", "requester_id", "recipient_id", "status"}).
		AddRow("swap-1", "alice", "bob", "pending")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM swap_requests WHERE 1=1 AND requester_id = $1 AND status = $2`)).
		WithArgs("alice", models.SwapStatusPending).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM swap_requests WHERE 1=1 AND requester_id = $1 AND status = $2`)).
		WithArgs("alice", models.SwapStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	status := models.SwapStatusPending
	reqs, total, err := repo.List(context.Background(), models.SwapFilter{
		UserID: "alice",
		Role:   "sent",
		Status: &status,
	})
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
