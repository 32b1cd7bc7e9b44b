package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertProgress = `INSERT INTO progress (user_id, total_points, level, tasks_completed, updated_at)
	VALUES (?, ?, 1, 1, '2026-01-01T00:00:00.000000000Z')`

func newUoW(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	conn, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, db.NewSQLiteUnitOfWork(conn)
}

func progressRows(t *testing.T, conn *sql.DB, userID string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM progress WHERE user_id = ?`, userID).Scan(&n))
	return n
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	conn, uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, insertProgress, "alice", 25)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, progressRows(t, conn, "alice"))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	conn, uow := newUoW(t)
	boom := errors.New("handler failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertProgress, "alice", 25); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, progressRows(t, conn, "alice"))
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	conn, uow := newUoW(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, insertProgress, "alice", 25)
			panic("boom")
		})
	})
	assert.Equal(t, 0, progressRows(t, conn, "alice"))
}

func TestWithinTx_ConstraintViolationRollsBackEarlierWrites(t *testing.T) {
	conn, uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertProgress, "alice", 25); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertProgress, "bob", -5)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, 0, progressRows(t, conn, "alice"))
	assert.Equal(t, 0, progressRows(t, conn, "bob"))
}

func TestWithinTx_CanceledContext(t *testing.T) {
	_, uow := newUoW(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := uow.WithinTx(ctx, func(context.Context, db.DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
