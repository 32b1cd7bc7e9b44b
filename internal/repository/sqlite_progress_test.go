package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/taskquest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressRepo_GetCreatesZeroedRecord(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.UserID)
	assert.Equal(t, int64(0), rec.TotalPoints)
	assert.Equal(t, 1, rec.Level)
	assert.Equal(t, int64(0), rec.TasksCompleted)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestProgressRepo_UpsertAndGet(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec, err := repo.Get(ctx, "alice")
	require.NoError(t, err)

	rec.TotalPoints = 250
	rec.Level = 3
	rec.TasksCompleted = 5
	rec.UpdatedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, rec))

	fetched, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(250), fetched.TotalPoints)
	assert.Equal(t, 3, fetched.Level)
	assert.Equal(t, int64(5), fetched.TasksCompleted)
	assert.True(t, rec.UpdatedAt.Equal(fetched.UpdatedAt))
}

func TestProgressRepo_UsersAreIsolated(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	rec.TotalPoints = 75
	require.NoError(t, repo.Upsert(ctx, rec))

	bob, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bob.TotalPoints)
}

func TestProgressRepo_DeleteByUser(t *testing.T) {
	repo := NewSQLiteProgressRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	rec, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	rec.TotalPoints = 10
	require.NoError(t, repo.Upsert(ctx, rec))

	require.NoError(t, repo.DeleteByUser(ctx, "alice"))

	fresh, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), fresh.TotalPoints)
}
