package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepo_AppendAndList(t *testing.T) {
	repo := NewSQLiteTaskHistoryRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for seq := int64(1); seq <= 3; seq++ {
		written, err := repo.Append(ctx, testutil.NewTestHistoryEntry("alice", domain.CategoryResearch, seq, testutil.WithPoints(50)))
		require.NoError(t, err)
		assert.True(t, written)
	}

	entries, err := repo.ListByUser(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].SequenceNumber, "newest first")
	assert.Equal(t, int64(1), entries[2].SequenceNumber)
	assert.Equal(t, domain.CategoryResearch, entries[0].Category)
	assert.Equal(t, int64(50), entries[0].PointsAwarded)
}

func TestHistoryRepo_AppendIsIdempotentPerSequence(t *testing.T) {
	repo := NewSQLiteTaskHistoryRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	written, err := repo.Append(ctx, testutil.NewTestHistoryEntry("alice", domain.CategoryEmail, 1))
	require.NoError(t, err)
	assert.True(t, written)

	// A retried append for the same sequence is dropped, not duplicated.
	written, err = repo.Append(ctx, testutil.NewTestHistoryEntry("alice", domain.CategoryEmail, 1))
	require.NoError(t, err)
	assert.False(t, written)

	entries, err := repo.ListByUser(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHistoryRepo_AppendGeneratesID(t *testing.T) {
	repo := NewSQLiteTaskHistoryRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	e := testutil.NewTestHistoryEntry("alice", domain.CategoryEmail, 1)
	e.ID = ""
	_, err := repo.Append(ctx, e)
	require.NoError(t, err)

	entries, err := repo.ListByUser(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
}

func TestHistoryRepo_ListRespectsLimit(t *testing.T) {
	repo := NewSQLiteTaskHistoryRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for seq := int64(1); seq <= 5; seq++ {
		_, err := repo.Append(ctx, testutil.NewTestHistoryEntry("alice", domain.CategoryEmail, seq))
		require.NoError(t, err)
	}

	entries, err := repo.ListByUser(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(5), entries[0].SequenceNumber)
	assert.Equal(t, int64(4), entries[1].SequenceNumber)
}

func TestHistoryRepo_ListEmpty(t *testing.T) {
	repo := NewSQLiteTaskHistoryRepo(testutil.NewTestDB(t))

	entries, err := repo.ListByUser(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
