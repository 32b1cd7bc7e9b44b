package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricRepo_IncrementCreatesThenAccumulates(t *testing.T) {
	repo := NewSQLiteAgentMetricRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Increment(ctx, "alice", domain.CategoryResearch, 50))
	require.NoError(t, repo.Increment(ctx, "alice", domain.CategoryResearch, 50))

	metrics, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, domain.CategoryResearch, metrics[0].Category)
	assert.Equal(t, int64(2), metrics[0].CallCount)
	assert.Equal(t, int64(100), metrics[0].PointsGenerated)
	assert.False(t, metrics[0].LastUsed.IsZero())
}

func TestMetricRepo_ListSortedByCallCountThenCategory(t *testing.T) {
	repo := NewSQLiteAgentMetricRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	increments := []struct {
		category domain.Category
		times    int
	}{
		{domain.CategoryEmail, 2},
		{domain.CategoryResearch, 4},
		{domain.CategorySlack, 2},
		{domain.CategoryCalendar, 1},
	}
	for _, inc := range increments {
		for i := 0; i < inc.times; i++ {
			require.NoError(t, repo.Increment(ctx, "alice", inc.category, 10))
		}
	}

	metrics, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	got := make([]domain.Category, 0, len(metrics))
	for _, m := range metrics {
		got = append(got, m.Category)
	}
	assert.Equal(t, []domain.Category{
		domain.CategoryResearch,
		domain.CategoryEmail,
		domain.CategorySlack,
		domain.CategoryCalendar,
	}, got)
}

func TestMetricRepo_RejectsNegativeDelta(t *testing.T) {
	repo := NewSQLiteAgentMetricRepo(testutil.NewTestDB(t))

	err := repo.Increment(context.Background(), "alice", domain.CategoryEmail, -5)
	assert.Error(t, err)
}

func TestMetricRepo_UsersAreIsolated(t *testing.T) {
	repo := NewSQLiteAgentMetricRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Increment(ctx, "alice", domain.CategoryEmail, 25))

	metrics, err := repo.ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, metrics)
}
