package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// TestConcurrentAccess_MetricIncrementsAreNotLost races many writers on the
// same (user, category) key and checks every increment lands.
func TestConcurrentAccess_MetricIncrementsAreNotLost(t *testing.T) {
	database := newConcurrentTestDB(t)
	store := NewSQLiteRecordStore(database)
	ctx := context.Background()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := store.IncrementAggregateMetric(ctx, "alice", domain.CategoryResearch, 50); err != nil {
					t.Errorf("worker %d: increment %d: %v", worker, i, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	metrics, err := store.ReadAggregateMetrics(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, int64(workers*perWorker), metrics[0].CallCount)
	assert.Equal(t, int64(workers*perWorker*50), metrics[0].PointsGenerated)
}

// TestConcurrentAccess_UsersAreIndependent writes progress for distinct users
// in parallel and checks no user sees another's record.
func TestConcurrentAccess_UsersAreIndependent(t *testing.T) {
	database := newConcurrentTestDB(t)
	store := NewSQLiteRecordStore(database)
	ctx := context.Background()

	users := []string{"u1", "u2", "u3", "u4", "u5"}
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(userID string, points int64) {
			defer wg.Done()
			rec, err := store.ReadProgress(ctx, userID)
			if err != nil {
				t.Errorf("read %s: %v", userID, err)
				return
			}
			rec.TotalPoints = points
			rec.TasksCompleted = 1
			if err := store.WriteProgress(ctx, rec); err != nil {
				t.Errorf("write %s: %v", userID, err)
			}
		}(u, int64((i+1)*10))
	}
	wg.Wait()

	for i, u := range users {
		rec, err := store.ReadProgress(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, int64((i+1)*10), rec.TotalPoints, "user %s", u)
	}
}
