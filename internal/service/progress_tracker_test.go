package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/leveling"
	"github.com/alexanderramin/taskquest/internal/repository"
	"github.com/alexanderramin/taskquest/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(store ProgressStore, opts ...Option) *ProgressTracker {
	return NewProgressTracker(store, DefaultRewardTable(), leveling.DefaultCurve(), opts...)
}

func TestDefaultStats(t *testing.T) {
	want := Stats{
		Level:              1,
		PointsForNextLevel: 100,
		PointsToNextLevel:  100,
	}
	if diff := cmp.Diff(want, DefaultStats()); diff != "" {
		t.Errorf("DefaultStats mismatch (-want +got):\n%s", diff)
	}
}

func TestProgressTracker_FreshUser(t *testing.T) {
	tracker := newTracker(testutil.NewFakeRecordStore())
	assert.Equal(t, DefaultStats(), tracker.CurrentStats(context.Background(), "u1"))
}

func TestProgressTracker_AwardPoints_TwiceResearch(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeRecordStore()
	tracker := newTracker(store)

	first := tracker.AwardPoints(ctx, "u1", domain.CategoryResearch)
	assert.Equal(t, int64(50), first.PointsAwarded)
	assert.Equal(t, int64(50), first.TotalPoints)
	assert.Equal(t, 50, first.ProgressPercent)

	second := tracker.AwardPoints(ctx, "u1", domain.CategoryResearch)
	want := Stats{
		Level:              2,
		TotalPoints:        100,
		TasksCompleted:     2,
		PointsIntoLevel:    0,
		PointsForNextLevel: 150,
		PointsToNextLevel:  150,
		ProgressPercent:    0,
		PointsAwarded:      50,
	}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	rec, err := store.ReadProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.TotalPoints)
	assert.Equal(t, 2, rec.Level)
	assert.Equal(t, int64(2), rec.TasksCompleted)

	history := tracker.History(ctx, "u1", 10)
	require.Len(t, history, 2)
	assert.Equal(t, int64(2), history[0].SequenceNumber)
	assert.Equal(t, int64(1), history[1].SequenceNumber)
	for _, h := range history {
		assert.Equal(t, domain.CategoryResearch, h.Category)
		assert.Equal(t, int64(50), h.PointsAwarded)
		assert.NotEmpty(t, h.ID)
	}
}

func TestProgressTracker_AwardPoints_WritesBeforeAppending(t *testing.T) {
	store := testutil.NewFakeRecordStore()
	tracker := newTracker(store)

	tracker.AwardPoints(context.Background(), "u1", domain.CategoryEmail)

	assert.Equal(t, []string{"ReadProgress", "WriteProgress", "AppendHistory"}, store.Calls)
}

func TestProgressTracker_AwardPoints_AliasedCategoryKeepsItsName(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeRecordStore()
	tracker := newTracker(store)

	stats := tracker.AwardPoints(ctx, "u1", domain.CategoryCalendar)
	assert.Equal(t, int64(100), stats.PointsAwarded)

	history := tracker.History(ctx, "u1", 0)
	require.Len(t, history, 1)
	assert.Equal(t, domain.CategoryCalendar, history[0].Category)
}

func TestProgressTracker_CurrentStats_Idempotent(t *testing.T) {
	ctx := context.Background()
	tracker := newTracker(testutil.NewFakeRecordStore())
	tracker.AwardPoints(ctx, "u1", domain.CategoryReport)

	first := tracker.CurrentStats(ctx, "u1")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, tracker.CurrentStats(ctx, "u1"))
	}
	assert.Equal(t, int64(0), first.PointsAwarded)
	assert.Equal(t, 75, first.ProgressPercent)
}

func TestProgressTracker_DegradedWithoutStore(t *testing.T) {
	ctx := context.Background()
	tracker := newTracker(nil)

	assert.True(t, tracker.Degraded())
	assert.Equal(t, DefaultStats(), tracker.AwardPoints(ctx, "u1", domain.CategoryResearch))
	assert.Equal(t, DefaultStats(), tracker.CurrentStats(ctx, "u1"))
	assert.Empty(t, tracker.History(ctx, "u1", 10))
}

func TestProgressTracker_ReadFailureDegrades(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	store := testutil.NewFakeRecordStore().FailOn("ReadProgress")
	tracker := newTracker(store, WithMetrics(metrics))

	assert.Equal(t, DefaultStats(), tracker.CurrentStats(ctx, "u1"))
	assert.Equal(t, DefaultStats(), tracker.AwardPoints(ctx, "u1", domain.CategoryEmail))

	assert.Equal(t, 0, store.CallsTo("WriteProgress"))
	assert.Equal(t, float64(2), promtest.ToFloat64(metrics.StoreDegraded.WithLabelValues("read_progress")))
}

func TestProgressTracker_WriteFailureSkipsHistory(t *testing.T) {
	store := testutil.NewFakeRecordStore().FailOn("WriteProgress")
	tracker := newTracker(store)

	assert.Equal(t, DefaultStats(), tracker.AwardPoints(context.Background(), "u1", domain.CategoryEmail))
	assert.Equal(t, 0, store.CallsTo("AppendHistory"))
}

func TestProgressTracker_HistoryFailureKeepsProgress(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeRecordStore().FailOn("AppendHistory")
	tracker := newTracker(store)

	stats := tracker.AwardPoints(ctx, "u1", domain.CategoryEmail)
	assert.Equal(t, int64(25), stats.TotalPoints)
	assert.Equal(t, int64(25), stats.PointsAwarded)

	rec, err := store.ReadProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.TasksCompleted)
}

func TestProgressTracker_ListHistoryFailureIsEmpty(t *testing.T) {
	tracker := newTracker(testutil.NewFakeRecordStore().FailOn("ListHistory"))
	history := tracker.History(context.Background(), "u1", 10)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestProgressTracker_ZeroConfigUsesDefaults(t *testing.T) {
	tracker := NewProgressTracker(testutil.NewFakeRecordStore(), RewardTable{}, leveling.Curve{})
	assert.Equal(t, int64(50), tracker.RewardFor(domain.CategoryResearch))
	assert.Equal(t, DefaultStats(), tracker.CurrentStats(context.Background(), "u1"))
}

func TestProgressTracker_ConcurrentAwardsSameUser(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewFakeRecordStore()
	tracker := newTracker(store)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.AwardPoints(ctx, "u1", domain.CategorySimple)
		}()
	}
	wg.Wait()

	stats := tracker.CurrentStats(ctx, "u1")
	assert.Equal(t, int64(n), stats.TasksCompleted)
	assert.Equal(t, int64(n*10), stats.TotalPoints)
	assert.Len(t, tracker.History(ctx, "u1", 100), n)
}

func TestProgressTracker_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewSQLiteRecordStore(testutil.NewTestDB(t))
	tracker := newTracker(store)

	for i := 0; i < 3; i++ {
		tracker.AwardPoints(ctx, "u1", domain.CategoryReport)
	}
	stats := tracker.CurrentStats(ctx, "u1")

	// 225 points: 100 spent on level 1, 125 into the 150 needed for level 3.
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, int64(125), stats.PointsIntoLevel)
	assert.Equal(t, int64(25), stats.PointsToNextLevel)
	assert.Equal(t, 83, stats.ProgressPercent)

	history := tracker.History(ctx, "u1", 0)
	require.Len(t, history, 3)
	assert.Equal(t, int64(3), history[0].SequenceNumber)
}

func TestStatsFor_LargeTotalsStayInRange(t *testing.T) {
	curve := leveling.DefaultCurve()
	for _, total := range []int64{math.MaxInt64 / 2, math.MaxInt64 - 1, math.MaxInt64} {
		stats := statsFor(curve, total, 1)
		pos := curve.Resolve(total)

		assert.GreaterOrEqual(t, stats.ProgressPercent, 0, total)
		assert.Less(t, stats.ProgressPercent, 100, total)
		assert.Equal(t, pos.ProgressPercent(), stats.ProgressPercent, total)
		assert.Equal(t, pos.PointsForNextLevel-pos.PointsIntoLevel, stats.PointsToNextLevel, total)
		assert.Positive(t, stats.PointsToNextLevel, total)
	}
}
