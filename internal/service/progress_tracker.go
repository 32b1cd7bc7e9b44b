package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/leveling"
	"github.com/google/uuid"
)

// Stats is the display view of a user's progress.
type Stats struct {
	Level              int   `json:"level"`
	TotalPoints        int64 `json:"total_points"`
	TasksCompleted     int64 `json:"tasks_completed"`
	PointsIntoLevel    int64 `json:"points_into_level"`
	PointsForNextLevel int64 `json:"points_for_next_level"`
	PointsToNextLevel  int64 `json:"points_to_next_level"`
	ProgressPercent    int   `json:"progress_percent"`
	PointsAwarded      int64 `json:"points_awarded"`
}

// DefaultStats is what a brand-new user, or a user whose store is
// unreachable, sees.
func DefaultStats() Stats {
	return statsFor(leveling.DefaultCurve(), 0, 0)
}

func statsFor(curve leveling.Curve, total, tasks int64) Stats {
	pos := curve.Resolve(total)
	return Stats{
		Level:              pos.Level,
		TotalPoints:        total,
		TasksCompleted:     tasks,
		PointsIntoLevel:    pos.PointsIntoLevel,
		PointsForNextLevel: pos.PointsForNextLevel,
		PointsToNextLevel:  pos.PointsToNextLevel(),
		ProgressPercent:    pos.ProgressPercent(),
	}
}

// ProgressTracker owns point rewards and level progression. Only the tracker
// writes progress records.
type ProgressTracker struct {
	store   ProgressStore
	rewards RewardTable
	curve   leveling.Curve
	users   *keyedMutex
	options
}

// NewProgressTracker creates a tracker. A nil store puts it in degraded
// mode: awards are no-ops and stats are always the defaults. A zero
// RewardTable uses DefaultRewardTable.
func NewProgressTracker(store ProgressStore, rewards RewardTable, curve leveling.Curve, opts ...Option) *ProgressTracker {
	if rewards.points == nil {
		rewards = DefaultRewardTable()
	}
	if curve.BasePoints <= 0 || curve.Multiplier <= 1 {
		curve = leveling.DefaultCurve()
	}
	return &ProgressTracker{
		store:   store,
		rewards: rewards,
		curve:   curve,
		users:   newKeyedMutex(),
		options: buildOptions(opts),
	}
}

// RewardFor returns the points a task of category c is worth.
func (t *ProgressTracker) RewardFor(c domain.Category) int64 {
	return t.rewards.RewardFor(c)
}

// Degraded reports whether the tracker runs without a store.
func (t *ProgressTracker) Degraded() bool { return t.store == nil }

// CurrentStats reads the user's record and resolves it on the curve.
func (t *ProgressTracker) CurrentStats(ctx context.Context, userID string) Stats {
	if t.store == nil {
		return t.defaultStats()
	}
	rec, err := t.store.ReadProgress(ctx, userID)
	if err != nil {
		t.degrade("read_progress", userID, err)
		return t.defaultStats()
	}
	return statsFor(t.curve, rec.TotalPoints, rec.TasksCompleted)
}

// AwardPoints credits one completed task of category c. Progress is written
// before history, and the history sequence number equals the new task
// count, so a retry after a partial failure cannot duplicate a sequence.
func (t *ProgressTracker) AwardPoints(ctx context.Context, userID string, c domain.Category) Stats {
	if t.store == nil {
		return t.defaultStats()
	}

	startedAt := time.Now()
	reward := t.rewards.RewardFor(c)
	fields := map[string]any{"user_id": userID, "category": string(c), "points": reward}

	unlock := t.users.Lock(userID)
	defer unlock()

	rec, err := t.store.ReadProgress(ctx, userID)
	if err != nil {
		t.degrade("read_progress", userID, err)
		t.observe(ctx, "award-points", startedAt, err, fields)
		return t.defaultStats()
	}

	now := t.now()
	rec.UserID = userID
	rec.TotalPoints += reward
	rec.TasksCompleted++
	rec.Level = t.curve.Resolve(rec.TotalPoints).Level
	rec.UpdatedAt = now

	if err := t.store.WriteProgress(ctx, rec); err != nil {
		t.degrade("write_progress", userID, err)
		t.observe(ctx, "award-points", startedAt, err, fields)
		return t.defaultStats()
	}

	entry := domain.TaskHistoryEntry{
		ID:             uuid.New().String(),
		UserID:         userID,
		Category:       c,
		PointsAwarded:  reward,
		SequenceNumber: rec.TasksCompleted,
		CreatedAt:      now,
	}
	if err := t.store.AppendHistory(ctx, entry); err != nil {
		// Progress is already persisted; only the history row is missing.
		t.degrade("append_history", userID, err)
	}

	stats := statsFor(t.curve, rec.TotalPoints, rec.TasksCompleted)
	stats.PointsAwarded = reward
	fields["level"] = stats.Level
	fields["total_points"] = stats.TotalPoints
	t.observe(ctx, "award-points", startedAt, nil, fields)
	return stats
}

// History returns the user's most recent completed tasks, newest first. A
// failing store yields an empty list.
func (t *ProgressTracker) History(ctx context.Context, userID string, limit int) []domain.TaskHistoryEntry {
	if t.store == nil {
		return []domain.TaskHistoryEntry{}
	}
	entries, err := t.store.ListHistory(ctx, userID, limit)
	if err != nil {
		t.degrade("list_history", userID, err)
		return []domain.TaskHistoryEntry{}
	}
	return entries
}

func (t *ProgressTracker) defaultStats() Stats {
	return statsFor(t.curve, 0, 0)
}
