package repository

import (
	"context"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// ProgressRepo persists the per-user cumulative points record.
type ProgressRepo interface {
	// Get returns the user's record, creating a zeroed one on first read.
	Get(ctx context.Context, userID string) (domain.ProgressRecord, error)
	Upsert(ctx context.Context, rec domain.ProgressRecord) error
	DeleteByUser(ctx context.Context, userID string) error
}

type TaskHistoryRepo interface {
	// Append inserts the entry unless one with the same (user, sequence)
	// already exists. It reports whether a row was written.
	Append(ctx context.Context, e domain.TaskHistoryEntry) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.TaskHistoryEntry, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type AgentMetricRepo interface {
	// Increment adds one call and pointsDelta points to the (user, category)
	// aggregate in a single atomic statement.
	Increment(ctx context.Context, userID string, category domain.Category, pointsDelta int64) error
	ListByUser(ctx context.Context, userID string) ([]domain.AgentMetric, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type ChatLogRepo interface {
	Create(ctx context.Context, e domain.ChatLogEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// RecordStore is the full persistence surface consumed by the tracker, the
// trait scorer, and the dispatcher. Implementations must isolate updates per
// user key and make IncrementAggregateMetric atomic per (user, category).
type RecordStore interface {
	ReadProgress(ctx context.Context, userID string) (domain.ProgressRecord, error)
	WriteProgress(ctx context.Context, rec domain.ProgressRecord) error
	AppendHistory(ctx context.Context, e domain.TaskHistoryEntry) error
	ListHistory(ctx context.Context, userID string, limit int) ([]domain.TaskHistoryEntry, error)

	// ReadAggregateMetrics returns the user's metrics sorted by call count
	// descending, then category ascending.
	ReadAggregateMetrics(ctx context.Context, userID string) ([]domain.AgentMetric, error)
	IncrementAggregateMetric(ctx context.Context, userID string, category domain.Category, pointsDelta int64) error

	LogChat(ctx context.Context, e domain.ChatLogEntry) error
	ListChats(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error)

	// ResetUser deletes every record held for the user.
	ResetUser(ctx context.Context, userID string) error

	Ping(ctx context.Context) error
	Close() error
}

// DefaultHistoryLimit and DefaultChatLimit apply when a caller passes a
// non-positive limit.
const (
	DefaultHistoryLimit = 50
	DefaultChatLimit    = 20
)

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
