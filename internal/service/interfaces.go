package service

import (
	"context"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// ProgressStore is the part of the record store the progress tracker uses.
type ProgressStore interface {
	ReadProgress(ctx context.Context, userID string) (domain.ProgressRecord, error)
	WriteProgress(ctx context.Context, rec domain.ProgressRecord) error
	AppendHistory(ctx context.Context, e domain.TaskHistoryEntry) error
	ListHistory(ctx context.Context, userID string, limit int) ([]domain.TaskHistoryEntry, error)
}

// MetricStore is the part of the record store the trait scorer uses.
type MetricStore interface {
	ReadAggregateMetrics(ctx context.Context, userID string) ([]domain.AgentMetric, error)
}

// ActivityStore records each dispatched exchange and owns account resets.
type ActivityStore interface {
	IncrementAggregateMetric(ctx context.Context, userID string, category domain.Category, pointsDelta int64) error
	LogChat(ctx context.Context, e domain.ChatLogEntry) error
	ListChats(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error)
	ResetUser(ctx context.Context, userID string) error
}
