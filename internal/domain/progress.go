package domain

import "time"

// ProgressRecord is the per-user cumulative points record.
// TotalPoints never decreases; only the progress tracker mutates it.
type ProgressRecord struct {
	UserID         string    `json:"user_id"`
	TotalPoints    int64     `json:"total_points"`
	Level          int       `json:"level"`
	TasksCompleted int64     `json:"tasks_completed"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProgressRecord returns the zeroed record created on first contact.
func NewProgressRecord(userID string) ProgressRecord {
	return ProgressRecord{UserID: userID, Level: 1}
}

// TaskHistoryEntry is an append-only record of one completed task.
// SequenceNumber equals the record's TasksCompleted at creation time.
type TaskHistoryEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Category       Category  `json:"category"`
	PointsAwarded  int64     `json:"points_awarded"`
	SequenceNumber int64     `json:"sequence_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// AgentMetric aggregates dispatches per (user, category).
type AgentMetric struct {
	UserID          string    `json:"user_id"`
	Category        Category  `json:"category"`
	CallCount       int64     `json:"call_count"`
	PointsGenerated int64     `json:"points_generated"`
	LastUsed        time.Time `json:"last_used"`
}

// ChatLogEntry records one dispatched exchange.
type ChatLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Input     string    `json:"input"`
	Response  string    `json:"response"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
