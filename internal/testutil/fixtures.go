package testutil

import (
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/google/uuid"
)

// History entry options
type HistoryOption func(*domain.TaskHistoryEntry)

func WithPoints(p int64) HistoryOption {
	return func(e *domain.TaskHistoryEntry) {
		e.PointsAwarded = p
	}
}

func WithCreatedAt(t time.Time) HistoryOption {
	return func(e *domain.TaskHistoryEntry) {
		e.CreatedAt = t
	}
}

func NewTestHistoryEntry(userID string, category domain.Category, seq int64, opts ...HistoryOption) domain.TaskHistoryEntry {
	e := domain.TaskHistoryEntry{
		ID:             uuid.New().String(),
		UserID:         userID,
		Category:       category,
		PointsAwarded:  10,
		SequenceNumber: seq,
		CreatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Chat log options
type ChatOption func(*domain.ChatLogEntry)

func WithChatCategory(c domain.Category) ChatOption {
	return func(e *domain.ChatLogEntry) {
		e.Category = c
	}
}

func WithChatTime(t time.Time) ChatOption {
	return func(e *domain.ChatLogEntry) {
		e.CreatedAt = t
	}
}

func NewTestChat(userID, input string, opts ...ChatOption) domain.ChatLogEntry {
	e := domain.ChatLogEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Input:     input,
		Response:  "ok: " + input,
		Category:  domain.CategoryGeneral,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
