package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/google/uuid"
)

// SQLiteChatLogRepo implements ChatLogRepo using a SQLite database.
type SQLiteChatLogRepo struct {
	db db.DBTX
}

// NewSQLiteChatLogRepo creates a new SQLiteChatLogRepo.
func NewSQLiteChatLogRepo(conn db.DBTX) *SQLiteChatLogRepo {
	return &SQLiteChatLogRepo{db: conn}
}

func (r *SQLiteChatLogRepo) Create(ctx context.Context, e domain.ChatLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `INSERT INTO chat_logs (id, user_id, input, response, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Input, e.Response, string(e.Category), formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting chat log: %w", err)
	}
	return nil
}

// ListByUser returns the most recent exchanges first.
func (r *SQLiteChatLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error) {
	query := `SELECT id, user_id, input, response, category, created_at
		FROM chat_logs WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit, DefaultChatLimit))
	if err != nil {
		return nil, fmt.Errorf("listing chat logs: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.ChatLogEntry, 0)
	for rows.Next() {
		var e domain.ChatLogEntry
		var category, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Input, &e.Response, &category, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chat log: %w", err)
		}
		e.Category = domain.Category(category)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat logs: %w", err)
	}
	return entries, nil
}

func (r *SQLiteChatLogRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_logs WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting chat logs: %w", err)
	}
	return nil
}
