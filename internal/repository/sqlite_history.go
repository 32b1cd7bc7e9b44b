package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/google/uuid"
)

// SQLiteTaskHistoryRepo implements TaskHistoryRepo using a SQLite database.
type SQLiteTaskHistoryRepo struct {
	db db.DBTX
}

// NewSQLiteTaskHistoryRepo creates a new SQLiteTaskHistoryRepo.
func NewSQLiteTaskHistoryRepo(conn db.DBTX) *SQLiteTaskHistoryRepo {
	return &SQLiteTaskHistoryRepo{db: conn}
}

func (r *SQLiteTaskHistoryRepo) Append(ctx context.Context, e domain.TaskHistoryEntry) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `INSERT OR IGNORE INTO task_history
		(id, user_id, category, points_awarded, sequence_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		string(e.Category),
		e.PointsAwarded,
		e.SequenceNumber,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting task history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking task history insert: %w", err)
	}
	return n > 0, nil
}

// ListByUser returns the most recent entries first.
func (r *SQLiteTaskHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.TaskHistoryEntry, error) {
	query := `SELECT id, user_id, category, points_awarded, sequence_number, created_at
		FROM task_history WHERE user_id = ?
		ORDER BY sequence_number DESC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit, DefaultHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("listing task history: %w", err)
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (r *SQLiteTaskHistoryRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_history WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting task history: %w", err)
	}
	return nil
}

func scanHistory(rows *sql.Rows) ([]domain.TaskHistoryEntry, error) {
	entries := make([]domain.TaskHistoryEntry, 0)
	for rows.Next() {
		var e domain.TaskHistoryEntry
		var category, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &category, &e.PointsAwarded, &e.SequenceNumber, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning task history entry: %w", err)
		}
		e.Category = domain.Category(category)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task history: %w", err)
	}
	return entries, nil
}
