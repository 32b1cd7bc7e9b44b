package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/alexanderramin/taskquest/internal/domain"
)

// SQLiteProgressRepo implements ProgressRepo using a SQLite database.
type SQLiteProgressRepo struct {
	db db.DBTX
}

// NewSQLiteProgressRepo creates a new SQLiteProgressRepo.
func NewSQLiteProgressRepo(conn db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: conn}
}

func (r *SQLiteProgressRepo) Get(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO progress (user_id, total_points, level, tasks_completed, updated_at)
		VALUES (?, 0, 1, 0, ?)`, userID, nowUTC())
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("creating progress record: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, total_points, level, tasks_completed, updated_at
		FROM progress WHERE user_id = ?`, userID)

	var rec domain.ProgressRecord
	var updatedAt string
	if err := row.Scan(&rec.UserID, &rec.TotalPoints, &rec.Level, &rec.TasksCompleted, &updatedAt); err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("scanning progress record: %w", err)
	}
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

func (r *SQLiteProgressRepo) Upsert(ctx context.Context, rec domain.ProgressRecord) error {
	query := `INSERT INTO progress (user_id, total_points, level, tasks_completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_points = excluded.total_points,
			level = excluded.level,
			tasks_completed = excluded.tasks_completed,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.TotalPoints,
		rec.Level,
		rec.TasksCompleted,
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting progress record: %w", err)
	}
	return nil
}

func (r *SQLiteProgressRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM progress WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting progress record: %w", err)
	}
	return nil
}
