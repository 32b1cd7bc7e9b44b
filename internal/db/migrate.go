package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the record store schema. Every statement is idempotent so
// it runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS progress (
		user_id         TEXT PRIMARY KEY,
		total_points    INTEGER NOT NULL DEFAULT 0 CHECK(total_points >= 0),
		level           INTEGER NOT NULL DEFAULT 1 CHECK(level >= 1),
		tasks_completed INTEGER NOT NULL DEFAULT 0 CHECK(tasks_completed >= 0),
		updated_at      TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS task_history (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		category        TEXT NOT NULL,
		points_awarded  INTEGER NOT NULL CHECK(points_awarded >= 0),
		sequence_number INTEGER NOT NULL CHECK(sequence_number > 0),
		created_at      TEXT NOT NULL,
		UNIQUE(user_id, sequence_number)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_history_user_created ON task_history(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS agent_metrics (
		user_id          TEXT NOT NULL,
		category         TEXT NOT NULL,
		call_count       INTEGER NOT NULL DEFAULT 0 CHECK(call_count >= 0),
		points_generated INTEGER NOT NULL DEFAULT 0 CHECK(points_generated >= 0),
		last_used        TEXT NOT NULL,
		PRIMARY KEY(user_id, category)
	)`,

	`CREATE TABLE IF NOT EXISTS chat_logs (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		input      TEXT NOT NULL,
		response   TEXT NOT NULL,
		category   TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_chat_logs_user_created ON chat_logs(user_id, created_at)`,
}
