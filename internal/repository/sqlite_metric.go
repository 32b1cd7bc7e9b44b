package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/alexanderramin/taskquest/internal/domain"
)

// SQLiteAgentMetricRepo implements AgentMetricRepo using a SQLite database.
type SQLiteAgentMetricRepo struct {
	db db.DBTX
}

// NewSQLiteAgentMetricRepo creates a new SQLiteAgentMetricRepo.
func NewSQLiteAgentMetricRepo(conn db.DBTX) *SQLiteAgentMetricRepo {
	return &SQLiteAgentMetricRepo{db: conn}
}

// Increment is a single upsert statement; SQLite serializes writers, so two
// racing increments on the same key both land.
func (r *SQLiteAgentMetricRepo) Increment(ctx context.Context, userID string, category domain.Category, pointsDelta int64) error {
	if pointsDelta < 0 {
		return fmt.Errorf("incrementing agent metric: negative points delta %d", pointsDelta)
	}
	query := `INSERT INTO agent_metrics (user_id, category, call_count, points_generated, last_used)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(user_id, category) DO UPDATE SET
			call_count = call_count + 1,
			points_generated = points_generated + excluded.points_generated,
			last_used = excluded.last_used`
	if _, err := r.db.ExecContext(ctx, query, userID, string(category), pointsDelta, nowUTC()); err != nil {
		return fmt.Errorf("incrementing agent metric: %w", err)
	}
	return nil
}

func (r *SQLiteAgentMetricRepo) ListByUser(ctx context.Context, userID string) ([]domain.AgentMetric, error) {
	query := `SELECT user_id, category, call_count, points_generated, last_used
		FROM agent_metrics WHERE user_id = ?
		ORDER BY call_count DESC, category ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing agent metrics: %w", err)
	}
	defer rows.Close()

	metrics := make([]domain.AgentMetric, 0)
	for rows.Next() {
		var m domain.AgentMetric
		var category, lastUsed string
		if err := rows.Scan(&m.UserID, &category, &m.CallCount, &m.PointsGenerated, &lastUsed); err != nil {
			return nil, fmt.Errorf("scanning agent metric: %w", err)
		}
		m.Category = domain.Category(category)
		m.LastUsed = parseTime(lastUsed)
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agent metrics: %w", err)
	}
	return metrics, nil
}

func (r *SQLiteAgentMetricRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM agent_metrics WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting agent metrics: %w", err)
	}
	return nil
}
