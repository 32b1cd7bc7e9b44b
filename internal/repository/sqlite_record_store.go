package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/alexanderramin/taskquest/internal/domain"
)

// SQLiteRecordStore implements RecordStore on top of the per-table SQLite repos.
type SQLiteRecordStore struct {
	conn     *sql.DB
	uow      db.UnitOfWork
	progress *SQLiteProgressRepo
	history  *SQLiteTaskHistoryRepo
	metrics  *SQLiteAgentMetricRepo
	chats    *SQLiteChatLogRepo
}

// NewSQLiteRecordStore wraps an open database. Close closes it.
func NewSQLiteRecordStore(conn *sql.DB) *SQLiteRecordStore {
	return NewSQLiteRecordStoreWithUoW(conn, db.NewSQLiteUnitOfWork(conn))
}

// NewSQLiteRecordStoreWithUoW lets callers substitute the transaction boundary
// used by ResetUser.
func NewSQLiteRecordStoreWithUoW(conn *sql.DB, uow db.UnitOfWork) *SQLiteRecordStore {
	return &SQLiteRecordStore{
		conn:     conn,
		uow:      uow,
		progress: NewSQLiteProgressRepo(conn),
		history:  NewSQLiteTaskHistoryRepo(conn),
		metrics:  NewSQLiteAgentMetricRepo(conn),
		chats:    NewSQLiteChatLogRepo(conn),
	}
}

func (s *SQLiteRecordStore) ReadProgress(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	return s.progress.Get(ctx, userID)
}

func (s *SQLiteRecordStore) WriteProgress(ctx context.Context, rec domain.ProgressRecord) error {
	return s.progress.Upsert(ctx, rec)
}

func (s *SQLiteRecordStore) AppendHistory(ctx context.Context, e domain.TaskHistoryEntry) error {
	_, err := s.history.Append(ctx, e)
	return err
}

func (s *SQLiteRecordStore) ListHistory(ctx context.Context, userID string, limit int) ([]domain.TaskHistoryEntry, error) {
	return s.history.ListByUser(ctx, userID, limit)
}

func (s *SQLiteRecordStore) ReadAggregateMetrics(ctx context.Context, userID string) ([]domain.AgentMetric, error) {
	return s.metrics.ListByUser(ctx, userID)
}

func (s *SQLiteRecordStore) IncrementAggregateMetric(ctx context.Context, userID string, category domain.Category, pointsDelta int64) error {
	return s.metrics.Increment(ctx, userID, category, pointsDelta)
}

func (s *SQLiteRecordStore) LogChat(ctx context.Context, e domain.ChatLogEntry) error {
	return s.chats.Create(ctx, e)
}

func (s *SQLiteRecordStore) ListChats(ctx context.Context, userID string, limit int) ([]domain.ChatLogEntry, error) {
	return s.chats.ListByUser(ctx, userID, limit)
}

// ResetUser deletes all four record kinds for the user in one transaction.
func (s *SQLiteRecordStore) ResetUser(ctx context.Context, userID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := NewSQLiteTaskHistoryRepo(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := NewSQLiteAgentMetricRepo(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := NewSQLiteChatLogRepo(tx).DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return NewSQLiteProgressRepo(tx).DeleteByUser(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("resetting user %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteRecordStore) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteRecordStore) Close() error {
	return s.conn.Close()
}

var _ RecordStore = (*SQLiteRecordStore)(nil)
