package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TxFunc runs against a transaction-scoped DBTX. Returning an error or
// panicking rolls the transaction back.
type TxFunc func(ctx context.Context, tx DBTX) error

// UnitOfWork groups record writes that must land together, such as the four
// deletes behind a user reset.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// SQLiteUnitOfWork runs each TxFunc in its own database/sql transaction.
type SQLiteUnitOfWork struct {
	conn *sql.DB
}

// NewSQLiteUnitOfWork creates a UnitOfWork over conn.
func NewSQLiteUnitOfWork(conn *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{conn: conn}
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn TxFunc) (err error) {
	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true
	return nil
}
