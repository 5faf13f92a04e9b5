package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/donation-desk/internal/application/port"
	"go.uber.org/zap"
)

type txKey struct{}

// Executor is what repositories run statements on: the pool or the open transaction
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ Executor                = (*sql.DB)(nil)
	_ Executor                = (*sql.Tx)(nil)
	_ port.TransactionManager = (*TxManager)(nil)
)

// TxManager runs units of work in a single SQLite transaction.
// The transaction travels in the context handed to the unit of work.
type TxManager struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTxManager(db *sql.DB, logger *zap.Logger) *TxManager {
	return &TxManager{db: db, logger: logger}
}

// WithTransaction commits when fn returns nil and rolls back otherwise.
// A ctx that already carries a transaction is passed straight through.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		m.logger.Error("Could not open transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			m.rollback(tx)
			m.logger.Error("Unit of work panicked", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		m.rollback(tx)
		return err
	}

	if err = tx.Commit(); err != nil {
		m.logger.Error("Could not commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (m *TxManager) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		m.logger.Warn("Rollback failed", zap.Error(err))
	}
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

// ExecutorFor picks the transaction carried by ctx, else db
func ExecutorFor(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
