package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ourllet/internal/usecase"
)

type txBeginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager starts the transactions that ledger creation, joins and
// deletes run in. It implements usecase.TransactionManager.
type TxManager struct {
	pool txBeginner
}

// NewTxManager creates a TxManager over a connection pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool txBeginner) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction. Use cases defer Rollback right after Begin,
// so Rollback after Commit is a no-op.
type Tx struct {
	tx     pgx.Tx
	closed bool
}

// Commit commits the transaction. The transaction is closed afterwards even
// when the commit fails.
func (t *Tx) Commit(ctx context.Context) error {
	t.closed = true
	return t.tx.Commit(ctx)
}

// Rollback aborts the transaction, releasing any ledger row locks taken by
// FOR UPDATE.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true

	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// PgxTx returns the underlying pgx.Tx for repository statements.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
