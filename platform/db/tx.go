package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner runs a function inside a database transaction. The orchestration
// layer depends on this interface rather than on pgx directly, so tests can
// substitute an in-memory runner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// PgxTxRunner is the production TxRunner backed by a pgx pool.
type PgxTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner creates a TxRunner over the given pool.
func NewTxRunner(pool *pgxpool.Pool) *PgxTxRunner {
	return &PgxTxRunner{pool: pool}
}

// RunInTx begins a transaction, runs fn, and commits. Any error from fn rolls
// the transaction back and is returned unchanged so callers can inspect it.
func (r *PgxTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
