package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxFunc is work executed inside a database transaction.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error

	// RunInTx runs fn in a transaction, committing when fn returns nil and rolling
	// back otherwise.
	RunInTx(ctx context.Context, fn TxFunc) error
}
