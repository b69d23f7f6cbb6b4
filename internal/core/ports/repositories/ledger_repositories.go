package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// LedgerReader defines read operations for ledger entries
type LedgerReader interface {
	// ListEntriesByStudent returns up to limit entries with entry number greater than
	// afterEntryNumber, ascending.
	ListEntriesByStudent(ctx context.Context, studentID string, limit int, afterEntryNumber int64) ([]domain.LedgerEntry, error)

	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)
}

// LedgerWriter defines write operations for ledger entries
type LedgerWriter interface {
	// InsertEntry appends an entry and returns the entry number the database assigned.
	InsertEntry(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) (int64, error)

	// MarkEntryReversed flags an entry as reversed.
	MarkEntryReversed(ctx context.Context, tx pgx.Tx, entryID string, reversedAt time.Time) error

	// UpdateEntryBalances rewrites the cached running balance columns.
	UpdateEntryBalances(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error
}

// LedgerTransactionSupport defines locked reads used by the balance recompute.
type LedgerTransactionSupport interface {
	// ListEntriesForUpdate loads every entry for the student in entry-number order.
	ListEntriesForUpdate(ctx context.Context, tx pgx.Tx, studentID string) ([]domain.LedgerEntry, error)

	FindEntryByIDForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.LedgerEntry, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	LedgerTransactionSupport
}
