package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ledgerColumns = `ledger_entry_id, entry_number, student_id, entry_date, entry_type, description, reference_id,
	debit, credit, balance, balance_type, is_reversed, reversal_date, reversal_of, created_at, created_by`

// PgxLedgerRepository persists ledger entries.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	if err := row.Scan(
		&e.LedgerEntryID,
		&e.EntryNumber,
		&e.StudentID,
		&e.EntryDate,
		&e.Type,
		&e.Description,
		&e.ReferenceID,
		&e.Debit,
		&e.Credit,
		&e.Balance,
		&e.BalanceType,
		&e.IsReversed,
		&e.ReversalDate,
		&e.ReversalOf,
		&e.CreatedAt,
		&e.CreatedBy,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()
	entries := []domain.LedgerEntry{}
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}
	return entries, nil
}

// InsertEntry appends an entry. The entry number comes from the identity column.
func (r *PgxLedgerRepository) InsertEntry(ctx context.Context, tx pgx.Tx, e domain.LedgerEntry) (int64, error) {
	query := `
		INSERT INTO ledger_entries (ledger_entry_id, student_id, entry_date, entry_type, description, reference_id,
			debit, credit, balance, balance_type, is_reversed, reversal_date, reversal_of, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING entry_number;
	`
	var entryNumber int64
	err := tx.QueryRow(ctx, query,
		e.LedgerEntryID, e.StudentID, e.EntryDate, e.Type, e.Description, e.ReferenceID,
		e.Debit, e.Credit, e.Balance, e.BalanceType, e.IsReversed, e.ReversalDate, e.ReversalOf,
		e.CreatedAt, e.CreatedBy,
	).Scan(&entryNumber)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return 0, fmt.Errorf("%w: ledger entry %s conflicts with an existing entry", apperrors.ErrConflict, e.LedgerEntryID)
		}
		return 0, fmt.Errorf("failed to insert ledger entry %s: %w", e.LedgerEntryID, err)
	}
	return entryNumber, nil
}

// MarkEntryReversed flags an entry as reversed. It fails with ErrConflict when the
// entry is already reversed.
func (r *PgxLedgerRepository) MarkEntryReversed(ctx context.Context, tx pgx.Tx, entryID string, reversedAt time.Time) error {
	ct, err := tx.Exec(ctx, `
		UPDATE ledger_entries SET is_reversed = TRUE, reversal_date = $2
		WHERE ledger_entry_id = $1 AND NOT is_reversed;
	`, entryID, reversedAt)
	if err != nil {
		return fmt.Errorf("failed to mark ledger entry %s reversed: %w", entryID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: ledger entry %s is already reversed", apperrors.ErrConflict, entryID)
	}
	return nil
}

// UpdateEntryBalances rewrites the cached running balance of each entry in one batch.
func (r *PgxLedgerRepository) UpdateEntryBalances(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	batch := &pgx.Batch{}
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		batch.Queue(`UPDATE ledger_entries SET balance = $2, balance_type = $3 WHERE ledger_entry_id = $1;`,
			e.LedgerEntryID, e.Balance, e.BalanceType)
		labels = append(labels, "ledger entry "+e.LedgerEntryID)
	}
	if err := execBatch(ctx, tx, batch, labels); err != nil {
		return fmt.Errorf("failed to update ledger balances: %w", err)
	}
	return nil
}

// ListEntriesForUpdate loads every entry for the student in entry-number order.
// The student row lock already serializes writers; FOR UPDATE guards the cached
// balance columns against concurrent reconciles.
func (r *PgxLedgerRepository) ListEntriesForUpdate(ctx context.Context, tx pgx.Tx, studentID string) ([]domain.LedgerEntry, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE student_id = $1
		ORDER BY entry_number
		FOR UPDATE;
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for student %s: %w", studentID, err)
	}
	return collectLedgerEntries(rows)
}

// FindEntryByID retrieves one entry.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	e, err := scanLedgerEntry(r.Pool.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE ledger_entry_id = $1;`, entryID))
	if err != nil {
		return nil, notFoundOr(err, "ledger entry", entryID)
	}
	return e, nil
}

// FindEntryByIDForUpdate locks one entry.
func (r *PgxLedgerRepository) FindEntryByIDForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.LedgerEntry, error) {
	e, err := scanLedgerEntry(tx.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE ledger_entry_id = $1 FOR UPDATE;`, entryID))
	if err != nil {
		return nil, notFoundOr(err, "ledger entry", entryID)
	}
	return e, nil
}

// ListEntriesByStudent returns a page of entries after the cursor, ascending.
func (r *PgxLedgerRepository) ListEntriesByStudent(ctx context.Context, studentID string, limit int, afterEntryNumber int64) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE student_id = $1 AND entry_number > $2
		ORDER BY entry_number
		LIMIT $3;
	`, studentID, afterEntryNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger for student %s: %w", studentID, err)
	}
	return collectLedgerEntries(rows)
}
