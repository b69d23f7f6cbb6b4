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

const invoiceColumns = `invoice_id, invoice_number, student_id, billing_month, billing_date, due_date, total,
	paid_amount, advance_applied, status, is_prorated, ledger_entry_id, notes,
	created_at, created_by, last_updated_at, last_updated_by`

const invoiceItemColumns = `invoice_item_id, invoice_id, fee_line_id, description, category, unit_amount, quantity, amount`

// PgxInvoiceRepository persists invoices and their line items.
type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := row.Scan(
		&inv.InvoiceID,
		&inv.InvoiceNumber,
		&inv.StudentID,
		&inv.BillingMonth,
		&inv.BillingDate,
		&inv.DueDate,
		&inv.Total,
		&inv.PaidAmount,
		&inv.AdvanceApplied,
		&inv.Status,
		&inv.IsProrated,
		&inv.LedgerEntryID,
		&inv.Notes,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	defer rows.Close()
	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}

// loadItems fills the Items of every invoice with one query.
func (r *PgxInvoiceRepository) loadItems(ctx context.Context, q querier, invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]string, len(invoices))
	index := make(map[string]int, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.InvoiceID
		index[inv.InvoiceID] = i
		invoices[i].Items = []domain.InvoiceItem{}
	}

	rows, err := q.Query(ctx, `
		SELECT `+invoiceItemColumns+`
		FROM invoice_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, line_no;
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.InvoiceItem
		if err := rows.Scan(
			&it.InvoiceItemID,
			&it.InvoiceID,
			&it.FeeLineID,
			&it.Description,
			&it.Category,
			&it.UnitAmount,
			&it.Quantity,
			&it.Amount,
		); err != nil {
			return fmt.Errorf("failed to scan invoice item row: %w", err)
		}
		i := index[it.InvoiceID]
		invoices[i].Items = append(invoices[i].Items, it)
	}
	return rows.Err()
}

// SaveInvoice inserts the invoice header and its items. The invoice number is
// drawn from invoice_number_seq.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, tx pgx.Tx, inv domain.Invoice) (string, error) {
	query := `
		INSERT INTO invoices (invoice_id, invoice_number, student_id, billing_month, billing_date, due_date, total,
			paid_amount, advance_applied, status, is_prorated, ledger_entry_id, notes,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, 'INV-' || to_char($3::date, 'YYYYMM') || '-' || lpad(nextval('invoice_number_seq')::text, 6, '0'),
			$2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING invoice_number;
	`
	var number string
	err := tx.QueryRow(ctx, query,
		inv.InvoiceID, inv.StudentID, inv.BillingMonth, inv.BillingDate, inv.DueDate, inv.Total,
		inv.PaidAmount, inv.AdvanceApplied, inv.Status, inv.IsProrated, inv.LedgerEntryID, inv.Notes,
		inv.CreatedAt, inv.CreatedBy, inv.LastUpdatedAt, inv.LastUpdatedBy,
	).Scan(&number)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return "", &apperrors.DuplicatePeriodError{
				StudentID:    inv.StudentID,
				BillingMonth: inv.BillingMonth.Format("2006-01"),
			}
		}
		return "", fmt.Errorf("failed to save invoice %s: %w", inv.InvoiceID, err)
	}

	batch := &pgx.Batch{}
	labels := make([]string, 0, len(inv.Items))
	for i, it := range inv.Items {
		batch.Queue(`
			INSERT INTO invoice_items (`+invoiceItemColumns+`, line_no)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`, it.InvoiceItemID, inv.InvoiceID, it.FeeLineID, it.Description, it.Category, it.UnitAmount, it.Quantity, it.Amount, i+1)
		labels = append(labels, "invoice item "+it.InvoiceItemID)
	}
	if err := execBatch(ctx, tx, batch, labels); err != nil {
		return "", fmt.Errorf("failed to save items for invoice %s: %w", inv.InvoiceID, err)
	}
	return number, nil
}

// FindInvoiceByID retrieves an invoice with its items.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.Pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1;`, invoiceID))
	if err != nil {
		return nil, notFoundOr(err, "invoice", invoiceID)
	}
	invoices := []domain.Invoice{*inv}
	if err := r.loadItems(ctx, r.Pool, invoices); err != nil {
		return nil, err
	}
	return &invoices[0], nil
}

// ListInvoicesByStudent pages newest billing month first using a keyset cursor.
func (r *PgxInvoiceRepository) ListInvoicesByStudent(ctx context.Context, studentID string, status *domain.InvoiceStatus, limit int, afterMonth *time.Time, afterCreatedAt *time.Time) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE student_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::date IS NULL OR (billing_month, created_at) < ($3, $4))
		ORDER BY billing_month DESC, created_at DESC
		LIMIT $5;
	`
	rows, err := r.Pool.Query(ctx, query, studentID, status, afterMonth, afterCreatedAt, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for student %s: %w", studentID, err)
	}
	invoices, err := collectInvoices(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.Pool, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpdateInvoiceStatus sets the status and notes of an invoice.
func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, notes string, userID string, now time.Time) error {
	ct, err := r.q(tx).Exec(ctx, `
		UPDATE invoices SET status = $2, notes = $3, last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1;
	`, invoiceID, status, notes, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s status: %w", invoiceID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", invoiceID, apperrors.ErrNotFound)
	}
	return nil
}

// MarkOverdue flips open invoices past their due date to OVERDUE.
func (r *PgxInvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time, userID string, now time.Time) (int64, error) {
	ct, err := r.Pool.Exec(ctx, `
		UPDATE invoices SET status = 'OVERDUE', last_updated_at = $2, last_updated_by = $3
		WHERE status IN ('PENDING', 'PARTIALLY_PAID')
		  AND due_date < $1::date
		  AND paid_amount < total;
	`, asOf, now, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark invoices overdue: %w", err)
	}
	return ct.RowsAffected(), nil
}

// FindInvoiceByStudentAndMonth returns the live invoice for a billing month.
func (r *PgxInvoiceRepository) FindInvoiceByStudentAndMonth(ctx context.Context, tx pgx.Tx, studentID string, billingMonth time.Time) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.q(tx).QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE student_id = $1 AND billing_month = $2 AND status <> 'CANCELLED';
	`, studentID, billingMonth))
	if err != nil {
		return nil, notFoundOr(err, "invoice for student", studentID)
	}
	return inv, nil
}

// ListOpenInvoicesForUpdate locks the open invoices oldest due first.
func (r *PgxInvoiceRepository) ListOpenInvoicesForUpdate(ctx context.Context, tx pgx.Tx, studentID string) ([]domain.Invoice, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE student_id = $1 AND status IN ('PENDING', 'PARTIALLY_PAID', 'OVERDUE')
		ORDER BY due_date, created_at, invoice_id
		FOR UPDATE;
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices for student %s: %w", studentID, err)
	}
	return collectInvoices(rows)
}

// FindInvoiceByIDForUpdate locks one invoice row.
func (r *PgxInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error) {
	inv, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1 FOR UPDATE;`, invoiceID))
	if err != nil {
		return nil, notFoundOr(err, "invoice", invoiceID)
	}
	return inv, nil
}

// UpdateInvoicePayments writes paid amount and status for each invoice in one batch.
func (r *PgxInvoiceRepository) UpdateInvoicePayments(ctx context.Context, tx pgx.Tx, invoices []domain.Invoice, userID string, now time.Time) error {
	batch := &pgx.Batch{}
	labels := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		batch.Queue(`
			UPDATE invoices SET paid_amount = $2, status = $3, last_updated_at = $4, last_updated_by = $5
			WHERE invoice_id = $1;
		`, inv.InvoiceID, inv.PaidAmount, inv.Status, now, userID)
		labels = append(labels, "invoice "+inv.InvoiceID)
	}
	if err := execBatch(ctx, tx, batch, labels); err != nil {
		return fmt.Errorf("failed to update invoice payments: %w", err)
	}
	return nil
}
