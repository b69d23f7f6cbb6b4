package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `payment_id, student_id, amount, method, reference, payment_date, notes, ledger_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxPaymentRepository persists payments and their invoice allocations.
type PgxPaymentRepository struct {
	BaseRepository
}

func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(
		&p.PaymentID,
		&p.StudentID,
		&p.Amount,
		&p.Method,
		&p.Reference,
		&p.PaymentDate,
		&p.Notes,
		&p.LedgerEntryID,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgxPaymentRepository) loadAllocations(ctx context.Context, payments []domain.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	ids := make([]string, len(payments))
	index := make(map[string]int, len(payments))
	for i, p := range payments {
		ids[i] = p.PaymentID
		index[p.PaymentID] = i
		payments[i].Allocations = []domain.PaymentAllocation{}
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT allocation_id, payment_id, invoice_id, amount, created_at
		FROM payment_allocations
		WHERE payment_id = ANY($1)
		ORDER BY payment_id, created_at, allocation_id;
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load payment allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.PaymentAllocation
		if err := rows.Scan(&a.AllocationID, &a.PaymentID, &a.InvoiceID, &a.Amount, &a.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan allocation row: %w", err)
		}
		i := index[a.PaymentID]
		payments[i].Allocations = append(payments[i].Allocations, a)
	}
	return rows.Err()
}

// SavePayment inserts the payment row followed by its allocations.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, tx pgx.Tx, p domain.Payment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`, p.PaymentID, p.StudentID, p.Amount, p.Method, p.Reference, p.PaymentDate, p.Notes, p.LedgerEntryID,
		p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: payment with ID %s already exists", apperrors.ErrDuplicate, p.PaymentID)
		}
		return fmt.Errorf("failed to save payment %s: %w", p.PaymentID, err)
	}

	batch := &pgx.Batch{}
	labels := make([]string, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		batch.Queue(`
			INSERT INTO payment_allocations (allocation_id, payment_id, invoice_id, amount, created_at)
			VALUES ($1, $2, $3, $4, $5);
		`, a.AllocationID, p.PaymentID, a.InvoiceID, a.Amount, a.CreatedAt)
		labels = append(labels, "allocation to invoice "+a.InvoiceID)
	}
	if err := execBatch(ctx, tx, batch, labels); err != nil {
		return fmt.Errorf("failed to save allocations for payment %s: %w", p.PaymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment with its allocations.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	p, err := scanPayment(r.Pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE payment_id = $1;`, paymentID))
	if err != nil {
		return nil, notFoundOr(err, "payment", paymentID)
	}
	payments := []domain.Payment{*p}
	if err := r.loadAllocations(ctx, payments); err != nil {
		return nil, err
	}
	return &payments[0], nil
}

// ListPaymentsByStudent returns a student's payments, most recent first.
func (r *PgxPaymentRepository) ListPaymentsByStudent(ctx context.Context, studentID string, limit int, offset int) ([]domain.Payment, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE student_id = $1
		ORDER BY payment_date DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`, studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for student %s: %w", studentID, err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	if err := r.loadAllocations(ctx, payments); err != nil {
		return nil, err
	}
	return payments, nil
}
