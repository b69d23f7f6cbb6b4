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

const discountColumns = `discount_id, student_id, amount, percentage, reason, reference, status, ledger_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxDiscountRepository persists discounts.
type PgxDiscountRepository struct {
	BaseRepository
}

func newPgxDiscountRepository(pool *pgxpool.Pool) portsrepo.DiscountRepositoryFacade {
	return &PgxDiscountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DiscountRepositoryFacade = (*PgxDiscountRepository)(nil)

func scanDiscount(row pgx.Row) (*domain.Discount, error) {
	var d domain.Discount
	if err := row.Scan(
		&d.DiscountID,
		&d.StudentID,
		&d.Amount,
		&d.Percentage,
		&d.Reason,
		&d.Reference,
		&d.Status,
		&d.LedgerEntryID,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDiscount inserts a discount.
func (r *PgxDiscountRepository) SaveDiscount(ctx context.Context, tx pgx.Tx, d domain.Discount) error {
	_, err := r.q(tx).Exec(ctx, `
		INSERT INTO discounts (`+discountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`, d.DiscountID, d.StudentID, d.Amount, d.Percentage, d.Reason, d.Reference, d.Status, d.LedgerEntryID,
		d.CreatedAt, d.CreatedBy, d.LastUpdatedAt, d.LastUpdatedBy)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: discount with reference %q already exists for student %s", apperrors.ErrDuplicate, d.Reference, d.StudentID)
		}
		return fmt.Errorf("failed to save discount %s: %w", d.DiscountID, err)
	}
	return nil
}

// FindDiscountByID retrieves a discount.
func (r *PgxDiscountRepository) FindDiscountByID(ctx context.Context, discountID string) (*domain.Discount, error) {
	d, err := scanDiscount(r.Pool.QueryRow(ctx, `SELECT `+discountColumns+` FROM discounts WHERE discount_id = $1;`, discountID))
	if err != nil {
		return nil, notFoundOr(err, "discount", discountID)
	}
	return d, nil
}

// FindDiscountByIDForUpdate locks one discount row.
func (r *PgxDiscountRepository) FindDiscountByIDForUpdate(ctx context.Context, tx pgx.Tx, discountID string) (*domain.Discount, error) {
	d, err := scanDiscount(tx.QueryRow(ctx, `SELECT `+discountColumns+` FROM discounts WHERE discount_id = $1 FOR UPDATE;`, discountID))
	if err != nil {
		return nil, notFoundOr(err, "discount", discountID)
	}
	return d, nil
}

// ListDiscountsByStudent returns all discounts of a student, newest first.
func (r *PgxDiscountRepository) ListDiscountsByStudent(ctx context.Context, studentID string) ([]domain.Discount, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+discountColumns+`
		FROM discounts
		WHERE student_id = $1
		ORDER BY created_at DESC;
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts for student %s: %w", studentID, err)
	}
	defer rows.Close()

	discounts := []domain.Discount{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discount row: %w", err)
		}
		discounts = append(discounts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discount rows: %w", err)
	}
	return discounts, nil
}

// ExistsByReference reports whether the student already has a discount with the reference.
func (r *PgxDiscountRepository) ExistsByReference(ctx context.Context, tx pgx.Tx, studentID string, reference string) (bool, error) {
	var exists bool
	err := r.q(tx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM discounts WHERE student_id = $1 AND reference = $2);
	`, studentID, reference).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check discount reference for student %s: %w", studentID, err)
	}
	return exists, nil
}

// UpdateDiscountStatus sets the status of a discount.
func (r *PgxDiscountRepository) UpdateDiscountStatus(ctx context.Context, tx pgx.Tx, discountID string, status domain.DiscountStatus, userID string, now time.Time) error {
	ct, err := r.q(tx).Exec(ctx, `
		UPDATE discounts SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE discount_id = $1;
	`, discountID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update discount %s: %w", discountID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("discount %s: %w", discountID, apperrors.ErrNotFound)
	}
	return nil
}
