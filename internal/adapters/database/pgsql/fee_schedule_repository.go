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

const feeLineColumns = `fee_line_id, student_id, fee_type, description, amount, recurrence, is_active, billed_at,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxFeeScheduleRepository persists fee lines.
type PgxFeeScheduleRepository struct {
	BaseRepository
}

func newPgxFeeScheduleRepository(pool *pgxpool.Pool) portsrepo.FeeScheduleRepositoryFacade {
	return &PgxFeeScheduleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FeeScheduleRepositoryFacade = (*PgxFeeScheduleRepository)(nil)

func scanFeeLine(row pgx.Row) (*domain.FeeLine, error) {
	var f domain.FeeLine
	if err := row.Scan(
		&f.FeeLineID,
		&f.StudentID,
		&f.FeeType,
		&f.Description,
		&f.Amount,
		&f.Recurrence,
		&f.IsActive,
		&f.BilledAt,
		&f.CreatedAt,
		&f.CreatedBy,
		&f.LastUpdatedAt,
		&f.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFeeLines inserts fee lines in one batch.
func (r *PgxFeeScheduleRepository) SaveFeeLines(ctx context.Context, tx pgx.Tx, lines []domain.FeeLine) error {
	query := `
		INSERT INTO fee_lines (` + feeLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	batch := &pgx.Batch{}
	labels := make([]string, 0, len(lines))
	for _, f := range lines {
		batch.Queue(query,
			f.FeeLineID, f.StudentID, f.FeeType, f.Description, f.Amount, f.Recurrence, f.IsActive, f.BilledAt,
			f.CreatedAt, f.CreatedBy, f.LastUpdatedAt, f.LastUpdatedBy,
		)
		labels = append(labels, "fee line "+f.FeeLineID)
	}
	if err := execBatch(ctx, r.q(tx), batch, labels); err != nil {
		return fmt.Errorf("failed to save fee lines: %w", err)
	}
	return nil
}

// FindFeeLineByID retrieves a fee line.
func (r *PgxFeeScheduleRepository) FindFeeLineByID(ctx context.Context, feeLineID string) (*domain.FeeLine, error) {
	f, err := scanFeeLine(r.Pool.QueryRow(ctx, `SELECT `+feeLineColumns+` FROM fee_lines WHERE fee_line_id = $1;`, feeLineID))
	if err != nil {
		return nil, notFoundOr(err, "fee line", feeLineID)
	}
	return f, nil
}

// ListFeeLines returns the student's fee lines, monthly lines first.
func (r *PgxFeeScheduleRepository) ListFeeLines(ctx context.Context, tx pgx.Tx, studentID string, activeOnly bool) ([]domain.FeeLine, error) {
	query := `
		SELECT ` + feeLineColumns + `
		FROM fee_lines
		WHERE student_id = $1 AND (NOT $2 OR is_active)
		ORDER BY recurrence, fee_type, created_at;
	`
	rows, err := r.q(tx).Query(ctx, query, studentID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee lines for student %s: %w", studentID, err)
	}
	defer rows.Close()

	lines := []domain.FeeLine{}
	for rows.Next() {
		f, err := scanFeeLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fee line row: %w", err)
		}
		lines = append(lines, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fee line rows: %w", err)
	}
	return lines, nil
}

// DeactivateFeeLine marks a fee line as inactive.
func (r *PgxFeeScheduleRepository) DeactivateFeeLine(ctx context.Context, feeLineID string, userID string, now time.Time) error {
	ct, err := r.Pool.Exec(ctx, `
		UPDATE fee_lines SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE fee_line_id = $1;
	`, feeLineID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate fee line %s: %w", feeLineID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("fee line %s: %w", feeLineID, apperrors.ErrNotFound)
	}
	return nil
}

// MarkFeeLinesBilled stamps one-time lines as billed and deactivates them.
func (r *PgxFeeScheduleRepository) MarkFeeLinesBilled(ctx context.Context, tx pgx.Tx, feeLineIDs []string, userID string, now time.Time) error {
	if len(feeLineIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE fee_lines
		SET billed_at = $2, is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE fee_line_id = ANY($1) AND recurrence = 'ONE_TIME';
	`, feeLineIDs, now, userID)
	if err != nil {
		return fmt.Errorf("failed to mark fee lines billed: %w", err)
	}
	return nil
}

// RestoreBilledFeeLines clears billed_at on one-time lines and makes them billable again.
func (r *PgxFeeScheduleRepository) RestoreBilledFeeLines(ctx context.Context, tx pgx.Tx, feeLineIDs []string, userID string, now time.Time) error {
	if len(feeLineIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE fee_lines
		SET billed_at = NULL, is_active = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE fee_line_id = ANY($1) AND recurrence = 'ONE_TIME' AND billed_at IS NOT NULL;
	`, feeLineIDs, now, userID)
	if err != nil {
		return fmt.Errorf("failed to restore billed fee lines: %w", err)
	}
	return nil
}

// DeactivateMonthlyFeeLines deactivates every recurring line for a student.
func (r *PgxFeeScheduleRepository) DeactivateMonthlyFeeLines(ctx context.Context, tx pgx.Tx, studentID string, userID string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE fee_lines SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE student_id = $1 AND recurrence = 'MONTHLY' AND is_active;
	`, studentID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate monthly fee lines for student %s: %w", studentID, err)
	}
	return nil
}
