package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// FeeScheduleReader defines read operations for fee lines
type FeeScheduleReader interface {
	FindFeeLineByID(ctx context.Context, feeLineID string) (*domain.FeeLine, error)

	// ListFeeLines returns the student's fee lines. A nil tx reads outside a transaction.
	ListFeeLines(ctx context.Context, tx pgx.Tx, studentID string, activeOnly bool) ([]domain.FeeLine, error)
}

// FeeScheduleWriter defines write operations for fee lines
type FeeScheduleWriter interface {
	// SaveFeeLines persists new fee lines. A nil tx writes outside a transaction.
	SaveFeeLines(ctx context.Context, tx pgx.Tx, lines []domain.FeeLine) error

	DeactivateFeeLine(ctx context.Context, feeLineID string, userID string, now time.Time) error

	// MarkFeeLinesBilled stamps one-time lines as billed and deactivates them.
	MarkFeeLinesBilled(ctx context.Context, tx pgx.Tx, feeLineIDs []string, userID string, now time.Time) error

	// RestoreBilledFeeLines undoes MarkFeeLinesBilled for the given one-time lines.
	RestoreBilledFeeLines(ctx context.Context, tx pgx.Tx, feeLineIDs []string, userID string, now time.Time) error

	// DeactivateMonthlyFeeLines deactivates every recurring line for a student.
	DeactivateMonthlyFeeLines(ctx context.Context, tx pgx.Tx, studentID string, userID string, now time.Time) error
}

// FeeScheduleRepositoryFacade combines all fee schedule repository interfaces
type FeeScheduleRepositoryFacade interface {
	FeeScheduleReader
	FeeScheduleWriter
}
