package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DiscountReader defines read operations for discounts
type DiscountReader interface {
	FindDiscountByID(ctx context.Context, discountID string) (*domain.Discount, error)
	ListDiscountsByStudent(ctx context.Context, studentID string) ([]domain.Discount, error)
}

// DiscountWriter defines write operations for discounts
type DiscountWriter interface {
	// SaveDiscount persists a discount; a duplicate (student, reference) yields ErrDuplicate.
	SaveDiscount(ctx context.Context, tx pgx.Tx, discount domain.Discount) error

	UpdateDiscountStatus(ctx context.Context, tx pgx.Tx, discountID string, status domain.DiscountStatus, userID string, now time.Time) error
}

// DiscountTransactionSupport defines reads used under the student lock.
type DiscountTransactionSupport interface {
	ExistsByReference(ctx context.Context, tx pgx.Tx, studentID string, reference string) (bool, error)
	FindDiscountByIDForUpdate(ctx context.Context, tx pgx.Tx, discountID string) (*domain.Discount, error)
}

// DiscountRepositoryFacade combines all discount repository interfaces
type DiscountRepositoryFacade interface {
	DiscountReader
	DiscountWriter
	DiscountTransactionSupport
}
