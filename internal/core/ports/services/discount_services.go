package services

import (
	"context"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
)

// DiscountSvcFacade defines discount operations
type DiscountSvcFacade interface {
	ApplyDiscount(ctx context.Context, studentID string, req dto.ApplyDiscountRequest, actorID string) (*domain.Discount, error)
	ListStudentDiscounts(ctx context.Context, studentID string) ([]domain.Discount, error)
	CancelDiscount(ctx context.Context, discountID string, actorID string) (*domain.Discount, error)
}
