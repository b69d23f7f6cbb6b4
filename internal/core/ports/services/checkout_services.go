package services

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
)

// CheckoutSvcFacade defines checkout operations
type CheckoutSvcFacade interface {
	CalculateCheckoutRefund(ctx context.Context, studentID string, checkoutDate time.Time) (*domain.RefundQuote, error)
	CheckoutStudent(ctx context.Context, studentID string, req dto.CheckoutRequest, actorID string) (*domain.CheckoutResult, error)
}
