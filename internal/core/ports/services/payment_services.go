package services

import (
	"context"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
)

// PaymentReaderSvc defines read operations for payments
type PaymentReaderSvc interface {
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListStudentPayments(ctx context.Context, studentID string, params dto.ListPaymentsParams) ([]domain.Payment, error)
}

// PaymentWriterSvc defines write operations for payments
type PaymentWriterSvc interface {
	RecordPayment(ctx context.Context, studentID string, req dto.RecordPaymentRequest, actorID string) (*domain.RecordPaymentResult, error)

	// RecordPayments records each payment independently and reports per-item results.
	RecordPayments(ctx context.Context, req dto.RecordPaymentsRequest, actorID string) ([]domain.BatchItemResult, error)
}

// PaymentSvcFacade combines all payment-related service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
