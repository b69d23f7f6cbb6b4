package services

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
)

// InvoiceReaderSvc defines read operations for invoices
type InvoiceReaderSvc interface {
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListStudentInvoices(ctx context.Context, studentID string, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error)
}

// InvoiceWriterSvc defines write operations for invoices
type InvoiceWriterSvc interface {
	// GenerateInvoice bills one student for one month. A second call for the same
	// period reports Skipped with the existing invoice id.
	GenerateInvoice(ctx context.Context, studentID string, month time.Time, actorID string) (*domain.GenerateInvoiceResult, error)

	// GenerateMonthlyInvoices bills every active student and reports per-student results.
	GenerateMonthlyInvoices(ctx context.Context, month time.Time, actorID string) ([]domain.BatchItemResult, error)

	CancelInvoice(ctx context.Context, invoiceID string, reason string, actorID string) (*domain.Invoice, error)
	MarkOverdueInvoices(ctx context.Context, asOf time.Time, actorID string) (int64, error)
}

// InvoiceSvcFacade combines all invoice-related service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
}
