package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its items.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoicesByStudent returns a page of a student's invoices, newest billing
	// month first. The cursor is the (billing month, created at) of the last row seen.
	ListInvoicesByStudent(ctx context.Context, studentID string, status *domain.InvoiceStatus, limit int, afterMonth *time.Time, afterCreatedAt *time.Time) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists an invoice and its items and returns the invoice number
	// the database assigned.
	SaveInvoice(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) (string, error)

	UpdateInvoiceStatus(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, notes string, userID string, now time.Time) error

	// MarkOverdue moves open invoices whose due date is before asOf to Overdue.
	MarkOverdue(ctx context.Context, asOf time.Time, userID string, now time.Time) (int64, error)
}

// InvoiceTransactionSupport defines locked reads and payment writes used inside transactions.
type InvoiceTransactionSupport interface {
	// FindInvoiceByStudentAndMonth returns the non-cancelled invoice for the period, or ErrNotFound.
	FindInvoiceByStudentAndMonth(ctx context.Context, tx pgx.Tx, studentID string, billingMonth time.Time) (*domain.Invoice, error)

	// ListOpenInvoicesForUpdate locks the student's open invoices, ordered by due date then creation.
	ListOpenInvoicesForUpdate(ctx context.Context, tx pgx.Tx, studentID string) ([]domain.Invoice, error)

	// FindInvoiceByIDForUpdate locks one invoice row.
	FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error)

	// UpdateInvoicePayments writes paid amount and status for each invoice.
	UpdateInvoicePayments(ctx context.Context, tx pgx.Tx, invoices []domain.Invoice, userID string, now time.Time) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	InvoiceTransactionSupport
}
