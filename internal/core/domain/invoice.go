package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoicePending       InvoiceStatus = "PENDING"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceOverdue       InvoiceStatus = "OVERDUE"
	InvoiceCancelled     InvoiceStatus = "CANCELLED"
)

// IsOpen reports whether payments can still be allocated to an invoice in this status.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoicePending || s == InvoicePartiallyPaid || s == InvoiceOverdue
}

// Invoice is a monthly bill for a single student.
type Invoice struct {
	InvoiceID      string          `json:"invoiceID"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	StudentID      string          `json:"studentID"`
	BillingMonth   time.Time       `json:"billingMonth"`
	BillingDate    time.Time       `json:"billingDate"`
	DueDate        time.Time       `json:"dueDate"`
	Total          decimal.Decimal `json:"total"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	AdvanceApplied decimal.Decimal `json:"advanceApplied"`
	Status         InvoiceStatus   `json:"status"`
	IsProrated     bool            `json:"isProrated"`
	LedgerEntryID  *string         `json:"ledgerEntryID,omitempty"`
	Notes          string          `json:"notes"`
	Items          []InvoiceItem   `json:"items"`
	AuditFields
}

// BalanceDue is the amount still owed on the invoice.
func (i *Invoice) BalanceDue() decimal.Decimal {
	return i.Total.Sub(i.PaidAmount)
}

// InvoiceItem is a single charge line on an invoice.
type InvoiceItem struct {
	InvoiceItemID string          `json:"invoiceItemID"`
	InvoiceID     string          `json:"invoiceID"`
	FeeLineID     *string         `json:"feeLineID,omitempty"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	UnitAmount    decimal.Decimal `json:"unitAmount"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
}

// InvoiceGenerationStatus reports what happened to a generation request.
type InvoiceGenerationStatus string

const (
	GenerationGenerated InvoiceGenerationStatus = "GENERATED"
	GenerationSkipped   InvoiceGenerationStatus = "SKIPPED"
	GenerationFailed    InvoiceGenerationStatus = "FAILED"
)

// GenerateInvoiceResult is the outcome of a single generation request.
type GenerateInvoiceResult struct {
	Status            InvoiceGenerationStatus `json:"status"`
	Invoice           *Invoice                `json:"invoice,omitempty"`
	ExistingInvoiceID string                  `json:"existingInvoiceID,omitempty"`
}
