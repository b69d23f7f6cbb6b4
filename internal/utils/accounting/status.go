package accounting

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceStatusFor derives the payment status of an invoice from its amounts.
// An invoice with nothing left to pay is Paid; otherwise it is Overdue once the due
// date has passed, PartiallyPaid when something has been paid, and Pending otherwise.
func InvoiceStatusFor(total, paid decimal.Decimal, dueDate, asOf time.Time) domain.InvoiceStatus {
	if paid.GreaterThanOrEqual(total) {
		return domain.InvoicePaid
	}
	if domain.DateOnly(asOf).After(domain.DateOnly(dueDate)) {
		return domain.InvoiceOverdue
	}
	if paid.IsPositive() {
		return domain.InvoicePartiallyPaid
	}
	return domain.InvoicePending
}
