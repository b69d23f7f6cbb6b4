package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the money was received.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCard         PaymentMethod = "CARD"
	MethodOnline       PaymentMethod = "ONLINE"
	MethodCheque       PaymentMethod = "CHEQUE"
)

// Payment is money received from a student.
type Payment struct {
	PaymentID     string              `json:"paymentID"`
	StudentID     string              `json:"studentID"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        PaymentMethod       `json:"method"`
	Reference     string              `json:"reference"`
	PaymentDate   time.Time           `json:"paymentDate"`
	Notes         string              `json:"notes"`
	LedgerEntryID *string             `json:"ledgerEntryID,omitempty"`
	Allocations   []PaymentAllocation `json:"allocations"`
	AuditFields
}

// AllocatedAmount is the sum of the payment's invoice allocations.
func (p *Payment) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// PaymentAllocation assigns part of a payment to one invoice.
type PaymentAllocation struct {
	AllocationID string          `json:"allocationID"`
	PaymentID    string          `json:"paymentID"`
	InvoiceID    string          `json:"invoiceID"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RecordPaymentResult is the outcome of recording a single payment.
type RecordPaymentResult struct {
	Payment     *Payment        `json:"payment"`
	Unallocated decimal.Decimal `json:"unallocated"`
	Balance     StudentBalance  `json:"balance"`
}
