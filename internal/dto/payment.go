package dto

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationRequest targets part of a payment at one invoice.
type AllocationRequest struct {
	InvoiceID string          `json:"invoiceID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
}

// RecordPaymentRequest defines the data needed to record a payment.
// InvoiceIDs and Allocations are mutually exclusive; with neither, the payment is
// applied to open invoices oldest due date first.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal      `json:"amount" swaggertype:"string"`
	Method      domain.PaymentMethod `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CARD ONLINE CHEQUE"`
	Reference   string               `json:"reference" binding:"max=100"`
	PaymentDate string               `json:"paymentDate" binding:"omitempty,datetime=2006-01-02"`
	Notes       string               `json:"notes" binding:"max=500"`
	InvoiceIDs  []string             `json:"invoiceIDs" binding:"omitempty,dive,required"`
	Allocations []AllocationRequest  `json:"allocations" binding:"omitempty,dive"`
}

// BatchPaymentItem is one payment in a batch.
type BatchPaymentItem struct {
	StudentID string `json:"studentID" binding:"required"`
	RecordPaymentRequest
}

// RecordPaymentsRequest records several payments, each independently.
type RecordPaymentsRequest struct {
	Payments []BatchPaymentItem `json:"payments" binding:"required,min=1,max=200,dive"`
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// AllocationResponse defines the data returned for an allocation.
type AllocationResponse struct {
	AllocationID string          `json:"allocationID"`
	InvoiceID    string          `json:"invoiceID"`
	Amount       decimal.Decimal `json:"amount"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID     string               `json:"paymentID"`
	StudentID     string               `json:"studentID"`
	Amount        decimal.Decimal      `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	Reference     string               `json:"reference,omitempty"`
	PaymentDate   time.Time            `json:"paymentDate"`
	Notes         string               `json:"notes,omitempty"`
	LedgerEntryID *string              `json:"ledgerEntryID,omitempty"`
	Allocations   []AllocationResponse `json:"allocations"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// RecordPaymentResponse is returned after a payment is recorded.
type RecordPaymentResponse struct {
	Payment     PaymentResponse `json:"payment"`
	Unallocated decimal.Decimal `json:"unallocated"`
	Balance     BalanceResponse `json:"balance"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	allocs := make([]AllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocs[i] = AllocationResponse{AllocationID: a.AllocationID, InvoiceID: a.InvoiceID, Amount: a.Amount}
	}
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		StudentID:     p.StudentID,
		Amount:        p.Amount,
		Method:        p.Method,
		Reference:     p.Reference,
		PaymentDate:   p.PaymentDate,
		Notes:         p.Notes,
		LedgerEntryID: p.LedgerEntryID,
		Allocations:   allocs,
		CreatedAt:     p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments.
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return res
}

// ToRecordPaymentResponse converts a payment result.
func ToRecordPaymentResponse(r *domain.RecordPaymentResult) RecordPaymentResponse {
	return RecordPaymentResponse{
		Payment:     ToPaymentResponse(r.Payment),
		Unallocated: r.Unallocated,
		Balance:     ToBalanceResponse(&r.Balance),
	}
}
