package dto

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GenerateInvoiceRequest asks for a student's invoice for one billing month.
type GenerateInvoiceRequest struct {
	Month string `json:"month" binding:"required,datetime=2006-01"`
}

// GenerateMonthlyInvoicesRequest asks for invoices for every active student.
type GenerateMonthlyInvoicesRequest struct {
	Month string `json:"month" binding:"required,datetime=2006-01"`
}

// CancelInvoiceRequest carries the reason for a cancellation.
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// MarkOverdueRequest optionally sets the reference date (defaults to today).
type MarkOverdueRequest struct {
	AsOf string `json:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// MarkOverdueResponse reports how many invoices moved to overdue.
type MarkOverdueResponse struct {
	AsOf    time.Time `json:"asOf"`
	Updated int64     `json:"updated"`
}

// ListInvoicesParams defines query parameters for listing a student's invoices.
type ListInvoicesParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=DRAFT PENDING PARTIALLY_PAID PAID OVERDUE CANCELLED"`
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// InvoiceItemResponse defines the data returned for an invoice line.
type InvoiceItemResponse struct {
	InvoiceItemID string          `json:"invoiceItemID"`
	FeeLineID     *string         `json:"feeLineID,omitempty"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	UnitAmount    decimal.Decimal `json:"unitAmount"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID      string                `json:"invoiceID"`
	InvoiceNumber  string                `json:"invoiceNumber"`
	StudentID      string                `json:"studentID"`
	BillingMonth   string                `json:"billingMonth"`
	BillingDate    time.Time             `json:"billingDate"`
	DueDate        time.Time             `json:"dueDate"`
	Total          decimal.Decimal       `json:"total"`
	PaidAmount     decimal.Decimal       `json:"paidAmount"`
	AdvanceApplied decimal.Decimal       `json:"advanceApplied"`
	BalanceDue     decimal.Decimal       `json:"balanceDue"`
	Status         domain.InvoiceStatus  `json:"status"`
	IsProrated     bool                  `json:"isProrated"`
	Notes          string                `json:"notes,omitempty"`
	Items          []InvoiceItemResponse `json:"items"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// GenerateInvoiceResponse reports the outcome of a generation request.
type GenerateInvoiceResponse struct {
	Status            domain.InvoiceGenerationStatus `json:"status"`
	Invoice           *InvoiceResponse               `json:"invoice,omitempty"`
	ExistingInvoiceID string                         `json:"existingInvoiceID,omitempty"`
}

// ListInvoicesResponse wraps a page of invoices.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse DTO.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			InvoiceItemID: it.InvoiceItemID,
			FeeLineID:     it.FeeLineID,
			Description:   it.Description,
			Category:      it.Category,
			UnitAmount:    it.UnitAmount,
			Quantity:      it.Quantity,
			Amount:        it.Amount,
		}
	}
	return InvoiceResponse{
		InvoiceID:      inv.InvoiceID,
		InvoiceNumber:  inv.InvoiceNumber,
		StudentID:      inv.StudentID,
		BillingMonth:   inv.BillingMonth.Format(MonthLayout),
		BillingDate:    inv.BillingDate,
		DueDate:        inv.DueDate,
		Total:          inv.Total,
		PaidAmount:     inv.PaidAmount,
		AdvanceApplied: inv.AdvanceApplied,
		BalanceDue:     inv.BalanceDue(),
		Status:         inv.Status,
		IsProrated:     inv.IsProrated,
		Notes:          inv.Notes,
		Items:          items,
		CreatedAt:      inv.CreatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices.
func ToInvoiceResponses(invoices []domain.Invoice) []InvoiceResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		res[i] = ToInvoiceResponse(&invoices[i])
	}
	return res
}

// ToGenerateInvoiceResponse converts a generation result.
func ToGenerateInvoiceResponse(r *domain.GenerateInvoiceResult) GenerateInvoiceResponse {
	resp := GenerateInvoiceResponse{Status: r.Status, ExistingInvoiceID: r.ExistingInvoiceID}
	if r.Invoice != nil {
		inv := ToInvoiceResponse(r.Invoice)
		resp.Invoice = &inv
	}
	return resp
}

// ToBatchResponse converts batch item results and tallies them.
func ToBatchResponse(items []domain.BatchItemResult) BatchResponse {
	resp := BatchResponse{Items: make([]BatchItemResponse, len(items))}
	for i, it := range items {
		resp.Items[i] = BatchItemResponse(it)
		switch it.Status {
		case string(domain.GenerationSkipped):
			resp.Skipped++
		case string(domain.GenerationFailed):
			resp.Failed++
		default:
			resp.Succeeded++
		}
	}
	return resp
}
