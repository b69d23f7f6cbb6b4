package dto

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CheckoutRefundParams defines query parameters for a refund quote.
type CheckoutRefundParams struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// CheckoutRequest checks a student out.
type CheckoutRequest struct {
	CheckoutDate string `json:"checkoutDate" binding:"required,datetime=2006-01-02"`
	DeferDues    bool   `json:"deferDues"`
	Notes        string `json:"notes" binding:"max=500"`
}

// RefundQuoteResponse defines the data returned for a refund quote.
type RefundQuoteResponse struct {
	StudentID       string          `json:"studentID"`
	CheckoutDate    time.Time       `json:"checkoutDate"`
	MonthlyRate     decimal.Decimal `json:"monthlyRate"`
	DaysInMonth     int             `json:"daysInMonth"`
	DaysUsed        int             `json:"daysUsed"`
	UnusedDays      int             `json:"unusedDays"`
	DailyRate       decimal.Decimal `json:"dailyRate"`
	RefundAmount    decimal.Decimal `json:"refundAmount"`
	OutstandingDues decimal.Decimal `json:"outstandingDues"`
	Eligible        bool            `json:"eligible"`
}

// CheckoutResponse is returned after a checkout.
type CheckoutResponse struct {
	Student      StudentResponse       `json:"student"`
	Quote        RefundQuoteResponse   `json:"quote"`
	DuesDeferred bool                  `json:"duesDeferred"`
	RefundPosted bool                  `json:"refundPosted"`
	Entries      []LedgerEntryResponse `json:"entries"`
}

// ToRefundQuoteResponse converts a refund quote.
func ToRefundQuoteResponse(q *domain.RefundQuote) RefundQuoteResponse {
	return RefundQuoteResponse(*q)
}

// ToCheckoutResponse converts a checkout result.
func ToCheckoutResponse(r *domain.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		Student:      ToStudentResponse(r.Student),
		Quote:        ToRefundQuoteResponse(&r.Quote),
		DuesDeferred: r.DuesDeferred,
		RefundPosted: r.RefundPosted,
		Entries:      ToLedgerEntryResponses(r.Entries),
	}
}
