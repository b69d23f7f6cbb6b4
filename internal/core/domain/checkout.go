package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundQuote is the prorated refund for unused days in the checkout month.
type RefundQuote struct {
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

// CheckoutResult is the outcome of checking a student out.
type CheckoutResult struct {
	Student      *Student      `json:"student"`
	Quote        RefundQuote   `json:"quote"`
	DuesDeferred bool          `json:"duesDeferred"`
	RefundPosted bool          `json:"refundPosted"`
	Entries      []LedgerEntry `json:"entries"`
}

// BatchItemResult is one row of a batch operation's per-item report.
type BatchItemResult struct {
	Index     int    `json:"index"`
	StudentID string `json:"studentID"`
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
}
