package domain

import (
	"github.com/shopspring/decimal"
)

// DiscountStatus is the lifecycle state of a discount.
type DiscountStatus string

const (
	DiscountActive    DiscountStatus = "ACTIVE"
	DiscountExpired   DiscountStatus = "EXPIRED"
	DiscountCancelled DiscountStatus = "CANCELLED"
)

// Discount is a one-time reduction posted straight to a student's ledger.
type Discount struct {
	DiscountID    string           `json:"discountID"`
	StudentID     string           `json:"studentID"`
	Amount        decimal.Decimal  `json:"amount"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	Reason        string           `json:"reason"`
	Reference     string           `json:"reference"`
	Status        DiscountStatus   `json:"status"`
	LedgerEntryID *string          `json:"ledgerEntryID,omitempty"`
	AuditFields
}
