package dto

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyDiscountRequest defines a one-time discount. Exactly one of Amount or
// Percentage must be set; MaxAmount caps a percentage discount.
type ApplyDiscountRequest struct {
	Amount     *decimal.Decimal `json:"amount" swaggertype:"string"`
	Percentage *decimal.Decimal `json:"percentage" swaggertype:"string"`
	MaxAmount  *decimal.Decimal `json:"maxAmount" swaggertype:"string"`
	Reason     string           `json:"reason" binding:"required,max=500"`
	Reference  string           `json:"reference" binding:"max=100"`
}

// DiscountResponse defines the data returned for a discount.
type DiscountResponse struct {
	DiscountID    string                `json:"discountID"`
	StudentID     string                `json:"studentID"`
	Amount        decimal.Decimal       `json:"amount"`
	Percentage    *decimal.Decimal      `json:"percentage,omitempty"`
	Reason        string                `json:"reason"`
	Reference     string                `json:"reference"`
	Status        domain.DiscountStatus `json:"status"`
	LedgerEntryID *string               `json:"ledgerEntryID,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
}

// ToDiscountResponse converts a domain.Discount to DiscountResponse DTO.
func ToDiscountResponse(d *domain.Discount) DiscountResponse {
	return DiscountResponse{
		DiscountID:    d.DiscountID,
		StudentID:     d.StudentID,
		Amount:        d.Amount,
		Percentage:    d.Percentage,
		Reason:        d.Reason,
		Reference:     d.Reference,
		Status:        d.Status,
		LedgerEntryID: d.LedgerEntryID,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}
}

// ToDiscountResponses converts a slice of discounts.
func ToDiscountResponses(discounts []domain.Discount) []DiscountResponse {
	res := make([]DiscountResponse, len(discounts))
	for i := range discounts {
		res[i] = ToDiscountResponse(&discounts[i])
	}
	return res
}
