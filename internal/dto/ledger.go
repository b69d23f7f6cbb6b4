package dto

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListLedgerParams defines query parameters for reading a student's ledger.
type ListLedgerParams struct {
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// ReverseEntryRequest carries the reason for a reversal.
type ReverseEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// LedgerEntryResponse defines the data returned for a ledger entry.
type LedgerEntryResponse struct {
	LedgerEntryID string                 `json:"ledgerEntryID"`
	EntryNumber   int64                  `json:"entryNumber"`
	EntryDate     time.Time              `json:"entryDate"`
	Type          domain.LedgerEntryType `json:"type"`
	Description   string                 `json:"description"`
	ReferenceID   *string                `json:"referenceID,omitempty"`
	Debit         decimal.Decimal        `json:"debit"`
	Credit        decimal.Decimal        `json:"credit"`
	Balance       decimal.Decimal        `json:"balance"`
	BalanceType   domain.BalanceType     `json:"balanceType"`
	IsReversed    bool                   `json:"isReversed"`
	ReversalDate  *time.Time             `json:"reversalDate,omitempty"`
	ReversalOf    *string                `json:"reversalOf,omitempty"`
	CreatedBy     string                 `json:"createdBy"`
}

// LedgerResponse wraps a page of ledger entries.
type LedgerResponse struct {
	StudentID string                `json:"studentID"`
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	StudentID      string             `json:"studentID"`
	CurrentBalance decimal.Decimal    `json:"currentBalance"`
	AdvanceBalance decimal.Decimal    `json:"advanceBalance"`
	BalanceType    domain.BalanceType `json:"balanceType"`
	TotalDebit     decimal.Decimal    `json:"totalDebit"`
	TotalCredit    decimal.Decimal    `json:"totalCredit"`
	EntryCount     int                `json:"entryCount"`
}

// ReconciliationResponse reports the result of a balance recalculation.
type ReconciliationResponse struct {
	StudentID      string          `json:"studentID"`
	StoredBalance  decimal.Decimal `json:"storedBalance"`
	DerivedBalance decimal.Decimal `json:"derivedBalance"`
	Drifted        bool            `json:"drifted"`
	EntriesUpdated int             `json:"entriesUpdated"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to LedgerEntryResponse DTO.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		LedgerEntryID: e.LedgerEntryID,
		EntryNumber:   e.EntryNumber,
		EntryDate:     e.EntryDate,
		Type:          e.Type,
		Description:   e.Description,
		ReferenceID:   e.ReferenceID,
		Debit:         e.Debit,
		Credit:        e.Credit,
		Balance:       e.Balance,
		BalanceType:   e.BalanceType,
		IsReversed:    e.IsReversed,
		ReversalDate:  e.ReversalDate,
		ReversalOf:    e.ReversalOf,
		CreatedBy:     e.CreatedBy,
	}
}

// ToLedgerEntryResponses converts a slice of entries.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	res := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToLedgerEntryResponse(&entries[i])
	}
	return res
}

// ToBalanceResponse converts a balance snapshot.
func ToBalanceResponse(b *domain.StudentBalance) BalanceResponse {
	return BalanceResponse(*b)
}

// ToReconciliationResponse converts a reconciliation report.
func ToReconciliationResponse(r *domain.BalanceReconciliation) ReconciliationResponse {
	return ReconciliationResponse(*r)
}
