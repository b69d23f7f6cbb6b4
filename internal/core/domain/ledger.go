package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType is the business event behind a ledger entry.
type LedgerEntryType string

const (
	EntryInvoice    LedgerEntryType = "INVOICE"
	EntryPayment    LedgerEntryType = "PAYMENT"
	EntryDiscount   LedgerEntryType = "DISCOUNT"
	EntryAdjustment LedgerEntryType = "ADJUSTMENT"
	EntryRefund     LedgerEntryType = "REFUND"
)

// BalanceType is the sign of a balance: Dr owes money, Cr holds credit.
type BalanceType string

const (
	BalanceDr  BalanceType = "DR"
	BalanceCr  BalanceType = "CR"
	BalanceNil BalanceType = "NIL"
)

// LedgerEntry is one immutable accounting record for a student.
// Balance and BalanceType cache the running derivation and are rewritten by the
// recompute, never patched.
type LedgerEntry struct {
	LedgerEntryID string          `json:"ledgerEntryID"`
	EntryNumber   int64           `json:"entryNumber"`
	StudentID     string          `json:"studentID"`
	EntryDate     time.Time       `json:"entryDate"`
	Type          LedgerEntryType `json:"type"`
	Description   string          `json:"description"`
	ReferenceID   *string         `json:"referenceID,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
	BalanceType   BalanceType     `json:"balanceType"`
	IsReversed    bool            `json:"isReversed"`
	ReversalDate  *time.Time      `json:"reversalDate,omitempty"`
	ReversalOf    *string         `json:"reversalOf,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// Contributes reports whether the entry counts toward the student's balance.
// Both halves of a reversal pair are excluded, so together they net to zero.
func (e LedgerEntry) Contributes() bool {
	return !e.IsReversed && e.ReversalOf == nil
}

// Net is debit minus credit.
func (e LedgerEntry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// StudentBalance is a derived view of a student's position.
type StudentBalance struct {
	StudentID      string          `json:"studentID"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	AdvanceBalance decimal.Decimal `json:"advanceBalance"`
	BalanceType    BalanceType     `json:"balanceType"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	EntryCount     int             `json:"entryCount"`
}

// BalanceReconciliation reports the result of recomputing a stored balance.
type BalanceReconciliation struct {
	StudentID      string          `json:"studentID"`
	StoredBalance  decimal.Decimal `json:"storedBalance"`
	DerivedBalance decimal.Decimal `json:"derivedBalance"`
	Drifted        bool            `json:"drifted"`
	EntriesUpdated int             `json:"entriesUpdated"`
}
