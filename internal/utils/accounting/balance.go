package accounting

import (
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTypeOf classifies a signed balance: positive owes money, negative is credit.
func BalanceTypeOf(balance decimal.Decimal) domain.BalanceType {
	switch balance.Sign() {
	case 1:
		return domain.BalanceDr
	case -1:
		return domain.BalanceCr
	default:
		return domain.BalanceNil
	}
}

// AdvanceFrom is the credit held for a balance, zero unless the balance is negative.
func AdvanceFrom(balance decimal.Decimal) decimal.Decimal {
	if balance.IsNegative() {
		return balance.Neg()
	}
	return decimal.Zero
}

// Derivation is the result of walking a student's entries in entry-number order.
type Derivation struct {
	Entries     []domain.LedgerEntry
	Changed     []int
	Balance     decimal.Decimal
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// DeriveRunningBalances recomputes the running balance after every entry. Entries must
// be sorted by entry number. Entries that do not contribute carry the running balance
// at their position unchanged. Changed lists the indexes whose cached balance or
// balance type differ from the derived value.
func DeriveRunningBalances(entries []domain.LedgerEntry) Derivation {
	d := Derivation{
		Entries:     make([]domain.LedgerEntry, len(entries)),
		Balance:     decimal.Zero,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for i, e := range entries {
		if e.Contributes() {
			d.Balance = d.Balance.Add(e.Net())
			d.TotalDebit = d.TotalDebit.Add(e.Debit)
			d.TotalCredit = d.TotalCredit.Add(e.Credit)
		}
		bt := BalanceTypeOf(d.Balance)
		if !e.Balance.Equal(d.Balance) || e.BalanceType != bt {
			d.Changed = append(d.Changed, i)
		}
		e.Balance = d.Balance
		e.BalanceType = bt
		d.Entries[i] = e
	}
	return d
}
