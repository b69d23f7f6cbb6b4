package accounting

import (
	"fmt"
	"net/http"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// OpenBalance is an invoice still carrying a balance due, in allocation order.
type OpenBalance struct {
	InvoiceID  string
	BalanceDue decimal.Decimal
}

// Allocation is the share of a payment assigned to one invoice.
type Allocation struct {
	InvoiceID string
	Amount    decimal.Decimal
}

// AllocateGreedy walks the open balances in order and pays each as far as the amount
// allows. The unallocated remainder is returned and becomes advance credit.
func AllocateGreedy(amount decimal.Decimal, open []OpenBalance) ([]Allocation, decimal.Decimal) {
	remaining := amount
	allocations := make([]Allocation, 0, len(open))
	for _, ob := range open {
		if !remaining.IsPositive() {
			break
		}
		if !ob.BalanceDue.IsPositive() {
			continue
		}
		share := decimal.Min(remaining, ob.BalanceDue)
		allocations = append(allocations, Allocation{InvoiceID: ob.InvoiceID, Amount: share})
		remaining = remaining.Sub(share)
	}
	return allocations, remaining
}

// TotalAllocated sums the allocation amounts.
func TotalAllocated(allocations []Allocation) decimal.Decimal {
	return lo.Reduce(allocations, func(acc decimal.Decimal, a Allocation, _ int) decimal.Decimal {
		return acc.Add(a.Amount)
	}, decimal.Zero)
}

// InvoiceNotOpenError reports an allocation target that has no balance due for the
// student. Callers decide whether that means unknown or closed.
type InvoiceNotOpenError struct {
	InvoiceID string
}

func (e *InvoiceNotOpenError) Error() string {
	return fmt.Sprintf("invoice %s is not open for this student", e.InvoiceID)
}

func (e *InvoiceNotOpenError) Unwrap() error { return apperrors.ErrNotFound }

// ValidateExplicitAllocations checks caller-supplied allocations against the payment
// amount and the current balance due of each invoice. It returns the unallocated
// remainder when the allocations are acceptable.
func ValidateExplicitAllocations(amount decimal.Decimal, requested []Allocation, dues map[string]decimal.Decimal) (decimal.Decimal, error) {
	verr := &apperrors.ValidationError{}
	seen := make(map[string]struct{}, len(requested))
	for i, a := range requested {
		field := fmt.Sprintf("allocations[%d]", i)
		if a.InvoiceID == "" {
			verr.Add(field+".invoiceID", "is required")
			continue
		}
		if _, dup := seen[a.InvoiceID]; dup {
			verr.Add(field+".invoiceID", "duplicate invoice")
		}
		seen[a.InvoiceID] = struct{}{}
		if !a.Amount.IsPositive() {
			verr.Add(field+".amount", "must be greater than zero")
		}
	}
	if verr.HasErrors() {
		return decimal.Zero, verr
	}

	total := TotalAllocated(requested)
	if total.GreaterThan(amount) {
		return decimal.Zero, &apperrors.OverAllocationError{
			PaymentAmount:  amount,
			RequestedTotal: total,
			InvoiceIDs:     lo.Map(requested, func(a Allocation, _ int) string { return a.InvoiceID }),
		}
	}

	for _, a := range requested {
		due, ok := dues[a.InvoiceID]
		if !ok {
			return decimal.Zero, &InvoiceNotOpenError{InvoiceID: a.InvoiceID}
		}
		if a.Amount.GreaterThan(due) {
			return decimal.Zero, apperrors.NewAppError(http.StatusConflict,
				fmt.Sprintf("allocation %s exceeds balance due %s on invoice %s", a.Amount, due, a.InvoiceID),
				apperrors.ErrConflict).WithDetails(map[string]any{
				"invoiceID":  a.InvoiceID,
				"requested":  a.Amount.String(),
				"balanceDue": due.String(),
			})
		}
	}
	return amount.Sub(total), nil
}
