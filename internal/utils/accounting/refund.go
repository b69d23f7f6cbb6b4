package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundBreakdown is the arithmetic behind a checkout refund.
type RefundBreakdown struct {
	DaysInMonth int
	DaysUsed    int
	UnusedDays  int
	DailyRate   decimal.Decimal
	Amount      decimal.Decimal
}

// CheckoutRefund prorates the unused days of the checkout month. The checkout day
// itself counts as used, so checking out on the last day refunds nothing.
func CheckoutRefund(monthlyRate decimal.Decimal, checkoutDate time.Time) RefundBreakdown {
	total := DaysInMonth(checkoutDate)
	used := checkoutDate.Day()
	unused := total - used
	if unused < 0 {
		unused = 0
	}
	b := RefundBreakdown{
		DaysInMonth: total,
		DaysUsed:    used,
		UnusedDays:  unused,
		DailyRate:   monthlyRate.Div(decimal.NewFromInt(int64(total))).Round(2),
		Amount:      decimal.Zero,
	}
	if unused > 0 && monthlyRate.IsPositive() {
		b.Amount = ProrateDays(monthlyRate, unused, total)
	}
	return b
}
