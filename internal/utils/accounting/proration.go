package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProrateMonthly returns the charge for a monthly amount in the given billing month.
// When enrollment falls inside that month the charge covers the enrollment day through
// the end of the month; otherwise the full amount is charged. The bool reports
// whether proration was applied.
func ProrateMonthly(monthly decimal.Decimal, enrollment, billingMonth time.Time) (decimal.Decimal, bool) {
	if !SameMonth(enrollment, billingMonth) || enrollment.Day() == 1 {
		return monthly, false
	}
	total := DaysInMonth(billingMonth)
	remaining := total - enrollment.Day() + 1
	return ProrateDays(monthly, remaining, total), true
}

// ProrateDays returns round(monthly × days / total).
func ProrateDays(monthly decimal.Decimal, days, total int) decimal.Decimal {
	if total <= 0 || days <= 0 {
		return decimal.Zero
	}
	if days >= total {
		return monthly
	}
	return RoundAmount(monthly.Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(int64(total))))
}
