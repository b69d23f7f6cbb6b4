package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundAmount applies the single rounding rule used for every billed amount:
// round half up to whole currency units.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// MonthBounds returns the first and last day of t's month at midnight UTC.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
