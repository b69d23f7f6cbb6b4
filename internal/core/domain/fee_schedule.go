package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeType classifies a charge line.
type FeeType string

const (
	FeeAccommodation FeeType = "ACCOMMODATION"
	FeeFood          FeeType = "FOOD"
	FeeLaundry       FeeType = "LAUNDRY"
	FeeUtilities     FeeType = "UTILITIES"
	FeeOther         FeeType = "OTHER"
)

// FeeRecurrence says whether a line is billed every month or once.
type FeeRecurrence string

const (
	RecurrenceMonthly FeeRecurrence = "MONTHLY"
	RecurrenceOneTime FeeRecurrence = "ONE_TIME"
)

// FeeLine is one charge on a student's fee schedule.
type FeeLine struct {
	FeeLineID   string          `json:"feeLineID"`
	StudentID   string          `json:"studentID"`
	FeeType     FeeType         `json:"feeType"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Recurrence  FeeRecurrence   `json:"recurrence"`
	IsActive    bool            `json:"isActive"`
	BilledAt    *time.Time      `json:"billedAt,omitempty"`
	AuditFields
}

// IsMonthly reports whether the line recurs monthly.
func (f FeeLine) IsMonthly() bool {
	return f.Recurrence == RecurrenceMonthly
}

// InvoiceItemCategory maps the fee type onto an invoice item category.
func (f FeeLine) InvoiceItemCategory() string {
	return string(f.FeeType)
}
