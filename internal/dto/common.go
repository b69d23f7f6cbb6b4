package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// MonthLayout is the wire format for billing months.
	MonthLayout = "2006-01"
)

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field, fmt.Sprintf("must be a date in %s format", DateLayout))
	}
	return t, nil
}

// ParseOptionalDate returns fallback when value is empty.
func ParseOptionalDate(field, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return ParseDate(field, value)
}

// ParseMonth parses a YYYY-MM string into the first of that month, UTC.
func ParseMonth(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field, fmt.Sprintf("must be a month in %s format", MonthLayout))
	}
	return t, nil
}

// ErrorResponse is the body returned for failed requests.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

// BatchItemResponse is one row of a batch operation's result.
type BatchItemResponse struct {
	Index     int    `json:"index"`
	StudentID string `json:"studentID"`
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchResponse reports the per-item outcome of a batch operation.
type BatchResponse struct {
	Succeeded int                 `json:"succeeded"`
	Skipped   int                 `json:"skipped"`
	Failed    int                 `json:"failed"`
	Items     []BatchItemResponse `json:"items"`
}
