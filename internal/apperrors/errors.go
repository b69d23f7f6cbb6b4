package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the request conflicts with the current state of a resource.
var ErrConflict = errors.New("conflict with current state")

// ErrOverAllocation indicates that payment allocations exceed what can be allocated.
// It is a specialisation of ErrConflict.
var ErrOverAllocation = fmt.Errorf("%w: over-allocation", ErrConflict)

// ErrForbidden indicates the caller may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected server-side failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with an HTTP-ish status code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
	Details map[string]any
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details to the error payload.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// ValidationError carries field-level validation messages.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records another field failure and returns the receiver.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// OverAllocationError is returned when explicit allocations exceed the payment amount.
type OverAllocationError struct {
	PaymentAmount  decimal.Decimal
	RequestedTotal decimal.Decimal
	InvoiceIDs     []string
}

func (e *OverAllocationError) Error() string {
	return fmt.Sprintf("allocations total %s exceeds payment amount %s", e.RequestedTotal.String(), e.PaymentAmount.String())
}

func (e *OverAllocationError) Unwrap() error {
	return ErrOverAllocation
}

// DuplicatePeriodError is returned when an invoice already exists for the billing period.
type DuplicatePeriodError struct {
	StudentID         string
	BillingMonth      string
	ExistingInvoiceID string
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("invoice %s already exists for student %s in %s", e.ExistingInvoiceID, e.StudentID, e.BillingMonth)
}

func (e *DuplicatePeriodError) Unwrap() error {
	return ErrConflict
}
