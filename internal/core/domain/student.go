package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentStatus is the lifecycle state of a resident.
type StudentStatus string

const (
	StudentActive    StudentStatus = "ACTIVE"
	StudentInactive  StudentStatus = "INACTIVE"
	StudentSuspended StudentStatus = "SUSPENDED"
	StudentGraduated StudentStatus = "GRADUATED"
)

// IsValid reports whether s is a known status.
func (s StudentStatus) IsValid() bool {
	switch s {
	case StudentActive, StudentInactive, StudentSuspended, StudentGraduated:
		return true
	}
	return false
}

// Student is a resident created from an approved booking.
// CurrentBalance is positive when the student owes money; AdvanceBalance is the
// credit held when CurrentBalance is negative. Both are written only by the ledger
// recompute.
type Student struct {
	StudentID      string          `json:"studentID"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	RoomNumber     string          `json:"roomNumber"`
	Status         StudentStatus   `json:"status"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	AdvanceBalance decimal.Decimal `json:"advanceBalance"`
	EnrollmentDate time.Time       `json:"enrollmentDate"`
	CheckoutDate   *time.Time      `json:"checkoutDate,omitempty"`
	BookingID      *string         `json:"bookingID,omitempty"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the student has been soft-deleted.
func (s *Student) IsDeleted() bool {
	return s.DeletedAt != nil
}

// HasOutstandingDues reports whether the student owes money.
func (s *Student) HasOutstandingDues() bool {
	return s.CurrentBalance.GreaterThan(decimal.Zero)
}
