package dto

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListStudentsParams defines query parameters for listing students.
type ListStudentsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED GRADUATED"`
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
}

// UpdateStudentStatusRequest changes a student's lifecycle status.
type UpdateStudentStatusRequest struct {
	Status domain.StudentStatus `json:"status" binding:"required,oneof=ACTIVE INACTIVE SUSPENDED GRADUATED"`
}

// StudentResponse defines the data returned for a student.
type StudentResponse struct {
	StudentID      string               `json:"studentID"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	RoomNumber     string               `json:"roomNumber"`
	Status         domain.StudentStatus `json:"status"`
	CurrentBalance decimal.Decimal      `json:"currentBalance"`
	AdvanceBalance decimal.Decimal      `json:"advanceBalance"`
	EnrollmentDate time.Time            `json:"enrollmentDate"`
	CheckoutDate   *time.Time           `json:"checkoutDate,omitempty"`
	BookingID      *string              `json:"bookingID,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	LastUpdatedAt  time.Time            `json:"lastUpdatedAt"`
}

// ToStudentResponse converts a domain.Student to StudentResponse DTO.
func ToStudentResponse(s *domain.Student) StudentResponse {
	return StudentResponse{
		StudentID:      s.StudentID,
		Name:           s.Name,
		Email:          s.Email,
		Phone:          s.Phone,
		RoomNumber:     s.RoomNumber,
		Status:         s.Status,
		CurrentBalance: s.CurrentBalance,
		AdvanceBalance: s.AdvanceBalance,
		EnrollmentDate: s.EnrollmentDate,
		CheckoutDate:   s.CheckoutDate,
		BookingID:      s.BookingID,
		CreatedAt:      s.CreatedAt,
		LastUpdatedAt:  s.LastUpdatedAt,
	}
}

// ToStudentResponses converts a slice of students.
func ToStudentResponses(students []domain.Student) []StudentResponse {
	res := make([]StudentResponse, len(students))
	for i := range students {
		res[i] = ToStudentResponse(&students[i])
	}
	return res
}

// AddFeeLineRequest adds a charge to a student's fee schedule.
type AddFeeLineRequest struct {
	FeeType     domain.FeeType       `json:"feeType" binding:"required,oneof=ACCOMMODATION FOOD LAUNDRY UTILITIES OTHER"`
	Description string               `json:"description" binding:"max=200"`
	Amount      decimal.Decimal      `json:"amount" swaggertype:"string"`
	Recurrence  domain.FeeRecurrence `json:"recurrence" binding:"required,oneof=MONTHLY ONE_TIME"`
}

// ListFeeLinesParams defines query parameters for listing fee lines.
type ListFeeLinesParams struct {
	ActiveOnly bool `form:"activeOnly,default=true"`
}

// FeeLineResponse defines the data returned for a fee line.
type FeeLineResponse struct {
	FeeLineID   string               `json:"feeLineID"`
	StudentID   string               `json:"studentID"`
	FeeType     domain.FeeType       `json:"feeType"`
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	Recurrence  domain.FeeRecurrence `json:"recurrence"`
	IsActive    bool                 `json:"isActive"`
	BilledAt    *time.Time           `json:"billedAt,omitempty"`
}

// ToFeeLineResponses converts a slice of fee lines.
func ToFeeLineResponses(lines []domain.FeeLine) []FeeLineResponse {
	res := make([]FeeLineResponse, len(lines))
	for i, l := range lines {
		res[i] = ToFeeLineResponse(&l)
	}
	return res
}

// ToFeeLineResponse converts a domain.FeeLine to FeeLineResponse DTO.
func ToFeeLineResponse(l *domain.FeeLine) FeeLineResponse {
	return FeeLineResponse{
		FeeLineID:   l.FeeLineID,
		StudentID:   l.StudentID,
		FeeType:     l.FeeType,
		Description: l.Description,
		Amount:      l.Amount,
		Recurrence:  l.Recurrence,
		IsActive:    l.IsActive,
		BilledAt:    l.BilledAt,
	}
}
