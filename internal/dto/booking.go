package dto

import (
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBookingRequest defines the data needed to submit a booking.
type CreateBookingRequest struct {
	Name           string           `json:"name" binding:"required,max=200"`
	Email          string           `json:"email" binding:"required,email"`
	Phone          string           `json:"phone" binding:"required,max=32"`
	RoomNumber     string           `json:"roomNumber" binding:"required,max=32"`
	MonthlyRate    decimal.Decimal  `json:"monthlyRate" swaggertype:"string"`
	FoodRate       *decimal.Decimal `json:"foodRate" swaggertype:"string"` // Optional
	RequestedStart string           `json:"requestedStart" binding:"required,datetime=2006-01-02"`
}

// ApproveBookingRequest optionally overrides the enrollment date (defaults to the requested start).
type ApproveBookingRequest struct {
	EnrollmentDate string `json:"enrollmentDate" binding:"omitempty,datetime=2006-01-02"`
}

// RejectBookingRequest carries the reason for a rejection.
type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListBookingsParams defines query parameters for listing bookings.
type ListBookingsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"`
	Limit  int    `form:"limit,default=20"`
	Offset int    `form:"offset,default=0"`
}

// BookingResponse defines the data returned for a booking.
type BookingResponse struct {
	BookingID      string               `json:"bookingID"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	RoomNumber     string               `json:"roomNumber"`
	MonthlyRate    decimal.Decimal      `json:"monthlyRate"`
	FoodRate       *decimal.Decimal     `json:"foodRate,omitempty"`
	RequestedStart time.Time            `json:"requestedStart"`
	Status         domain.BookingStatus `json:"status"`
	DecisionNote   string               `json:"decisionNote,omitempty"`
	StudentID      *string              `json:"studentID,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	LastUpdatedAt  time.Time            `json:"lastUpdatedAt"`
}

// ApproveBookingResponse bundles the records created by an approval.
type ApproveBookingResponse struct {
	Booking BookingResponse  `json:"booking"`
	Student StudentResponse  `json:"student"`
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

// ToBookingResponse converts a domain.BookingRequest to BookingResponse DTO.
func ToBookingResponse(b *domain.BookingRequest) BookingResponse {
	return BookingResponse{
		BookingID:      b.BookingID,
		Name:           b.Name,
		Email:          b.Email,
		Phone:          b.Phone,
		RoomNumber:     b.RoomNumber,
		MonthlyRate:    b.MonthlyRate,
		FoodRate:       b.FoodRate,
		RequestedStart: b.RequestedStart,
		Status:         b.Status,
		DecisionNote:   b.DecisionNote,
		StudentID:      b.StudentID,
		CreatedAt:      b.CreatedAt,
		LastUpdatedAt:  b.LastUpdatedAt,
	}
}

// ToBookingResponses converts a slice of bookings.
func ToBookingResponses(bookings []domain.BookingRequest) []BookingResponse {
	res := make([]BookingResponse, len(bookings))
	for i := range bookings {
		res[i] = ToBookingResponse(&bookings[i])
	}
	return res
}

// ToApproveBookingResponse converts the result of an approval.
func ToApproveBookingResponse(r *domain.ApproveBookingResult) ApproveBookingResponse {
	resp := ApproveBookingResponse{
		Booking: ToBookingResponse(r.Booking),
		Student: ToStudentResponse(r.Student),
	}
	if r.Invoice != nil {
		inv := ToInvoiceResponse(r.Invoice)
		resp.Invoice = &inv
	}
	return resp
}
