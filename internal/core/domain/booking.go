package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the state of a booking request.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// BookingRequest is an application for a room that becomes a Student on approval.
type BookingRequest struct {
	BookingID      string           `json:"bookingID"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	RoomNumber     string           `json:"roomNumber"`
	MonthlyRate    decimal.Decimal  `json:"monthlyRate"`
	FoodRate       *decimal.Decimal `json:"foodRate,omitempty"`
	RequestedStart time.Time        `json:"requestedStart"`
	Status         BookingStatus    `json:"status"`
	DecisionNote   string           `json:"decisionNote"`
	StudentID      *string          `json:"studentID,omitempty"`
	AuditFields
}

// ApproveBookingResult is returned when a booking is approved.
type ApproveBookingResult struct {
	Booking *BookingRequest `json:"booking"`
	Student *Student        `json:"student"`
	Invoice *Invoice        `json:"invoice"`
}
