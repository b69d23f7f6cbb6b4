package services

import (
	"context"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
)

// BookingReaderSvc defines read operations for booking requests
type BookingReaderSvc interface {
	GetBooking(ctx context.Context, bookingID string) (*domain.BookingRequest, error)
	ListBookings(ctx context.Context, params dto.ListBookingsParams) ([]domain.BookingRequest, error)
}

// BookingWriterSvc defines write operations for booking requests
type BookingWriterSvc interface {
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest, actorID string) (*domain.BookingRequest, error)

	// ApproveBooking creates the student, the fee schedule and the first invoice in one transaction.
	ApproveBooking(ctx context.Context, bookingID string, req dto.ApproveBookingRequest, actorID string) (*domain.ApproveBookingResult, error)

	RejectBooking(ctx context.Context, bookingID string, reason string, actorID string) (*domain.BookingRequest, error)
	CancelBooking(ctx context.Context, bookingID string, actorID string) (*domain.BookingRequest, error)
}

// BookingSvcFacade combines all booking-related service interfaces
type BookingSvcFacade interface {
	BookingReaderSvc
	BookingWriterSvc
}
