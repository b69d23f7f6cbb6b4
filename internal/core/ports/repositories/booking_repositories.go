package repositories

import (
	"context"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BookingReader defines read operations for booking requests
type BookingReader interface {
	FindBookingByID(ctx context.Context, bookingID string) (*domain.BookingRequest, error)
	ListBookings(ctx context.Context, status *domain.BookingStatus, limit int, offset int) ([]domain.BookingRequest, error)
}

// BookingWriter defines write operations for booking requests
type BookingWriter interface {
	SaveBooking(ctx context.Context, booking domain.BookingRequest) error
	UpdateBooking(ctx context.Context, tx pgx.Tx, booking domain.BookingRequest) error
}

// BookingTransactionSupport defines locked reads used by approval.
type BookingTransactionSupport interface {
	FindBookingByIDForUpdate(ctx context.Context, tx pgx.Tx, bookingID string) (*domain.BookingRequest, error)
}

// BookingRepositoryFacade combines all booking repository interfaces
type BookingRepositoryFacade interface {
	BookingReader
	BookingWriter
	BookingTransactionSupport
}
