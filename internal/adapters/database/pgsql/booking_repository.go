package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `booking_id, name, email, phone, room_number, monthly_rate, food_rate, requested_start,
	status, decision_note, student_id, created_at, created_by, last_updated_at, last_updated_by`

// PgxBookingRepository persists booking requests.
type PgxBookingRepository struct {
	BaseRepository
}

func newPgxBookingRepository(pool *pgxpool.Pool) portsrepo.BookingRepositoryFacade {
	return &PgxBookingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BookingRepositoryFacade = (*PgxBookingRepository)(nil)

func scanBooking(row pgx.Row) (*domain.BookingRequest, error) {
	var b domain.BookingRequest
	if err := row.Scan(
		&b.BookingID,
		&b.Name,
		&b.Email,
		&b.Phone,
		&b.RoomNumber,
		&b.MonthlyRate,
		&b.FoodRate,
		&b.RequestedStart,
		&b.Status,
		&b.DecisionNote,
		&b.StudentID,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveBooking inserts a new booking request.
func (r *PgxBookingRepository) SaveBooking(ctx context.Context, b domain.BookingRequest) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO booking_requests (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`, b.BookingID, b.Name, b.Email, b.Phone, b.RoomNumber, b.MonthlyRate, b.FoodRate, b.RequestedStart,
		b.Status, b.DecisionNote, b.StudentID, b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: booking with ID %s already exists", apperrors.ErrDuplicate, b.BookingID)
		}
		return fmt.Errorf("failed to save booking %s: %w", b.BookingID, err)
	}
	return nil
}

// UpdateBooking writes the decision fields of a booking.
func (r *PgxBookingRepository) UpdateBooking(ctx context.Context, tx pgx.Tx, b domain.BookingRequest) error {
	ct, err := r.q(tx).Exec(ctx, `
		UPDATE booking_requests
		SET status = $2, decision_note = $3, student_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE booking_id = $1;
	`, b.BookingID, b.Status, b.DecisionNote, b.StudentID, b.LastUpdatedAt, b.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", b.BookingID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", b.BookingID, apperrors.ErrNotFound)
	}
	return nil
}

// FindBookingByID retrieves a booking request.
func (r *PgxBookingRepository) FindBookingByID(ctx context.Context, bookingID string) (*domain.BookingRequest, error) {
	b, err := scanBooking(r.Pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM booking_requests WHERE booking_id = $1;`, bookingID))
	if err != nil {
		return nil, notFoundOr(err, "booking", bookingID)
	}
	return b, nil
}

// FindBookingByIDForUpdate locks a booking request row.
func (r *PgxBookingRepository) FindBookingByIDForUpdate(ctx context.Context, tx pgx.Tx, bookingID string) (*domain.BookingRequest, error) {
	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM booking_requests WHERE booking_id = $1 FOR UPDATE;`, bookingID))
	if err != nil {
		return nil, notFoundOr(err, "booking", bookingID)
	}
	return b, nil
}

// ListBookings returns booking requests, newest first.
func (r *PgxBookingRepository) ListBookings(ctx context.Context, status *domain.BookingStatus, limit int, offset int) ([]domain.BookingRequest, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM booking_requests
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []domain.BookingRequest{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return bookings, nil
}
