package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/SscSPs/hostel_billing_app/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// bookingService turns booking requests into billed students.
type bookingService struct {
	BaseService
	bookingRepo portsrepo.BookingRepositoryFacade
	studentRepo portsrepo.StudentRepositoryFacade
	feeRepo     portsrepo.FeeScheduleRepositoryFacade
	invoices    *invoiceService
}

// newBookingService creates the booking service. Approval bills the first month
// through the invoice generator inside the approval transaction.
func newBookingService(repos portsrepo.RepositoryProvider, invoices *invoiceService, opts ...Option) portssvc.BookingSvcFacade {
	return &bookingService{
		BaseService: newBaseService(repos.TxManager, opts...),
		bookingRepo: repos.BookingRepo,
		studentRepo: repos.StudentRepo,
		feeRepo:     repos.FeeRepo,
		invoices:    invoices,
	}
}

var _ portssvc.BookingSvcFacade = (*bookingService)(nil)

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*domain.BookingRequest, error) {
	return s.bookingRepo.FindBookingByID(ctx, bookingID)
}

func (s *bookingService) ListBookings(ctx context.Context, params dto.ListBookingsParams) ([]domain.BookingRequest, error) {
	var status *domain.BookingStatus
	if params.Status != "" {
		st := domain.BookingStatus(params.Status)
		status = &st
	}
	return s.bookingRepo.ListBookings(ctx, status, pagination.NormalizeLimit(params.Limit), max(params.Offset, 0))
}

// CreateBooking records a pending booking request.
func (s *bookingService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest, actorID string) (*domain.BookingRequest, error) {
	verr := &apperrors.ValidationError{}
	if !req.MonthlyRate.IsPositive() {
		verr.Add("monthlyRate", "must be greater than zero")
	}
	if req.FoodRate != nil && req.FoodRate.IsNegative() {
		verr.Add("foodRate", "cannot be negative")
	}
	start, err := dto.ParseDate("requestedStart", req.RequestedStart)
	if err != nil {
		verr.Add("requestedStart", "must be a date in "+dto.DateLayout+" format")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	booking := domain.BookingRequest{
		BookingID:      uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		RoomNumber:     req.RoomNumber,
		MonthlyRate:    req.MonthlyRate,
		FoodRate:       req.FoodRate,
		RequestedStart: start,
		Status:         domain.BookingPending,
		AuditFields:    domain.NewAuditFields(actorID, s.now()),
	}
	if err := s.bookingRepo.SaveBooking(ctx, booking); err != nil {
		s.LogError(ctx, err, "Failed to save booking")
		return nil, err
	}
	s.LogInfo(ctx, "Booking created", slog.String("booking_id", booking.BookingID), slog.String("room", booking.RoomNumber))
	return &booking, nil
}

// ApproveBooking creates the student, its fee schedule and the first invoice, and
// marks the booking approved, all in one transaction.
func (s *bookingService) ApproveBooking(ctx context.Context, bookingID string, req dto.ApproveBookingRequest, actorID string) (*domain.ApproveBookingResult, error) {
	logger := s.GetLogger(ctx)

	var result *domain.ApproveBookingResult
	err := s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := s.now()
		booking, err := s.bookingRepo.FindBookingByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != domain.BookingPending {
			return fmt.Errorf("%w: booking %s is %s", apperrors.ErrConflict, bookingID, booking.Status)
		}
		enrollment, err := dto.ParseOptionalDate("enrollmentDate", req.EnrollmentDate, domain.DateOnly(booking.RequestedStart))
		if err != nil {
			return err
		}

		student := domain.Student{
			StudentID:      uuid.NewString(),
			Name:           booking.Name,
			Email:          booking.Email,
			Phone:          booking.Phone,
			RoomNumber:     booking.RoomNumber,
			Status:         domain.StudentActive,
			CurrentBalance: decimal.Zero,
			AdvanceBalance: decimal.Zero,
			EnrollmentDate: enrollment,
			BookingID:      &booking.BookingID,
			AuditFields:    domain.NewAuditFields(actorID, now),
		}
		if err := s.studentRepo.SaveStudent(ctx, tx, student); err != nil {
			return err
		}

		lines := []domain.FeeLine{newMonthlyFee(student.StudentID, domain.FeeAccommodation, "Room "+booking.RoomNumber, booking.MonthlyRate, actorID, now)}
		if booking.FoodRate != nil && booking.FoodRate.IsPositive() {
			lines = append(lines, newMonthlyFee(student.StudentID, domain.FeeFood, "Meals", *booking.FoodRate, actorID, now))
		}
		if err := s.feeRepo.SaveFeeLines(ctx, tx, lines); err != nil {
			return err
		}

		generated, err := s.invoices.generateLocked(ctx, tx, &student, domain.MonthStart(enrollment), actorID, now)
		if err != nil {
			return err
		}

		booking.Status = domain.BookingApproved
		booking.StudentID = &student.StudentID
		booking.Touch(actorID, now)
		if err := s.bookingRepo.UpdateBooking(ctx, tx, *booking); err != nil {
			return err
		}
		result = &domain.ApproveBookingResult{Booking: booking, Student: &student, Invoice: generated.Invoice}
		return nil
	})
	if err != nil {
		logger.Error("Failed to approve booking", slog.String("booking_id", bookingID), slog.String("error", err.Error()))
		return nil, err
	}

	data := map[string]any{"bookingID": bookingID}
	amount := decimal.Zero
	if result.Invoice != nil {
		data["invoiceID"] = result.Invoice.InvoiceID
		amount = result.Invoice.Total
	}
	logger.Info("Booking approved", slog.String("booking_id", bookingID), slog.String("student_id", result.Student.StudentID))
	s.notify(ctx, notification.Event{
		Type:        notification.BookingApproved,
		StudentID:   result.Student.StudentID,
		Amount:      amount,
		ReferenceID: bookingID,
		Data:        data,
	})
	return result, nil
}

func newMonthlyFee(studentID string, feeType domain.FeeType, description string, amount decimal.Decimal, actorID string, now time.Time) domain.FeeLine {
	return domain.FeeLine{
		FeeLineID:   uuid.NewString(),
		StudentID:   studentID,
		FeeType:     feeType,
		Description: description,
		Amount:      amount,
		Recurrence:  domain.RecurrenceMonthly,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(actorID, now),
	}
}

// RejectBooking closes a pending booking with a reason.
func (s *bookingService) RejectBooking(ctx context.Context, bookingID string, reason string, actorID string) (*domain.BookingRequest, error) {
	return s.decide(ctx, bookingID, domain.BookingRejected, reason, actorID)
}

// CancelBooking withdraws a pending booking.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, actorID string) (*domain.BookingRequest, error) {
	return s.decide(ctx, bookingID, domain.BookingCancelled, "", actorID)
}

func (s *bookingService) decide(ctx context.Context, bookingID string, status domain.BookingStatus, note string, actorID string) (*domain.BookingRequest, error) {
	var updated *domain.BookingRequest
	err := s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		booking, err := s.bookingRepo.FindBookingByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != domain.BookingPending {
			return fmt.Errorf("%w: booking %s is %s", apperrors.ErrConflict, bookingID, booking.Status)
		}
		booking.Status = status
		booking.DecisionNote = note
		booking.Touch(actorID, s.now())
		if err := s.bookingRepo.UpdateBooking(ctx, tx, *booking); err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update booking", slog.String("booking_id", bookingID), slog.String("status", string(status)))
		return nil, err
	}
	s.LogInfo(ctx, "Booking closed", slog.String("booking_id", bookingID), slog.String("status", string(status)))
	return updated, nil
}
