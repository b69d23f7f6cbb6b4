package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock StudentService ---
type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) GetStudent(ctx context.Context, studentID string) (*domain.Student, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}
func (m *MockStudentService) ListStudents(ctx context.Context, params dto.ListStudentsParams) ([]domain.Student, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}
func (m *MockStudentService) UpdateStudentStatus(ctx context.Context, studentID string, status domain.StudentStatus, actorID string) (*domain.Student, error) {
	args := m.Called(ctx, studentID, status, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}
func (m *MockStudentService) DeleteStudent(ctx context.Context, studentID string, actorID string) error {
	return m.Called(ctx, studentID, actorID).Error(0)
}
func (m *MockStudentService) AddFeeLine(ctx context.Context, studentID string, req dto.AddFeeLineRequest, actorID string) (*domain.FeeLine, error) {
	args := m.Called(ctx, studentID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeLine), args.Error(1)
}
func (m *MockStudentService) ListFeeLines(ctx context.Context, studentID string, activeOnly bool) ([]domain.FeeLine, error) {
	args := m.Called(ctx, studentID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeeLine), args.Error(1)
}
func (m *MockStudentService) DeactivateFeeLine(ctx context.Context, studentID string, feeLineID string, actorID string) error {
	return m.Called(ctx, studentID, feeLineID, actorID).Error(0)
}

var _ portssvc.StudentSvcFacade = (*MockStudentService)(nil)

// --- Mock BookingService ---
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*domain.BookingRequest, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}
func (m *MockBookingService) ListBookings(ctx context.Context, params dto.ListBookingsParams) ([]domain.BookingRequest, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRequest), args.Error(1)
}
func (m *MockBookingService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest, actorID string) (*domain.BookingRequest, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}
func (m *MockBookingService) ApproveBooking(ctx context.Context, bookingID string, req dto.ApproveBookingRequest, actorID string) (*domain.ApproveBookingResult, error) {
	args := m.Called(ctx, bookingID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApproveBookingResult), args.Error(1)
}
func (m *MockBookingService) RejectBooking(ctx context.Context, bookingID string, reason string, actorID string) (*domain.BookingRequest, error) {
	args := m.Called(ctx, bookingID, reason, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}
func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, actorID string) (*domain.BookingRequest, error) {
	args := m.Called(ctx, bookingID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}

var _ portssvc.BookingSvcFacade = (*MockBookingService)(nil)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ListStudentInvoices(ctx context.Context, studentID string, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	args := m.Called(ctx, studentID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListInvoicesResponse), args.Error(1)
}
func (m *MockInvoiceService) GenerateInvoice(ctx context.Context, studentID string, month time.Time, actorID string) (*domain.GenerateInvoiceResult, error) {
	args := m.Called(ctx, studentID, month, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerateInvoiceResult), args.Error(1)
}
func (m *MockInvoiceService) GenerateMonthlyInvoices(ctx context.Context, month time.Time, actorID string) ([]domain.BatchItemResult, error) {
	args := m.Called(ctx, month, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchItemResult), args.Error(1)
}
func (m *MockInvoiceService) CancelInvoice(ctx context.Context, invoiceID string, reason string, actorID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, reason, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) MarkOverdueInvoices(ctx context.Context, asOf time.Time, actorID string) (int64, error) {
	args := m.Called(ctx, asOf, actorID)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) ListStudentPayments(ctx context.Context, studentID string, params dto.ListPaymentsParams) ([]domain.Payment, error) {
	args := m.Called(ctx, studentID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentService) RecordPayment(ctx context.Context, studentID string, req dto.RecordPaymentRequest, actorID string) (*domain.RecordPaymentResult, error) {
	args := m.Called(ctx, studentID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordPaymentResult), args.Error(1)
}
func (m *MockPaymentService) RecordPayments(ctx context.Context, req dto.RecordPaymentsRequest, actorID string) ([]domain.BatchItemResult, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchItemResult), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock DiscountService ---
type MockDiscountService struct {
	mock.Mock
}

func (m *MockDiscountService) ApplyDiscount(ctx context.Context, studentID string, req dto.ApplyDiscountRequest, actorID string) (*domain.Discount, error) {
	args := m.Called(ctx, studentID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}
func (m *MockDiscountService) ListStudentDiscounts(ctx context.Context, studentID string) ([]domain.Discount, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Discount), args.Error(1)
}
func (m *MockDiscountService) CancelDiscount(ctx context.Context, discountID string, actorID string) (*domain.Discount, error) {
	args := m.Called(ctx, discountID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}

var _ portssvc.DiscountSvcFacade = (*MockDiscountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetStudentLedger(ctx context.Context, studentID string, params dto.ListLedgerParams) (*dto.LedgerResponse, error) {
	args := m.Called(ctx, studentID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LedgerResponse), args.Error(1)
}
func (m *MockLedgerService) GetStudentBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentBalance), args.Error(1)
}
func (m *MockLedgerService) ReverseEntry(ctx context.Context, entryID string, reason string, actorID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID, reason, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockLedgerService) RecalculateStudentBalance(ctx context.Context, studentID string, actorID string) (*domain.BalanceReconciliation, error) {
	args := m.Called(ctx, studentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceReconciliation), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock CheckoutService ---
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CalculateCheckoutRefund(ctx context.Context, studentID string, checkoutDate time.Time) (*domain.RefundQuote, error) {
	args := m.Called(ctx, studentID, checkoutDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundQuote), args.Error(1)
}
func (m *MockCheckoutService) CheckoutStudent(ctx context.Context, studentID string, req dto.CheckoutRequest, actorID string) (*domain.CheckoutResult, error) {
	args := m.Called(ctx, studentID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutResult), args.Error(1)
}

var _ portssvc.CheckoutSvcFacade = (*MockCheckoutService)(nil)
