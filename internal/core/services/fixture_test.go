package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/core/services"
	"github.com/SscSPs/hostel_billing_app/internal/platform/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// billingFixture wires every service against mocks and an in-memory ledger.
type billingFixture struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	actorID string

	txManager    *MockTxManager
	studentRepo  *MockStudentRepository
	feeRepo      *MockFeeRepository
	invoiceRepo  *MockInvoiceRepository
	paymentRepo  *MockPaymentRepository
	discountRepo *MockDiscountRepository
	bookingRepo  *MockBookingRepository
	ledger       *memLedger
	notifier     *recordingNotifier

	svc     *portssvc.ServiceContainer
	student domain.Student
}

func (f *billingFixture) SetupTest() {
	f.ctx = context.Background()
	f.now = time.Date(2025, time.March, 16, 12, 0, 0, 0, time.UTC)
	f.actorID = "warden-1"

	f.txManager = new(MockTxManager)
	f.studentRepo = new(MockStudentRepository)
	f.feeRepo = new(MockFeeRepository)
	f.invoiceRepo = new(MockInvoiceRepository)
	f.paymentRepo = new(MockPaymentRepository)
	f.discountRepo = new(MockDiscountRepository)
	f.bookingRepo = new(MockBookingRepository)
	f.notifier = &recordingNotifier{}
	f.useLedger(newMemLedger())

	f.student = domain.Student{
		StudentID:      uuid.NewString(),
		Name:           "Asha Rao",
		RoomNumber:     "B-204",
		Status:         domain.StudentActive,
		CurrentBalance: decimal.Zero,
		AdvanceBalance: decimal.Zero,
		EnrollmentDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// useLedger swaps the ledger store and rebuilds the services around it.
func (f *billingFixture) useLedger(l *memLedger) {
	f.ledger = l
	repos := portsrepo.RepositoryProvider{
		TxManager:    f.txManager,
		StudentRepo:  f.studentRepo,
		FeeRepo:      f.feeRepo,
		InvoiceRepo:  f.invoiceRepo,
		PaymentRepo:  f.paymentRepo,
		LedgerRepo:   f.ledger,
		DiscountRepo: f.discountRepo,
		BookingRepo:  f.bookingRepo,
	}
	cfg := &config.Config{InvoiceDueDays: 10, BatchConcurrency: 2}
	f.svc = services.NewServiceContainer(cfg, repos, f.notifier, services.WithClock(func() time.Time { return f.now }))
}

func (f *billingFixture) assertMocks() {
	f.studentRepo.AssertExpectations(f.T())
	f.feeRepo.AssertExpectations(f.T())
	f.invoiceRepo.AssertExpectations(f.T())
	f.paymentRepo.AssertExpectations(f.T())
	f.discountRepo.AssertExpectations(f.T())
	f.bookingRepo.AssertExpectations(f.T())
}

func (f *billingFixture) expectLock(student domain.Student) {
	f.studentRepo.On("FindStudentByIDForUpdate", f.ctx, mock.Anything, student.StudentID).Return(&student, nil).Once()
}

func (f *billingFixture) expectBalances(studentID string, current, advance int64) {
	f.studentRepo.On("UpdateStudentBalances", f.ctx, mock.Anything, studentID, decEq(current), decEq(advance), mock.Anything).
		Return(nil).Once()
}

func (f *billingFixture) expectNoPeriodInvoice(studentID string, month time.Time) {
	f.invoiceRepo.On("FindInvoiceByStudentAndMonth", f.ctx, mock.Anything, studentID, month).
		Return(nil, apperrors.ErrNotFound).Once()
}

// decEq matches a decimal by value regardless of its internal exponent.
func decEq(v int64) any {
	want := decimal.NewFromInt(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyLine(studentID string, feeType domain.FeeType, v int64) domain.FeeLine {
	return domain.FeeLine{
		FeeLineID:   uuid.NewString(),
		StudentID:   studentID,
		FeeType:     feeType,
		Amount:      amount(v),
		Recurrence:  domain.RecurrenceMonthly,
		IsActive:    true,
		Description: string(feeType),
	}
}

func oneTimeLine(studentID string, feeType domain.FeeType, v int64) domain.FeeLine {
	l := monthlyLine(studentID, feeType, v)
	l.Recurrence = domain.RecurrenceOneTime
	return l
}

func ledgerEntry(studentID string, t domain.LedgerEntryType, debit, credit int64) domain.LedgerEntry {
	return domain.LedgerEntry{
		LedgerEntryID: uuid.NewString(),
		StudentID:     studentID,
		EntryDate:     date(2025, time.February, 1),
		Type:          t,
		Debit:         amount(debit),
		Credit:        amount(credit),
	}
}
