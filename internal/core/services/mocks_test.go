package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionManager ---
type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

// RunInTx runs the callback directly with a nil transaction.
func (m *MockTxManager) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return fn(ctx, nil)
}

// --- Mock StudentRepository ---
type MockStudentRepository struct {
	mock.Mock
}

var _ portsrepo.StudentRepositoryFacade = (*MockStudentRepository)(nil)

func (m *MockStudentRepository) FindStudentByID(ctx context.Context, studentID string) (*domain.Student, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepository) ListStudents(ctx context.Context, status *domain.StudentStatus, limit int, offset int) ([]domain.Student, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

func (m *MockStudentRepository) ListActiveStudentIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStudentRepository) SaveStudent(ctx context.Context, tx pgx.Tx, student domain.Student) error {
	return m.Called(ctx, tx, student).Error(0)
}

func (m *MockStudentRepository) UpdateStudent(ctx context.Context, tx pgx.Tx, student domain.Student) error {
	return m.Called(ctx, tx, student).Error(0)
}

func (m *MockStudentRepository) MarkStudentDeleted(ctx context.Context, studentID string, userID string, now time.Time) error {
	return m.Called(ctx, studentID, userID, now).Error(0)
}

func (m *MockStudentRepository) FindStudentByIDForUpdate(ctx context.Context, tx pgx.Tx, studentID string) (*domain.Student, error) {
	args := m.Called(ctx, tx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service can mutate it freely.
	s := *args.Get(0).(*domain.Student)
	return &s, args.Error(1)
}

func (m *MockStudentRepository) UpdateStudentBalances(ctx context.Context, tx pgx.Tx, studentID string, current, advance decimal.Decimal, now time.Time) error {
	return m.Called(ctx, tx, studentID, current, advance, now).Error(0)
}

// --- Mock FeeScheduleRepository ---
type MockFeeRepository struct {
	mock.Mock
}

var _ portsrepo.FeeScheduleRepositoryFacade = (*MockFeeRepository)(nil)

func (m *MockFeeRepository) FindFeeLineByID(ctx context.Context, feeLineID string) (*domain.FeeLine, error) {
	args := m.Called(ctx, feeLineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeeLine), args.Error(1)
}

func (m *MockFeeRepository) ListFeeLines(ctx context.Context, tx pgx.Tx, studentID string, activeOnly bool) ([]domain.FeeLine, error) {
	args := m.Called(ctx, tx, studentID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeeLine), args.Error(1)
}

func (m *MockFeeRepository) SaveFeeLines(ctx context.Context, tx pgx.Tx, lines []domain.FeeLine) error {
	return m.Called(ctx, tx, lines).Error(0)
}

func (m *MockFeeRepository) DeactivateFeeLine(ctx context.Context, feeLineID string, userID string, now time.Time) error {
	return m.Called(ctx, feeLineID, userID, now).Error(0)
}

func (m *MockFeeRepository) MarkFeeLinesBilled(ctx context.Context, tx pgx.Tx, feeLineIDs []string, userID string, now time.Time) error {
	return m.Called(ctx, tx, feeLineIDs, userID, now).Error(0)
}

func (m *MockFeeRepository) RestoreBilledFeeLines(ctx context.Context, tx pgx.Tx, feeLineIDs []string, userID string, now time.Time) error {
	return m.Called(ctx, tx, feeLineIDs, userID, now).Error(0)
}

func (m *MockFeeRepository) DeactivateMonthlyFeeLines(ctx context.Context, tx pgx.Tx, studentID string, userID string, now time.Time) error {
	return m.Called(ctx, tx, studentID, userID, now).Error(0)
}

// --- Mock InvoiceRepository ---
type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoicesByStudent(ctx context.Context, studentID string, status *domain.InvoiceStatus, limit int, afterMonth *time.Time, afterCreatedAt *time.Time) ([]domain.Invoice, error) {
	args := m.Called(ctx, studentID, status, limit, afterMonth, afterCreatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) (string, error) {
	args := m.Called(ctx, tx, invoice)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, tx pgx.Tx, invoiceID string, status domain.InvoiceStatus, notes string, userID string, now time.Time) error {
	return m.Called(ctx, tx, invoiceID, status, notes, userID, now).Error(0)
}

func (m *MockInvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time, userID string, now time.Time) (int64, error) {
	args := m.Called(ctx, asOf, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoiceByStudentAndMonth(ctx context.Context, tx pgx.Tx, studentID string, billingMonth time.Time) (*domain.Invoice, error) {
	args := m.Called(ctx, tx, studentID, billingMonth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListOpenInvoicesForUpdate(ctx context.Context, tx pgx.Tx, studentID string) ([]domain.Invoice, error) {
	args := m.Called(ctx, tx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	inv := *args.Get(0).(*domain.Invoice)
	return &inv, args.Error(1)
}

func (m *MockInvoiceRepository) UpdateInvoicePayments(ctx context.Context, tx pgx.Tx, invoices []domain.Invoice, userID string, now time.Time) error {
	return m.Called(ctx, tx, invoices, userID, now).Error(0)
}

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentRepositoryFacade = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByStudent(ctx context.Context, studentID string, limit int, offset int) ([]domain.Payment, error) {
	args := m.Called(ctx, studentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	return m.Called(ctx, tx, payment).Error(0)
}

// --- Mock DiscountRepository ---
type MockDiscountRepository struct {
	mock.Mock
}

var _ portsrepo.DiscountRepositoryFacade = (*MockDiscountRepository)(nil)

func (m *MockDiscountRepository) FindDiscountByID(ctx context.Context, discountID string) (*domain.Discount, error) {
	args := m.Called(ctx, discountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}

func (m *MockDiscountRepository) ListDiscountsByStudent(ctx context.Context, studentID string) ([]domain.Discount, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Discount), args.Error(1)
}

func (m *MockDiscountRepository) SaveDiscount(ctx context.Context, tx pgx.Tx, discount domain.Discount) error {
	return m.Called(ctx, tx, discount).Error(0)
}

func (m *MockDiscountRepository) UpdateDiscountStatus(ctx context.Context, tx pgx.Tx, discountID string, status domain.DiscountStatus, userID string, now time.Time) error {
	return m.Called(ctx, tx, discountID, status, userID, now).Error(0)
}

func (m *MockDiscountRepository) ExistsByReference(ctx context.Context, tx pgx.Tx, studentID string, reference string) (bool, error) {
	args := m.Called(ctx, tx, studentID, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockDiscountRepository) FindDiscountByIDForUpdate(ctx context.Context, tx pgx.Tx, discountID string) (*domain.Discount, error) {
	args := m.Called(ctx, tx, discountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	d := *args.Get(0).(*domain.Discount)
	return &d, args.Error(1)
}

// --- Mock BookingRepository ---
type MockBookingRepository struct {
	mock.Mock
}

var _ portsrepo.BookingRepositoryFacade = (*MockBookingRepository)(nil)

func (m *MockBookingRepository) FindBookingByID(ctx context.Context, bookingID string) (*domain.BookingRequest, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRequest), args.Error(1)
}

func (m *MockBookingRepository) ListBookings(ctx context.Context, status *domain.BookingStatus, limit int, offset int) ([]domain.BookingRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingRequest), args.Error(1)
}

func (m *MockBookingRepository) SaveBooking(ctx context.Context, booking domain.BookingRequest) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) UpdateBooking(ctx context.Context, tx pgx.Tx, booking domain.BookingRequest) error {
	return m.Called(ctx, tx, booking).Error(0)
}

func (m *MockBookingRepository) FindBookingByIDForUpdate(ctx context.Context, tx pgx.Tx, bookingID string) (*domain.BookingRequest, error) {
	args := m.Called(ctx, tx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	b := *args.Get(0).(*domain.BookingRequest)
	return &b, args.Error(1)
}

// --- In-memory ledger ---

// memLedger is an in-memory LedgerRepositoryFacade so the balance recompute runs
// against real entries in service tests.
type memLedger struct {
	mu      sync.Mutex
	next    int64
	entries []domain.LedgerEntry
}

var _ portsrepo.LedgerRepositoryFacade = (*memLedger)(nil)

func newMemLedger(seed ...domain.LedgerEntry) *memLedger {
	l := &memLedger{}
	for _, e := range seed {
		l.next++
		e.EntryNumber = l.next
		l.entries = append(l.entries, e)
	}
	return l
}

func (l *memLedger) ListEntriesByStudent(_ context.Context, studentID string, limit int, after int64) ([]domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range l.entries {
		if e.StudentID == studentID && e.EntryNumber > after {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (l *memLedger) FindEntryByID(_ context.Context, entryID string) (*domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.LedgerEntryID == entryID {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("ledger entry %s: %w", entryID, apperrors.ErrNotFound)
}

func (l *memLedger) InsertEntry(_ context.Context, _ pgx.Tx, entry domain.LedgerEntry) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	entry.EntryNumber = l.next
	l.entries = append(l.entries, entry)
	return entry.EntryNumber, nil
}

func (l *memLedger) MarkEntryReversed(_ context.Context, _ pgx.Tx, entryID string, reversedAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].LedgerEntryID == entryID {
			if l.entries[i].IsReversed {
				return apperrors.ErrConflict
			}
			l.entries[i].IsReversed = true
			l.entries[i].ReversalDate = &reversedAt
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (l *memLedger) UpdateEntryBalances(_ context.Context, _ pgx.Tx, entries []domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range entries {
		for i := range l.entries {
			if l.entries[i].LedgerEntryID == u.LedgerEntryID {
				l.entries[i].Balance = u.Balance
				l.entries[i].BalanceType = u.BalanceType
			}
		}
	}
	return nil
}

func (l *memLedger) ListEntriesForUpdate(_ context.Context, _ pgx.Tx, studentID string) ([]domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range l.entries {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryNumber < out[j].EntryNumber })
	return out, nil
}

func (l *memLedger) FindEntryByIDForUpdate(ctx context.Context, _ pgx.Tx, entryID string) (*domain.LedgerEntry, error) {
	return l.FindEntryByID(ctx, entryID)
}

func (l *memLedger) all() []domain.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.LedgerEntry(nil), l.entries...)
}

// --- Recording notifier ---
type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e notification.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []notification.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}
