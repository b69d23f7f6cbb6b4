package services_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceTestSuite struct {
	billingFixture
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (s *InvoiceServiceTestSuite) TestGenerateInvoice_ProratesEnrollmentMonth() {
	s.student.EnrollmentDate = date(2025, time.March, 16)
	march := date(2025, time.March, 1)
	laundry := oneTimeLine(s.student.StudentID, domain.FeeLaundry, 500)
	lines := []domain.FeeLine{
		monthlyLine(s.student.StudentID, domain.FeeAccommodation, 6000),
		monthlyLine(s.student.StudentID, domain.FeeFood, 3100),
		laundry,
	}

	s.expectLock(s.student)
	s.expectNoPeriodInvoice(s.student.StudentID, march)
	s.feeRepo.On("ListFeeLines", s.ctx, mock.Anything, s.student.StudentID, true).Return(lines, nil).Once()
	s.invoiceRepo.On("SaveInvoice", s.ctx, mock.Anything, mock.MatchedBy(func(inv domain.Invoice) bool {
		return len(inv.Items) == 3 && inv.LedgerEntryID != nil
	})).Return("INV-202503-000001", nil).Once()
	s.feeRepo.On("MarkFeeLinesBilled", s.ctx, mock.Anything, []string{laundry.FeeLineID}, s.actorID, mock.Anything).Return(nil).Once()
	s.expectBalances(s.student.StudentID, 5197, 0)

	res, err := s.svc.Invoice.GenerateInvoice(s.ctx, s.student.StudentID, date(2025, time.March, 20), s.actorID)

	s.Require().NoError(err)
	s.Equal(domain.GenerationGenerated, res.Status)
	inv := res.Invoice
	s.Equal("INV-202503-000001", inv.InvoiceNumber)
	s.Equal(march, inv.BillingMonth)
	s.Equal(date(2025, time.March, 16), inv.BillingDate)
	s.Equal(date(2025, time.March, 26), inv.DueDate)
	s.True(inv.IsProrated)
	// 16 of 31 days: 6000 -> 3097, 3100 -> 1600; one-time charges are never prorated.
	s.True(inv.Total.Equal(amount(5197)), inv.Total.String())
	s.True(inv.Items[0].Amount.Equal(amount(3097)))
	s.True(inv.Items[1].Amount.Equal(amount(1600)))
	s.True(inv.Items[2].Amount.Equal(amount(500)))
	s.Equal(domain.InvoicePending, inv.Status)

	entries := s.ledger.all()
	s.Require().Len(entries, 1)
	s.Equal(domain.EntryInvoice, entries[0].Type)
	s.True(entries[0].Debit.Equal(amount(5197)))
	s.True(entries[0].Balance.Equal(amount(5197)))
	s.Equal(domain.BalanceDr, entries[0].BalanceType)
	s.Equal(inv.InvoiceID, *entries[0].ReferenceID)

	s.Equal([]notification.EventType{notification.InvoiceGenerated}, s.notifier.types())
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestGenerateInvoice_SkipsExistingPeriod() {
	march := date(2025, time.March, 1)
	existingID := uuid.NewString()
	s.expectLock(s.student)
	s.invoiceRepo.On("FindInvoiceByStudentAndMonth", s.ctx, mock.Anything, s.student.StudentID, march).
		Return(&domain.Invoice{InvoiceID: existingID}, nil).Once()

	res, err := s.svc.Invoice.GenerateInvoice(s.ctx, s.student.StudentID, march, s.actorID)

	s.Require().NoError(err)
	s.Equal(domain.GenerationSkipped, res.Status)
	s.Equal(existingID, res.ExistingInvoiceID)
	s.Nil(res.Invoice)
	s.Empty(s.ledger.all())
	s.Empty(s.notifier.types())
	s.invoiceRepo.AssertNotCalled(s.T(), "SaveInvoice", mock.Anything, mock.Anything, mock.Anything)
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestGenerateInvoice_EmptyScheduleIsPaidWithoutEntry() {
	march := date(2025, time.March, 1)
	s.expectLock(s.student)
	s.expectNoPeriodInvoice(s.student.StudentID, march)
	s.feeRepo.On("ListFeeLines", s.ctx, mock.Anything, s.student.StudentID, true).Return([]domain.FeeLine{}, nil).Once()
	s.invoiceRepo.On("SaveInvoice", s.ctx, mock.Anything, mock.MatchedBy(func(inv domain.Invoice) bool {
		return inv.Total.IsZero() && inv.LedgerEntryID == nil
	})).Return("INV-202503-000002", nil).Once()

	res, err := s.svc.Invoice.GenerateInvoice(s.ctx, s.student.StudentID, march, s.actorID)

	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, res.Invoice.Status)
	s.Empty(res.Invoice.Items)
	s.Empty(s.ledger.all())
	s.studentRepo.AssertNotCalled(s.T(), "UpdateStudentBalances", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestGenerateInvoice_AppliesAdvanceCredit() {
	s.useLedger(newMemLedger(ledgerEntry(s.student.StudentID, domain.EntryPayment, 0, 2000)))
	s.student.CurrentBalance = amount(-2000)
	s.student.AdvanceBalance = amount(2000)
	march := date(2025, time.March, 1)

	s.expectLock(s.student)
	s.expectNoPeriodInvoice(s.student.StudentID, march)
	s.feeRepo.On("ListFeeLines", s.ctx, mock.Anything, s.student.StudentID, true).
		Return([]domain.FeeLine{monthlyLine(s.student.StudentID, domain.FeeAccommodation, 6000)}, nil).Once()
	s.invoiceRepo.On("SaveInvoice", s.ctx, mock.Anything, mock.Anything).Return("INV-202503-000003", nil).Once()
	s.expectBalances(s.student.StudentID, 4000, 0)

	res, err := s.svc.Invoice.GenerateInvoice(s.ctx, s.student.StudentID, march, s.actorID)

	s.Require().NoError(err)
	inv := res.Invoice
	s.False(inv.IsProrated)
	s.Equal(march, inv.BillingDate)
	s.True(inv.Total.Equal(amount(6000)))
	s.True(inv.AdvanceApplied.Equal(amount(2000)))
	s.True(inv.PaidAmount.Equal(amount(2000)))
	s.True(inv.BalanceDue().Equal(amount(4000)))
	s.Equal(domain.InvoiceOverdue, inv.Status, "due on the 11th, generated on the 16th")

	entries := s.ledger.all()
	s.Require().Len(entries, 2)
	s.True(entries[1].Debit.Equal(amount(6000)), "the full total is debited")
	s.True(entries[1].Balance.Equal(amount(4000)))
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestGenerateInvoice_RejectsInactiveStudent() {
	s.student.Status = domain.StudentInactive
	s.expectLock(s.student)

	_, err := s.svc.Invoice.GenerateInvoice(s.ctx, s.student.StudentID, date(2025, time.March, 1), s.actorID)

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "studentID")
	s.Empty(s.ledger.all())
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestGenerateInvoice_RejectsMonthBeforeEnrollment() {
	s.student.EnrollmentDate = date(2025, time.March, 16)
	s.expectLock(s.student)

	_, err := s.svc.Invoice.GenerateInvoice(s.ctx, s.student.StudentID, date(2025, time.February, 1), s.actorID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestGenerateInvoice_LostRaceReportsSkipped() {
	march := date(2025, time.March, 1)
	existingID := uuid.NewString()

	s.expectLock(s.student)
	s.expectNoPeriodInvoice(s.student.StudentID, march)
	s.feeRepo.On("ListFeeLines", s.ctx, mock.Anything, s.student.StudentID, true).
		Return([]domain.FeeLine{monthlyLine(s.student.StudentID, domain.FeeAccommodation, 6000)}, nil).Once()
	s.invoiceRepo.On("SaveInvoice", s.ctx, mock.Anything, mock.Anything).
		Return("", &apperrors.DuplicatePeriodError{StudentID: s.student.StudentID, BillingMonth: "2025-03"}).Once()
	s.invoiceRepo.On("FindInvoiceByStudentAndMonth", s.ctx, mock.Anything, s.student.StudentID, march).
		Return(&domain.Invoice{InvoiceID: existingID}, nil).Once()

	res, err := s.svc.Invoice.GenerateInvoice(s.ctx, s.student.StudentID, march, s.actorID)

	s.Require().NoError(err)
	s.Equal(domain.GenerationSkipped, res.Status)
	s.Equal(existingID, res.ExistingInvoiceID)
	s.Empty(s.notifier.types())
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestGenerateMonthlyInvoices_ReportsEachStudent() {
	march := date(2025, time.March, 1)
	missingID := uuid.NewString()

	s.studentRepo.On("ListActiveStudentIDs", s.ctx).Return([]string{s.student.StudentID, missingID}, nil).Once()
	s.studentRepo.On("FindStudentByIDForUpdate", mock.Anything, mock.Anything, s.student.StudentID).Return(&s.student, nil).Once()
	s.studentRepo.On("FindStudentByIDForUpdate", mock.Anything, mock.Anything, missingID).
		Return(nil, apperrors.ErrNotFound).Once()
	s.invoiceRepo.On("FindInvoiceByStudentAndMonth", mock.Anything, mock.Anything, s.student.StudentID, march).
		Return(nil, apperrors.ErrNotFound).Once()
	s.feeRepo.On("ListFeeLines", mock.Anything, mock.Anything, s.student.StudentID, true).
		Return([]domain.FeeLine{monthlyLine(s.student.StudentID, domain.FeeAccommodation, 6000)}, nil).Once()
	s.invoiceRepo.On("SaveInvoice", mock.Anything, mock.Anything, mock.Anything).Return("INV-202503-000004", nil).Once()
	s.studentRepo.On("UpdateStudentBalances", mock.Anything, mock.Anything, s.student.StudentID, decEq(6000), decEq(0), mock.Anything).
		Return(nil).Once()

	results, err := s.svc.Invoice.GenerateMonthlyInvoices(s.ctx, march, s.actorID)

	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(0, results[0].Index)
	s.Equal(string(domain.GenerationGenerated), results[0].Status)
	s.NotEmpty(results[0].ID)
	s.Equal(1, results[1].Index)
	s.Equal(missingID, results[1].StudentID)
	s.Equal(string(domain.GenerationFailed), results[1].Status)
	s.NotEmpty(results[1].Error)
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestCancelInvoice_ReversesLedgerEntry() {
	invoiceEntry := ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6000, 0)
	s.useLedger(newMemLedger(invoiceEntry))
	s.student.CurrentBalance = amount(6000)

	inv := &domain.Invoice{
		InvoiceID:      uuid.NewString(),
		InvoiceNumber:  "INV-202503-000005",
		StudentID:      s.student.StudentID,
		Total:          amount(6000),
		PaidAmount:     amount(0),
		AdvanceApplied: amount(0),
		Status:         domain.InvoicePending,
		LedgerEntryID:  &invoiceEntry.LedgerEntryID,
	}
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, inv.InvoiceID).Return(inv, nil).Once()
	s.expectLock(s.student)
	s.invoiceRepo.On("FindInvoiceByIDForUpdate", s.ctx, mock.Anything, inv.InvoiceID).Return(inv, nil).Once()
	s.invoiceRepo.On("UpdateInvoiceStatus", s.ctx, mock.Anything, inv.InvoiceID, domain.InvoiceCancelled, "billed twice", s.actorID, mock.Anything).
		Return(nil).Once()
	s.expectBalances(s.student.StudentID, 0, 0)

	cancelled, err := s.svc.Invoice.CancelInvoice(s.ctx, inv.InvoiceID, "billed twice", s.actorID)

	s.Require().NoError(err)
	s.Equal(domain.InvoiceCancelled, cancelled.Status)
	s.Equal("billed twice", cancelled.Notes)

	entries := s.ledger.all()
	s.Require().Len(entries, 2)
	s.True(entries[0].IsReversed)
	s.Require().NotNil(entries[1].ReversalOf)
	s.Equal(invoiceEntry.LedgerEntryID, *entries[1].ReversalOf)
	s.True(entries[1].Credit.Equal(amount(6000)))
	s.True(entries[1].Balance.IsZero())
	s.Equal([]notification.EventType{notification.InvoiceCancelled}, s.notifier.types())
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestCancelInvoice_RestoresOneTimeCharges() {
	invoiceEntry := ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6500, 0)
	s.useLedger(newMemLedger(invoiceEntry))
	s.student.CurrentBalance = amount(6500)

	rent := monthlyLine(s.student.StudentID, domain.FeeAccommodation, 6000)
	laundry := oneTimeLine(s.student.StudentID, domain.FeeLaundry, 500)
	invoiceID := uuid.NewString()
	inv := &domain.Invoice{
		InvoiceID:      invoiceID,
		InvoiceNumber:  "INV-202503-000006",
		StudentID:      s.student.StudentID,
		Total:          amount(6500),
		PaidAmount:     amount(0),
		AdvanceApplied: amount(0),
		Status:         domain.InvoicePending,
		LedgerEntryID:  &invoiceEntry.LedgerEntryID,
		Items: []domain.InvoiceItem{
			{InvoiceItemID: uuid.NewString(), InvoiceID: invoiceID, FeeLineID: &rent.FeeLineID, Amount: amount(6000)},
			{InvoiceItemID: uuid.NewString(), InvoiceID: invoiceID, FeeLineID: &laundry.FeeLineID, Amount: amount(500)},
			{InvoiceItemID: uuid.NewString(), InvoiceID: invoiceID, Description: "manual", Amount: amount(0)},
		},
	}
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, invoiceID).Return(inv, nil).Once()
	s.expectLock(s.student)
	s.invoiceRepo.On("FindInvoiceByIDForUpdate", s.ctx, mock.Anything, invoiceID).Return(inv, nil).Once()
	s.invoiceRepo.On("UpdateInvoiceStatus", s.ctx, mock.Anything, invoiceID, domain.InvoiceCancelled, "wrong month", s.actorID, mock.Anything).
		Return(nil).Once()
	s.feeRepo.On("RestoreBilledFeeLines", s.ctx, mock.Anything, []string{rent.FeeLineID, laundry.FeeLineID}, s.actorID, mock.Anything).
		Return(nil).Once()
	s.expectBalances(s.student.StudentID, 0, 0)

	cancelled, err := s.svc.Invoice.CancelInvoice(s.ctx, invoiceID, "wrong month", s.actorID)

	s.Require().NoError(err)
	s.Equal(domain.InvoiceCancelled, cancelled.Status)
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestCancelInvoice_RestoreFailureAbortsCancel() {
	laundry := oneTimeLine(s.student.StudentID, domain.FeeLaundry, 500)
	invoiceID := uuid.NewString()
	inv := &domain.Invoice{
		InvoiceID:      invoiceID,
		StudentID:      s.student.StudentID,
		Total:          amount(0),
		PaidAmount:     amount(0),
		AdvanceApplied: amount(0),
		Status:         domain.InvoicePaid,
		Items:          []domain.InvoiceItem{{InvoiceItemID: uuid.NewString(), InvoiceID: invoiceID, FeeLineID: &laundry.FeeLineID}},
	}
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, invoiceID).Return(inv, nil).Once()
	s.expectLock(s.student)
	s.invoiceRepo.On("FindInvoiceByIDForUpdate", s.ctx, mock.Anything, invoiceID).Return(inv, nil).Once()
	s.invoiceRepo.On("UpdateInvoiceStatus", s.ctx, mock.Anything, invoiceID, domain.InvoiceCancelled, "oops", s.actorID, mock.Anything).
		Return(nil).Once()
	dbErr := errors.New("connection reset")
	s.feeRepo.On("RestoreBilledFeeLines", s.ctx, mock.Anything, []string{laundry.FeeLineID}, s.actorID, mock.Anything).
		Return(dbErr).Once()

	_, err := s.svc.Invoice.CancelInvoice(s.ctx, invoiceID, "oops", s.actorID)

	s.ErrorIs(err, dbErr)
	s.Empty(s.notifier.types())
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestCancelInvoice_RejectsInvoiceWithPayments() {
	inv := &domain.Invoice{
		InvoiceID:      uuid.NewString(),
		StudentID:      s.student.StudentID,
		Total:          amount(6000),
		PaidAmount:     amount(1000),
		AdvanceApplied: amount(0),
		Status:         domain.InvoicePartiallyPaid,
	}
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, inv.InvoiceID).Return(inv, nil).Once()
	s.expectLock(s.student)
	s.invoiceRepo.On("FindInvoiceByIDForUpdate", s.ctx, mock.Anything, inv.InvoiceID).Return(inv, nil).Once()

	_, err := s.svc.Invoice.CancelInvoice(s.ctx, inv.InvoiceID, "mistake", s.actorID)

	var appErr *apperrors.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Equal(http.StatusConflict, appErr.Code)
	s.Equal("1000", appErr.Details["paidAmount"])
	s.ErrorIs(err, apperrors.ErrConflict)
	s.invoiceRepo.AssertNotCalled(s.T(), "UpdateInvoiceStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestCancelInvoice_AlreadyCancelled() {
	inv := &domain.Invoice{InvoiceID: uuid.NewString(), StudentID: s.student.StudentID, Status: domain.InvoiceCancelled}
	s.invoiceRepo.On("FindInvoiceByID", s.ctx, inv.InvoiceID).Return(inv, nil).Once()
	s.expectLock(s.student)
	s.invoiceRepo.On("FindInvoiceByIDForUpdate", s.ctx, mock.Anything, inv.InvoiceID).Return(inv, nil).Once()

	_, err := s.svc.Invoice.CancelInvoice(s.ctx, inv.InvoiceID, "again", s.actorID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.assertMocks()
}

func (s *InvoiceServiceTestSuite) TestMarkOverdueInvoices_UsesCalendarDate() {
	asOf := time.Date(2025, time.April, 2, 18, 30, 0, 0, time.UTC)
	s.invoiceRepo.On("MarkOverdue", s.ctx, date(2025, time.April, 2), s.actorID, s.now).Return(int64(3), nil).Once()

	n, err := s.svc.Invoice.MarkOverdueInvoices(s.ctx, asOf, s.actorID)

	s.Require().NoError(err)
	s.Equal(int64(3), n)
	s.assertMocks()
}
