package services_test

import (
	"testing"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	billingFixture
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) TestGetStudentLedger_Paginates() {
	s.useLedger(newMemLedger(
		ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6000, 0),
		ledgerEntry(s.student.StudentID, domain.EntryPayment, 0, 4000),
		ledgerEntry(s.student.StudentID, domain.EntryDiscount, 0, 500),
	))
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Twice()

	first, err := s.svc.Ledger.GetStudentLedger(s.ctx, s.student.StudentID, dto.ListLedgerParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(first.Entries, 2)
	s.Equal(int64(1), first.Entries[0].EntryNumber)
	s.Require().NotNil(first.NextToken)

	second, err := s.svc.Ledger.GetStudentLedger(s.ctx, s.student.StudentID, dto.ListLedgerParams{Limit: 2, NextToken: first.NextToken})
	s.Require().NoError(err)
	s.Require().Len(second.Entries, 1)
	s.Equal(int64(3), second.Entries[0].EntryNumber)
	s.Nil(second.NextToken)
	s.assertMocks()
}

func (s *LedgerServiceTestSuite) TestGetStudentLedger_BadToken() {
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Once()
	bad := "not-a-token"

	_, err := s.svc.Ledger.GetStudentLedger(s.ctx, s.student.StudentID, dto.ListLedgerParams{NextToken: &bad})

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "nextToken")
}

func (s *LedgerServiceTestSuite) TestGetStudentBalance_TotalsContributingEntries() {
	invoice := ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6000, 0)
	adjustment := ledgerEntry(s.student.StudentID, domain.EntryAdjustment, 0, 700)
	adjustment.IsReversed = true
	reversal := ledgerEntry(s.student.StudentID, domain.EntryAdjustment, 700, 0)
	reversal.ReversalOf = &adjustment.LedgerEntryID
	s.useLedger(newMemLedger(invoice, adjustment, reversal, ledgerEntry(s.student.StudentID, domain.EntryPayment, 0, 2500)))
	s.student.CurrentBalance = amount(3500)
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Once()

	bal, err := s.svc.Ledger.GetStudentBalance(s.ctx, s.student.StudentID)

	s.Require().NoError(err)
	s.True(bal.CurrentBalance.Equal(amount(3500)))
	s.True(bal.TotalDebit.Equal(amount(6000)))
	s.True(bal.TotalCredit.Equal(amount(2500)))
	s.Equal(domain.BalanceDr, bal.BalanceType)
	s.Equal(4, bal.EntryCount)
	s.assertMocks()
}

func (s *LedgerServiceTestSuite) TestReverseEntry_MirrorsAdjustment() {
	adjustment := ledgerEntry(s.student.StudentID, domain.EntryAdjustment, 0, 500)
	s.useLedger(newMemLedger(ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6000, 0), adjustment))
	s.student.CurrentBalance = amount(5500)
	s.expectLock(s.student)
	s.expectBalances(s.student.StudentID, 6000, 0)

	reversal, err := s.svc.Ledger.ReverseEntry(s.ctx, adjustment.LedgerEntryID, "goodwill withdrawn", s.actorID)

	s.Require().NoError(err)
	s.Require().NotNil(reversal.ReversalOf)
	s.Equal(adjustment.LedgerEntryID, *reversal.ReversalOf)
	s.True(reversal.Debit.Equal(amount(500)))
	s.True(reversal.Credit.IsZero())
	s.Equal("Reversal of entry #2: goodwill withdrawn", reversal.Description)
	s.True(reversal.Balance.Equal(amount(6000)))

	entries := s.ledger.all()
	s.Require().Len(entries, 3)
	s.True(entries[1].IsReversed)
	s.NotNil(entries[1].ReversalDate)
	s.Equal([]notification.EventType{notification.LedgerReversed}, s.notifier.types())
	s.assertMocks()
}

func (s *LedgerServiceTestSuite) TestReverseEntry_RejectsOwnedEntries() {
	invoice := ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6000, 0)
	payment := ledgerEntry(s.student.StudentID, domain.EntryPayment, 0, 6000)
	discount := ledgerEntry(s.student.StudentID, domain.EntryDiscount, 0, 100)
	s.useLedger(newMemLedger(invoice, payment, discount))

	for _, e := range []domain.LedgerEntry{invoice, payment, discount} {
		_, err := s.svc.Ledger.ReverseEntry(s.ctx, e.LedgerEntryID, "oops", s.actorID)
		s.ErrorIs(err, apperrors.ErrConflict, string(e.Type))
	}
	s.Len(s.ledger.all(), 3)
	s.studentRepo.AssertNotCalled(s.T(), "FindStudentByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestReverseEntry_OnlyOnce() {
	adjustment := ledgerEntry(s.student.StudentID, domain.EntryAdjustment, 0, 500)
	adjustment.IsReversed = true
	reversal := ledgerEntry(s.student.StudentID, domain.EntryAdjustment, 500, 0)
	reversal.ReversalOf = &adjustment.LedgerEntryID
	s.useLedger(newMemLedger(adjustment, reversal))
	s.studentRepo.On("FindStudentByIDForUpdate", s.ctx, mock.Anything, s.student.StudentID).Return(&s.student, nil).Twice()

	_, err := s.svc.Ledger.ReverseEntry(s.ctx, adjustment.LedgerEntryID, "again", s.actorID)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.svc.Ledger.ReverseEntry(s.ctx, reversal.LedgerEntryID, "undo the undo", s.actorID)
	s.ErrorIs(err, apperrors.ErrConflict)

	s.Len(s.ledger.all(), 2)
	s.Empty(s.notifier.types())
	s.assertMocks()
}

func (s *LedgerServiceTestSuite) TestReverseEntry_UnknownEntry() {
	_, err := s.svc.Ledger.ReverseEntry(s.ctx, "missing", "reason", s.actorID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestRecalculateStudentBalance_RepairsDrift() {
	first := ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6000, 0)
	first.Balance = amount(6000)
	first.BalanceType = domain.BalanceDr
	second := ledgerEntry(s.student.StudentID, domain.EntryPayment, 0, 1000)
	second.Balance = amount(9999)
	second.BalanceType = domain.BalanceDr
	s.useLedger(newMemLedger(first, second))
	s.student.CurrentBalance = amount(9999)
	s.expectLock(s.student)
	s.expectBalances(s.student.StudentID, 5000, 0)

	rec, err := s.svc.Ledger.RecalculateStudentBalance(s.ctx, s.student.StudentID, s.actorID)

	s.Require().NoError(err)
	s.True(rec.Drifted)
	s.True(rec.StoredBalance.Equal(amount(9999)))
	s.True(rec.DerivedBalance.Equal(amount(5000)))
	s.Equal(1, rec.EntriesUpdated)
	s.True(s.ledger.all()[1].Balance.Equal(amount(5000)))
	s.assertMocks()
}

func (s *LedgerServiceTestSuite) TestRecalculateStudentBalance_NoDrift() {
	entry := ledgerEntry(s.student.StudentID, domain.EntryInvoice, 6000, 0)
	entry.Balance = amount(6000)
	entry.BalanceType = domain.BalanceDr
	s.useLedger(newMemLedger(entry))
	s.student.CurrentBalance = amount(6000)
	s.expectLock(s.student)
	s.expectBalances(s.student.StudentID, 6000, 0)

	rec, err := s.svc.Ledger.RecalculateStudentBalance(s.ctx, s.student.StudentID, s.actorID)

	s.Require().NoError(err)
	s.False(rec.Drifted)
	s.Zero(rec.EntriesUpdated)
	s.assertMocks()
}
