package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/SscSPs/hostel_billing_app/internal/utils/accounting"
	"github.com/SscSPs/hostel_billing_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

// ledgerService exposes the student ledger and its administrative corrections.
type ledgerService struct {
	BaseService
	book        ledgerBook
	studentRepo portsrepo.StudentRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: newBaseService(repos.TxManager, opts...),
		book:        ledgerBook{studentRepo: repos.StudentRepo, ledgerRepo: repos.LedgerRepo},
		studentRepo: repos.StudentRepo,
		ledgerRepo:  repos.LedgerRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// GetStudentLedger returns a page of entries in entry-number order.
func (s *ledgerService) GetStudentLedger(ctx context.Context, studentID string, params dto.ListLedgerParams) (*dto.LedgerResponse, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var after int64
	if params.NextToken != nil {
		n, err := pagination.DecodeEntryToken(*params.NextToken)
		if err != nil {
			return nil, apperrors.NewValidationError("nextToken", "is not a valid page token")
		}
		after = n
	}

	entries, err := s.ledgerRepo.ListEntriesByStudent(ctx, studentID, limit+1, after)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries", slog.String("student_id", studentID))
		return nil, err
	}

	res := &dto.LedgerResponse{StudentID: studentID}
	if len(entries) > limit {
		entries = entries[:limit]
		token := pagination.EncodeEntryToken(entries[len(entries)-1].EntryNumber)
		res.NextToken = &token
	}
	res.Entries = dto.ToLedgerEntryResponses(entries)
	return res, nil
}

// GetStudentBalance reports the stored balance with debit and credit totals over
// contributing entries.
func (s *ledgerService) GetStudentBalance(ctx context.Context, studentID string) (*domain.StudentBalance, error) {
	student, err := s.studentRepo.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var all []domain.LedgerEntry
	var after int64
	for {
		page, err := s.ledgerRepo.ListEntriesByStudent(ctx, studentID, pagination.MaxLimit, after)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pagination.MaxLimit {
			break
		}
		after = page[len(page)-1].EntryNumber
	}

	derived := accounting.DeriveRunningBalances(all)
	if !derived.Balance.Equal(student.CurrentBalance) {
		s.GetLogger(ctx).Warn("Stored balance differs from ledger",
			slog.String("student_id", studentID),
			slog.String("stored", student.CurrentBalance.String()),
			slog.String("derived", derived.Balance.String()))
	}
	return &domain.StudentBalance{
		StudentID:      studentID,
		CurrentBalance: student.CurrentBalance,
		AdvanceBalance: student.AdvanceBalance,
		BalanceType:    accounting.BalanceTypeOf(student.CurrentBalance),
		TotalDebit:     derived.TotalDebit,
		TotalCredit:    derived.TotalCredit,
		EntryCount:     len(all),
	}, nil
}

// ReverseEntry posts the mirror of an adjustment or refund entry. Entries owned by an
// invoice, payment or discount are corrected through those records instead.
func (s *ledgerService) ReverseEntry(ctx context.Context, entryID string, reason string, actorID string) (*domain.LedgerEntry, error) {
	logger := s.GetLogger(ctx)

	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	switch entry.Type {
	case domain.EntryInvoice:
		return nil, fmt.Errorf("%w: invoice entries are reversed by cancelling the invoice", apperrors.ErrConflict)
	case domain.EntryDiscount:
		return nil, fmt.Errorf("%w: discount entries are reversed by cancelling the discount", apperrors.ErrConflict)
	case domain.EntryPayment:
		return nil, fmt.Errorf("%w: payment entries carry invoice allocations and cannot be reversed directly", apperrors.ErrConflict)
	}

	var reversal *domain.LedgerEntry
	err = s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := s.now()
		student, err := s.book.lockStudent(ctx, tx, entry.StudentID)
		if err != nil {
			return err
		}
		reversal, err = s.book.reverse(ctx, tx, student, entryID, reason, actorID, now)
		if err != nil {
			return err
		}
		derived, err := s.book.rebalance(ctx, tx, student.StudentID, now)
		if err != nil {
			return err
		}
		reversal.Balance = derived.Balance
		reversal.BalanceType = accounting.BalanceTypeOf(derived.Balance)
		return nil
	})
	if err != nil {
		logger.Error("Failed to reverse ledger entry", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Ledger entry reversed", slog.String("entry_id", entryID), slog.String("reversal_id", reversal.LedgerEntryID))
	s.notify(ctx, notification.Event{
		Type:        notification.LedgerReversed,
		StudentID:   entry.StudentID,
		Amount:      entry.Debit.Add(entry.Credit),
		ReferenceID: entryID,
		Data:        map[string]any{"reversalID": reversal.LedgerEntryID, "reason": reason},
	})
	return reversal, nil
}

// RecalculateStudentBalance reruns the recompute and reports whether the stored
// balance had drifted from the ledger.
func (s *ledgerService) RecalculateStudentBalance(ctx context.Context, studentID string, actorID string) (*domain.BalanceReconciliation, error) {
	var result domain.BalanceReconciliation
	err := s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		student, err := s.book.lockStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		derived, err := s.book.rebalance(ctx, tx, studentID, s.now())
		if err != nil {
			return err
		}
		result = domain.BalanceReconciliation{
			StudentID:      studentID,
			StoredBalance:  student.CurrentBalance,
			DerivedBalance: derived.Balance,
			Drifted:        !student.CurrentBalance.Equal(derived.Balance),
			EntriesUpdated: len(derived.Changed),
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to recalculate balance", slog.String("student_id", studentID))
		return nil, err
	}
	if result.Drifted {
		s.GetLogger(ctx).Warn("Corrected drifted student balance",
			slog.String("student_id", studentID),
			slog.String("actor_id", actorID),
			slog.String("stored", result.StoredBalance.String()),
			slog.String("derived", result.DerivedBalance.String()))
	}
	return &result, nil
}
