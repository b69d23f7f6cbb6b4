package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/SscSPs/hostel_billing_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledgerBook posts entries for a student and keeps the cached balances in step.
// Callers must hold the student row lock for the whole transaction.
type ledgerBook struct {
	studentRepo portsrepo.StudentRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
}

// entryDraft describes an entry to post. Exactly one of Debit or Credit is positive.
type entryDraft struct {
	Type        domain.LedgerEntryType
	Description string
	ReferenceID *string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	EntryDate   time.Time
	ReversalOf  *string
}

// lockStudent loads the student row FOR UPDATE. Every ledger mutation starts here.
func (b *ledgerBook) lockStudent(ctx context.Context, tx pgx.Tx, studentID string) (*domain.Student, error) {
	return b.studentRepo.FindStudentByIDForUpdate(ctx, tx, studentID)
}

// post appends one entry. The cached balance is provisional until rebalance runs.
func (b *ledgerBook) post(ctx context.Context, tx pgx.Tx, student *domain.Student, draft entryDraft, actorID string, now time.Time) (*domain.LedgerEntry, error) {
	if draft.Debit.IsPositive() == draft.Credit.IsPositive() {
		return nil, fmt.Errorf("ledger entry needs exactly one positive side, got debit %s credit %s", draft.Debit, draft.Credit)
	}
	running := student.CurrentBalance.Add(draft.Debit).Sub(draft.Credit)
	entry := domain.LedgerEntry{
		LedgerEntryID: uuid.NewString(),
		StudentID:     student.StudentID,
		EntryDate:     domain.DateOnly(draft.EntryDate),
		Type:          draft.Type,
		Description:   draft.Description,
		ReferenceID:   draft.ReferenceID,
		Debit:         draft.Debit,
		Credit:        draft.Credit,
		ReversalOf:    draft.ReversalOf,
		Balance:       running,
		BalanceType:   accounting.BalanceTypeOf(running),
		CreatedAt:     now,
		CreatedBy:     actorID,
	}
	number, err := b.ledgerRepo.InsertEntry(ctx, tx, entry)
	if err != nil {
		return nil, err
	}
	entry.EntryNumber = number
	student.CurrentBalance = running
	student.AdvanceBalance = accounting.AdvanceFrom(running)
	return &entry, nil
}

// reverse marks entryID reversed and posts its mirror image.
func (b *ledgerBook) reverse(ctx context.Context, tx pgx.Tx, student *domain.Student, entryID string, reason string, actorID string, now time.Time) (*domain.LedgerEntry, error) {
	original, err := b.ledgerRepo.FindEntryByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}
	if original.StudentID != student.StudentID {
		return nil, fmt.Errorf("ledger entry %s does not belong to student %s: %w", entryID, student.StudentID, apperrors.ErrNotFound)
	}
	if original.ReversalOf != nil {
		return nil, fmt.Errorf("%w: ledger entry %s is itself a reversal", apperrors.ErrConflict, entryID)
	}
	if original.IsReversed {
		return nil, fmt.Errorf("%w: ledger entry %s is already reversed", apperrors.ErrConflict, entryID)
	}
	if err := b.ledgerRepo.MarkEntryReversed(ctx, tx, entryID, now); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Reversal of entry #%d", original.EntryNumber)
	if reason != "" {
		description += ": " + reason
	}
	reversal, err := b.post(ctx, tx, student, entryDraft{
		Type:        original.Type,
		Description: description,
		ReferenceID: original.ReferenceID,
		Debit:       original.Credit,
		Credit:      original.Debit,
		EntryDate:   now,
		ReversalOf:  &original.LedgerEntryID,
	}, actorID, now)
	if err != nil {
		return nil, err
	}
	return reversal, nil
}

// rebalance is the single balance recompute. It walks every entry of the student in
// entry-number order, rewrites cached running balances that differ, and stores the
// derived current and advance balances on the student row.
func (b *ledgerBook) rebalance(ctx context.Context, tx pgx.Tx, studentID string, now time.Time) (*accounting.Derivation, error) {
	entries, err := b.ledgerRepo.ListEntriesForUpdate(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}
	derived := accounting.DeriveRunningBalances(entries)
	if len(derived.Changed) > 0 {
		changed := make([]domain.LedgerEntry, len(derived.Changed))
		for i, idx := range derived.Changed {
			changed[i] = derived.Entries[idx]
		}
		if err := b.ledgerRepo.UpdateEntryBalances(ctx, tx, changed); err != nil {
			return nil, err
		}
	}
	if err := b.studentRepo.UpdateStudentBalances(ctx, tx, studentID, derived.Balance, accounting.AdvanceFrom(derived.Balance), now); err != nil {
		return nil, err
	}
	return &derived, nil
}

// balanceOf builds the balance snapshot for a derivation.
func balanceOf(studentID string, d *accounting.Derivation) domain.StudentBalance {
	return domain.StudentBalance{
		StudentID:      studentID,
		CurrentBalance: d.Balance,
		AdvanceBalance: accounting.AdvanceFrom(d.Balance),
		BalanceType:    accounting.BalanceTypeOf(d.Balance),
		TotalDebit:     d.TotalDebit,
		TotalCredit:    d.TotalCredit,
		EntryCount:     len(d.Entries),
	}
}
