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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type discountService struct {
	BaseService
	book         ledgerBook
	studentRepo  portsrepo.StudentRepositoryFacade
	feeRepo      portsrepo.FeeScheduleRepositoryFacade
	discountRepo portsrepo.DiscountRepositoryFacade
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.DiscountSvcFacade {
	return &discountService{
		BaseService:  newBaseService(repos.TxManager, opts...),
		book:         ledgerBook{studentRepo: repos.StudentRepo, ledgerRepo: repos.LedgerRepo},
		studentRepo:  repos.StudentRepo,
		feeRepo:      repos.FeeRepo,
		discountRepo: repos.DiscountRepo,
	}
}

var _ portssvc.DiscountSvcFacade = (*discountService)(nil)

func validateDiscountRequest(req dto.ApplyDiscountRequest) error {
	verr := &apperrors.ValidationError{}
	switch {
	case req.Amount == nil && req.Percentage == nil:
		verr.Add("amount", "either amount or percentage is required")
	case req.Amount != nil && req.Percentage != nil:
		verr.Add("amount", "cannot be combined with percentage")
	case req.Amount != nil && !req.Amount.IsPositive():
		verr.Add("amount", "must be greater than zero")
	case req.Percentage != nil && (!req.Percentage.IsPositive() || req.Percentage.GreaterThan(hundred)):
		verr.Add("percentage", "must be greater than 0 and at most 100")
	}
	if req.MaxAmount != nil {
		if req.Percentage == nil {
			verr.Add("maxAmount", "only applies to percentage discounts")
		} else if !req.MaxAmount.IsPositive() {
			verr.Add("maxAmount", "must be greater than zero")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// ApplyDiscount posts a one-time credit to the student's ledger. The reference is the
// idempotency key: a second discount with the same reference is rejected.
func (s *discountService) ApplyDiscount(ctx context.Context, studentID string, req dto.ApplyDiscountRequest, actorID string) (*domain.Discount, error) {
	logger := s.GetLogger(ctx)

	if err := validateDiscountRequest(req); err != nil {
		return nil, err
	}
	reference := req.Reference
	if reference == "" {
		reference = "DISC-" + uuid.NewString()
	}

	var discount *domain.Discount
	err := s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := s.now()
		student, err := s.book.lockStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		exists, err := s.discountRepo.ExistsByReference(ctx, tx, studentID, reference)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: discount with reference %q already applied to student %s", apperrors.ErrDuplicate, reference, studentID)
		}

		amount, err := s.resolveAmount(ctx, tx, studentID, req)
		if err != nil {
			return err
		}

		d := domain.Discount{
			DiscountID:  uuid.NewString(),
			StudentID:   studentID,
			Amount:      amount,
			Percentage:  req.Percentage,
			Reason:      req.Reason,
			Reference:   reference,
			Status:      domain.DiscountActive,
			AuditFields: domain.NewAuditFields(actorID, now),
		}
		entry, err := s.book.post(ctx, tx, student, entryDraft{
			Type:        domain.EntryDiscount,
			Description: "Discount: " + req.Reason,
			ReferenceID: lo.ToPtr(d.DiscountID),
			Debit:       decimal.Zero,
			Credit:      amount,
			EntryDate:   now,
		}, actorID, now)
		if err != nil {
			return err
		}
		d.LedgerEntryID = &entry.LedgerEntryID

		if err := s.discountRepo.SaveDiscount(ctx, tx, d); err != nil {
			return err
		}
		if _, err := s.book.rebalance(ctx, tx, studentID, now); err != nil {
			return err
		}
		discount = &d
		return nil
	})
	if err != nil {
		logger.Error("Failed to apply discount", slog.String("student_id", studentID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Discount applied",
		slog.String("discount_id", discount.DiscountID),
		slog.String("student_id", studentID),
		slog.String("amount", discount.Amount.String()))
	s.notify(ctx, notification.Event{
		Type:        notification.DiscountApplied,
		StudentID:   studentID,
		Amount:      discount.Amount,
		ReferenceID: discount.DiscountID,
		Data:        map[string]any{"reason": discount.Reason, "reference": discount.Reference},
	})
	return discount, nil
}

// resolveAmount returns the fixed amount, or the percentage of the student's monthly
// fees rounded to whole units and capped by MaxAmount.
func (s *discountService) resolveAmount(ctx context.Context, tx pgx.Tx, studentID string, req dto.ApplyDiscountRequest) (decimal.Decimal, error) {
	if req.Amount != nil {
		return *req.Amount, nil
	}
	lines, err := s.feeRepo.ListFeeLines(ctx, tx, studentID, true)
	if err != nil {
		return decimal.Zero, err
	}
	base := lo.Reduce(lines, func(acc decimal.Decimal, l domain.FeeLine, _ int) decimal.Decimal {
		if !l.IsMonthly() {
			return acc
		}
		return acc.Add(l.Amount)
	}, decimal.Zero)

	amount := accounting.RoundAmount(base.Mul(*req.Percentage).Div(hundred))
	if req.MaxAmount != nil && amount.GreaterThan(*req.MaxAmount) {
		amount = *req.MaxAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.NewValidationError("percentage", "resolves to zero against the student's monthly fees")
	}
	return amount, nil
}

// ListStudentDiscounts lists all discounts of a student.
func (s *discountService) ListStudentDiscounts(ctx context.Context, studentID string) ([]domain.Discount, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.discountRepo.ListDiscountsByStudent(ctx, studentID)
}

// CancelDiscount reverses an active discount's ledger credit.
func (s *discountService) CancelDiscount(ctx context.Context, discountID string, actorID string) (*domain.Discount, error) {
	logger := s.GetLogger(ctx)

	current, err := s.discountRepo.FindDiscountByID(ctx, discountID)
	if err != nil {
		return nil, err
	}

	var cancelled *domain.Discount
	err = s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := s.now()
		student, err := s.book.lockStudent(ctx, tx, current.StudentID)
		if err != nil {
			return err
		}
		d, err := s.discountRepo.FindDiscountByIDForUpdate(ctx, tx, discountID)
		if err != nil {
			return err
		}
		if d.Status != domain.DiscountActive {
			return fmt.Errorf("%w: discount %s is %s", apperrors.ErrConflict, discountID, d.Status)
		}
		if d.LedgerEntryID != nil {
			if _, err := s.book.reverse(ctx, tx, student, *d.LedgerEntryID, "discount "+d.Reference+" cancelled", actorID, now); err != nil {
				return err
			}
		}
		if err := s.discountRepo.UpdateDiscountStatus(ctx, tx, discountID, domain.DiscountCancelled, actorID, now); err != nil {
			return err
		}
		if _, err := s.book.rebalance(ctx, tx, student.StudentID, now); err != nil {
			return err
		}
		d.Status = domain.DiscountCancelled
		d.Touch(actorID, now)
		cancelled = d
		return nil
	})
	if err != nil {
		logger.Error("Failed to cancel discount", slog.String("discount_id", discountID), slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("Discount cancelled", slog.String("discount_id", discountID))
	return cancelled, nil
}
