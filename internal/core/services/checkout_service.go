package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/notification"
	"github.com/SscSPs/hostel_billing_app/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type checkoutService struct {
	BaseService
	book        ledgerBook
	studentRepo portsrepo.StudentRepositoryFacade
	feeRepo     portsrepo.FeeScheduleRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.CheckoutSvcFacade {
	return &checkoutService{
		BaseService: newBaseService(repos.TxManager, opts...),
		book:        ledgerBook{studentRepo: repos.StudentRepo, ledgerRepo: repos.LedgerRepo},
		studentRepo: repos.StudentRepo,
		feeRepo:     repos.FeeRepo,
		invoiceRepo: repos.InvoiceRepo,
	}
}

var _ portssvc.CheckoutSvcFacade = (*checkoutService)(nil)

// monthlyRate is the sum of the student's active monthly fee lines.
func monthlyRate(lines []domain.FeeLine) decimal.Decimal {
	return lo.Reduce(lines, func(acc decimal.Decimal, l domain.FeeLine, _ int) decimal.Decimal {
		if !l.IsMonthly() || !l.IsActive {
			return acc
		}
		return acc.Add(l.Amount)
	}, decimal.Zero)
}

func buildQuote(student *domain.Student, lines []domain.FeeLine, checkoutDate time.Time) domain.RefundQuote {
	rate := monthlyRate(lines)
	b := accounting.CheckoutRefund(rate, checkoutDate)
	return domain.RefundQuote{
		StudentID:       student.StudentID,
		CheckoutDate:    checkoutDate,
		MonthlyRate:     rate,
		DaysInMonth:     b.DaysInMonth,
		DaysUsed:        b.DaysUsed,
		UnusedDays:      b.UnusedDays,
		DailyRate:       b.DailyRate,
		RefundAmount:    b.Amount,
		OutstandingDues: decimal.Max(student.CurrentBalance, decimal.Zero),
		Eligible:        !student.HasOutstandingDues(),
	}
}

func checkCheckoutDate(student *domain.Student, checkoutDate time.Time) error {
	if checkoutDate.Before(domain.DateOnly(student.EnrollmentDate)) {
		return apperrors.NewValidationError("checkoutDate", "is before the enrollment date")
	}
	return nil
}

// CalculateCheckoutRefund quotes the refund for unused days without changing anything.
func (s *checkoutService) CalculateCheckoutRefund(ctx context.Context, studentID string, checkoutDate time.Time) (*domain.RefundQuote, error) {
	student, err := s.studentRepo.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	checkoutDate = domain.DateOnly(checkoutDate)
	if err := checkCheckoutDate(student, checkoutDate); err != nil {
		return nil, err
	}
	lines, err := s.feeRepo.ListFeeLines(ctx, nil, studentID, true)
	if err != nil {
		return nil, err
	}
	quote := buildQuote(student, lines, checkoutDate)
	return &quote, nil
}

// CheckoutStudent closes a student's stay. Outstanding dues block the checkout unless
// DeferDues is set; a refund is only paid out when nothing is owed and the checkout
// month has a live invoice.
func (s *checkoutService) CheckoutStudent(ctx context.Context, studentID string, req dto.CheckoutRequest, actorID string) (*domain.CheckoutResult, error) {
	logger := s.GetLogger(ctx)

	checkoutDate, err := dto.ParseDate("checkoutDate", req.CheckoutDate)
	if err != nil {
		return nil, err
	}

	var result *domain.CheckoutResult
	err = s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := s.now()
		student, err := s.book.lockStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if student.Status != domain.StudentActive {
			return fmt.Errorf("%w: student %s is %s", apperrors.ErrConflict, studentID, student.Status)
		}
		if err := checkCheckoutDate(student, checkoutDate); err != nil {
			return err
		}
		if student.HasOutstandingDues() && !req.DeferDues {
			return apperrors.NewAppError(http.StatusConflict, "student has outstanding dues", apperrors.ErrConflict).
				WithDetails(map[string]any{"outstandingDues": student.CurrentBalance.String()})
		}

		lines, err := s.feeRepo.ListFeeLines(ctx, tx, studentID, true)
		if err != nil {
			return err
		}
		quote := buildQuote(student, lines, checkoutDate)

		payRefund := quote.Eligible && quote.RefundAmount.IsPositive()
		if payRefund {
			// Unused days are only refundable when the month was actually billed.
			_, err := s.invoiceRepo.FindInvoiceByStudentAndMonth(ctx, tx, studentID, domain.MonthStart(checkoutDate))
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				logger.Info("No invoice for checkout month, refund not posted",
					slog.String("student_id", studentID),
					slog.String("billing_month", domain.MonthStart(checkoutDate).Format(dto.MonthLayout)))
				payRefund = false
			case err != nil:
				return err
			}
		}

		var entries []domain.LedgerEntry
		if payRefund {
			adjustment, err := s.book.post(ctx, tx, student, entryDraft{
				Type:        domain.EntryAdjustment,
				Description: fmt.Sprintf("Unused stay credit: %d of %d days", quote.UnusedDays, quote.DaysInMonth),
				Credit:      quote.RefundAmount,
				Debit:       decimal.Zero,
				EntryDate:   checkoutDate,
			}, actorID, now)
			if err != nil {
				return err
			}
			refund, err := s.book.post(ctx, tx, student, entryDraft{
				Type:        domain.EntryRefund,
				Description: "Checkout refund paid",
				Debit:       quote.RefundAmount,
				Credit:      decimal.Zero,
				EntryDate:   checkoutDate,
			}, actorID, now)
			if err != nil {
				return err
			}
			entries = append(entries, *adjustment, *refund)
		}

		if err := s.feeRepo.DeactivateMonthlyFeeLines(ctx, tx, studentID, actorID, now); err != nil {
			return err
		}
		student.Status = domain.StudentInactive
		student.CheckoutDate = &checkoutDate
		student.Touch(actorID, now)
		if err := s.studentRepo.UpdateStudent(ctx, tx, *student); err != nil {
			return err
		}
		if len(entries) > 0 {
			if _, err := s.book.rebalance(ctx, tx, studentID, now); err != nil {
				return err
			}
		}

		result = &domain.CheckoutResult{
			Student:      student,
			Quote:        quote,
			DuesDeferred: student.HasOutstandingDues(),
			RefundPosted: payRefund,
			Entries:      entries,
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to check out student", slog.String("student_id", studentID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Student checked out",
		slog.String("student_id", studentID),
		slog.String("checkout_date", checkoutDate.Format(dto.DateLayout)),
		slog.String("refund", result.Quote.RefundAmount.String()),
		slog.Bool("refund_posted", result.RefundPosted),
		slog.Bool("dues_deferred", result.DuesDeferred))
	s.notify(ctx, notification.Event{
		Type:      notification.StudentCheckedOut,
		StudentID: studentID,
		Amount:    lo.Ternary(result.RefundPosted, result.Quote.RefundAmount, decimal.Zero),
		Data: map[string]any{
			"checkoutDate":    checkoutDate.Format(dto.DateLayout),
			"outstandingDues": result.Quote.OutstandingDues.String(),
			"notes":           req.Notes,
		},
	})
	return result, nil
}
