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
	"github.com/SscSPs/hostel_billing_app/internal/platform/config"
	"github.com/SscSPs/hostel_billing_app/internal/utils/accounting"
	"github.com/SscSPs/hostel_billing_app/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// invoiceService generates, cancels and ages invoices.
type invoiceService struct {
	BaseService
	book        ledgerBook
	studentRepo portsrepo.StudentRepositoryFacade
	feeRepo     portsrepo.FeeScheduleRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	dueDays     int
	concurrency int
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...Option) portssvc.InvoiceSvcFacade {
	return newInvoiceService(cfg, repos, opts...)
}

func newInvoiceService(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...Option) *invoiceService {
	dueDays, concurrency := 10, 4
	if cfg != nil {
		dueDays = cfg.InvoiceDueDays
		if cfg.BatchConcurrency > 0 {
			concurrency = cfg.BatchConcurrency
		}
	}
	return &invoiceService{
		BaseService: newBaseService(repos.TxManager, opts...),
		book:        ledgerBook{studentRepo: repos.StudentRepo, ledgerRepo: repos.LedgerRepo},
		studentRepo: repos.StudentRepo,
		feeRepo:     repos.FeeRepo,
		invoiceRepo: repos.InvoiceRepo,
		dueDays:     dueDays,
		concurrency: concurrency,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// GetInvoice retrieves an invoice with its items.
func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
}

// ListStudentInvoices pages a student's invoices, newest billing month first.
func (s *invoiceService) ListStudentInvoices(ctx context.Context, studentID string, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	var status *domain.InvoiceStatus
	if params.Status != "" {
		st := domain.InvoiceStatus(params.Status)
		status = &st
	}

	var afterMonth, afterCreated *time.Time
	if params.NextToken != nil && *params.NextToken != "" {
		month, created, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, apperrors.NewValidationError("nextToken", "is not a valid page token")
		}
		afterMonth, afterCreated = &month, &created
	}

	limit := pagination.NormalizeLimit(params.Limit)
	invoices, err := s.invoiceRepo.ListInvoicesByStudent(ctx, studentID, status, limit+1, afterMonth, afterCreated)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices", slog.String("student_id", studentID))
		return nil, err
	}

	res := &dto.ListInvoicesResponse{}
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[len(invoices)-1]
		token := pagination.EncodeToken(last.BillingMonth, last.CreatedAt)
		res.NextToken = &token
	}
	res.Invoices = dto.ToInvoiceResponses(invoices)
	return res, nil
}

// GenerateInvoice bills one student for one month.
func (s *invoiceService) GenerateInvoice(ctx context.Context, studentID string, month time.Time, actorID string) (*domain.GenerateInvoiceResult, error) {
	logger := s.GetLogger(ctx)
	billingMonth := domain.MonthStart(month)

	var result *domain.GenerateInvoiceResult
	err := s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		student, err := s.book.lockStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		result, err = s.generateLocked(ctx, tx, student, billingMonth, actorID, s.now())
		return err
	})
	if err != nil {
		var dup *apperrors.DuplicatePeriodError
		if errors.As(err, &dup) {
			// Lost a race against a concurrent generator that committed first.
			existing, findErr := s.invoiceRepo.FindInvoiceByStudentAndMonth(ctx, nil, studentID, billingMonth)
			if findErr == nil {
				return &domain.GenerateInvoiceResult{Status: domain.GenerationSkipped, ExistingInvoiceID: existing.InvoiceID}, nil
			}
		}
		logger.Error("Failed to generate invoice",
			slog.String("student_id", studentID),
			slog.String("billing_month", billingMonth.Format(dto.MonthLayout)),
			slog.String("error", err.Error()))
		return nil, err
	}

	if result.Status == domain.GenerationSkipped {
		logger.Info("Invoice already exists for period",
			slog.String("student_id", studentID),
			slog.String("invoice_id", result.ExistingInvoiceID))
		return result, nil
	}

	inv := result.Invoice
	logger.Info("Invoice generated",
		slog.String("invoice_id", inv.InvoiceID),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("student_id", studentID),
		slog.String("total", inv.Total.String()))
	s.notify(ctx, notification.Event{
		Type:        notification.InvoiceGenerated,
		StudentID:   studentID,
		Amount:      inv.Total,
		ReferenceID: inv.InvoiceID,
		Data: map[string]any{
			"invoiceNumber": inv.InvoiceNumber,
			"billingMonth":  inv.BillingMonth.Format(dto.MonthLayout),
			"dueDate":       inv.DueDate.Format(dto.DateLayout),
		},
	})
	return result, nil
}

// generateLocked builds and persists the invoice for a locked student. It is shared
// with booking approval, which runs it inside its own transaction.
func (s *invoiceService) generateLocked(ctx context.Context, tx pgx.Tx, student *domain.Student, billingMonth time.Time, actorID string, now time.Time) (*domain.GenerateInvoiceResult, error) {
	if student.Status != domain.StudentActive {
		return nil, apperrors.NewValidationError("studentID", fmt.Sprintf("student is %s; only active students are billed", student.Status))
	}
	if billingMonth.Before(domain.MonthStart(student.EnrollmentDate)) {
		return nil, apperrors.NewValidationError("month", "billing month ends before the enrollment date")
	}

	existing, err := s.invoiceRepo.FindInvoiceByStudentAndMonth(ctx, tx, student.StudentID, billingMonth)
	if err == nil {
		return &domain.GenerateInvoiceResult{Status: domain.GenerationSkipped, ExistingInvoiceID: existing.InvoiceID}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	lines, err := s.feeRepo.ListFeeLines(ctx, tx, student.StudentID, true)
	if err != nil {
		return nil, err
	}

	invoiceID := uuid.NewString()
	items := make([]domain.InvoiceItem, 0, len(lines))
	var oneTimeIDs []string
	prorated := false
	for _, line := range lines {
		amount := line.Amount
		if line.IsMonthly() {
			var applied bool
			amount, applied = accounting.ProrateMonthly(line.Amount, student.EnrollmentDate, billingMonth)
			prorated = prorated || applied
		} else {
			oneTimeIDs = append(oneTimeIDs, line.FeeLineID)
		}
		description := line.Description
		if description == "" {
			description = string(line.FeeType)
		}
		items = append(items, domain.InvoiceItem{
			InvoiceItemID: uuid.NewString(),
			InvoiceID:     invoiceID,
			FeeLineID:     lo.ToPtr(line.FeeLineID),
			Description:   description,
			Category:      line.InvoiceItemCategory(),
			UnitAmount:    amount,
			Quantity:      1,
			Amount:        amount,
		})
	}
	total := lo.Reduce(items, func(acc decimal.Decimal, it domain.InvoiceItem, _ int) decimal.Decimal {
		return acc.Add(it.Amount)
	}, decimal.Zero)

	billingDate := billingMonth
	if enrolled := domain.DateOnly(student.EnrollmentDate); accounting.SameMonth(enrolled, billingMonth) {
		billingDate = enrolled
	}
	dueDate := billingDate.AddDate(0, 0, s.dueDays)
	advanceApplied := decimal.Min(student.AdvanceBalance, total)

	inv := domain.Invoice{
		InvoiceID:      invoiceID,
		StudentID:      student.StudentID,
		BillingMonth:   billingMonth,
		BillingDate:    billingDate,
		DueDate:        dueDate,
		Total:          total,
		PaidAmount:     advanceApplied,
		AdvanceApplied: advanceApplied,
		Status:         accounting.InvoiceStatusFor(total, advanceApplied, dueDate, now),
		IsProrated:     prorated,
		Items:          items,
		AuditFields:    domain.NewAuditFields(actorID, now),
	}

	if total.IsPositive() {
		entry, err := s.book.post(ctx, tx, student, entryDraft{
			Type:        domain.EntryInvoice,
			Description: "Invoice for " + billingMonth.Format(dto.MonthLayout),
			ReferenceID: lo.ToPtr(invoiceID),
			Debit:       total,
			Credit:      decimal.Zero,
			EntryDate:   billingDate,
		}, actorID, now)
		if err != nil {
			return nil, err
		}
		inv.LedgerEntryID = &entry.LedgerEntryID
	}

	number, err := s.invoiceRepo.SaveInvoice(ctx, tx, inv)
	if err != nil {
		return nil, err
	}
	inv.InvoiceNumber = number

	if len(oneTimeIDs) > 0 {
		if err := s.feeRepo.MarkFeeLinesBilled(ctx, tx, oneTimeIDs, actorID, now); err != nil {
			return nil, err
		}
	}
	if total.IsPositive() {
		if _, err := s.book.rebalance(ctx, tx, student.StudentID, now); err != nil {
			return nil, err
		}
	}
	return &domain.GenerateInvoiceResult{Status: domain.GenerationGenerated, Invoice: &inv}, nil
}

// GenerateMonthlyInvoices bills every active student with bounded concurrency. A
// failure for one student is reported in its result row and does not stop the rest.
func (s *invoiceService) GenerateMonthlyInvoices(ctx context.Context, month time.Time, actorID string) ([]domain.BatchItemResult, error) {
	logger := s.GetLogger(ctx)

	ids, err := s.studentRepo.ListActiveStudentIDs(ctx)
	if err != nil {
		logger.Error("Failed to list active students", slog.String("error", err.Error()))
		return nil, err
	}

	results := make([]domain.BatchItemResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, studentID := range ids {
		g.Go(func() error {
			item := domain.BatchItemResult{Index: i, StudentID: studentID}
			res, err := s.GenerateInvoice(gctx, studentID, month, actorID)
			switch {
			case err != nil:
				item.Status = string(domain.GenerationFailed)
				item.Error = err.Error()
			case res.Status == domain.GenerationSkipped:
				item.Status = string(res.Status)
				item.ID = res.ExistingInvoiceID
			default:
				item.Status = string(res.Status)
				item.ID = res.Invoice.InvoiceID
			}
			results[i] = item
			return nil
		})
	}
	_ = g.Wait()

	failed := lo.CountBy(results, func(r domain.BatchItemResult) bool { return r.Status == string(domain.GenerationFailed) })
	logger.Info("Monthly invoice run finished",
		slog.String("billing_month", domain.MonthStart(month).Format(dto.MonthLayout)),
		slog.Int("students", len(ids)),
		slog.Int("failed", failed))
	return results, ctx.Err()
}

// CancelInvoice cancels an invoice that has received no money and reverses its
// ledger entry.
func (s *invoiceService) CancelInvoice(ctx context.Context, invoiceID string, reason string, actorID string) (*domain.Invoice, error) {
	logger := s.GetLogger(ctx)

	current, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	var cancelled *domain.Invoice
	err = s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := s.now()
		student, err := s.book.lockStudent(ctx, tx, current.StudentID)
		if err != nil {
			return err
		}
		inv, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status == domain.InvoiceCancelled {
			return fmt.Errorf("%w: invoice %s is already cancelled", apperrors.ErrConflict, invoiceID)
		}
		if !inv.PaidAmount.IsZero() || !inv.AdvanceApplied.IsZero() {
			return apperrors.NewAppError(http.StatusConflict, "invoice has payments applied and cannot be cancelled", apperrors.ErrConflict).
				WithDetails(map[string]any{"paidAmount": inv.PaidAmount.String(), "advanceApplied": inv.AdvanceApplied.String()})
		}

		if inv.LedgerEntryID != nil {
			if _, err := s.book.reverse(ctx, tx, student, *inv.LedgerEntryID, "invoice "+inv.InvoiceNumber+" cancelled", actorID, now); err != nil {
				return err
			}
		}
		if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, tx, invoiceID, domain.InvoiceCancelled, reason, actorID, now); err != nil {
			return err
		}
		// One-time charges go back on the schedule so a regenerated invoice picks them up.
		if feeLineIDs := billedFeeLineIDs(current.Items); len(feeLineIDs) > 0 {
			if err := s.feeRepo.RestoreBilledFeeLines(ctx, tx, feeLineIDs, actorID, now); err != nil {
				return err
			}
		}
		if inv.LedgerEntryID != nil {
			if _, err := s.book.rebalance(ctx, tx, student.StudentID, now); err != nil {
				return err
			}
		}

		inv.Status = domain.InvoiceCancelled
		inv.Notes = reason
		inv.Items = current.Items
		inv.Touch(actorID, now)
		cancelled = inv
		return nil
	})
	if err != nil {
		logger.Error("Failed to cancel invoice", slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Invoice cancelled", slog.String("invoice_id", invoiceID), slog.String("actor_id", actorID))
	s.notify(ctx, notification.Event{
		Type:        notification.InvoiceCancelled,
		StudentID:   cancelled.StudentID,
		Amount:      cancelled.Total,
		ReferenceID: invoiceID,
		Data:        map[string]any{"reason": reason},
	})
	return cancelled, nil
}

// MarkOverdueInvoices moves unpaid invoices past their due date to Overdue.
func (s *invoiceService) MarkOverdueInvoices(ctx context.Context, asOf time.Time, actorID string) (int64, error) {
	n, err := s.invoiceRepo.MarkOverdue(ctx, domain.DateOnly(asOf), actorID, s.now())
	if err != nil {
		s.LogError(ctx, err, "Failed to mark invoices overdue")
		return 0, err
	}
	s.LogInfo(ctx, "Marked invoices overdue", slog.Int64("count", n), slog.String("as_of", asOf.Format(dto.DateLayout)))
	return n, nil
}

// billedFeeLineIDs returns the fee lines behind an invoice's items. The adapter
// only touches the one-time lines among them.
func billedFeeLineIDs(items []domain.InvoiceItem) []string {
	return lo.FilterMap(items, func(it domain.InvoiceItem, _ int) (string, bool) {
		return lo.FromPtr(it.FeeLineID), it.FeeLineID != nil
	})
}
