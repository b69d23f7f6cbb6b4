package services

import (
	"context"
	"errors"
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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const paymentRecorded = "RECORDED"

// paymentService records payments and allocates them to invoices.
type paymentService struct {
	BaseService
	book        ledgerBook
	studentRepo portsrepo.StudentRepositoryFacade
	invoiceRepo portsrepo.InvoiceRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.PaymentSvcFacade {
	return &paymentService{
		BaseService: newBaseService(repos.TxManager, opts...),
		book:        ledgerBook{studentRepo: repos.StudentRepo, ledgerRepo: repos.LedgerRepo},
		studentRepo: repos.StudentRepo,
		invoiceRepo: repos.InvoiceRepo,
		paymentRepo: repos.PaymentRepo,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// GetPayment retrieves a payment with its allocations.
func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.paymentRepo.FindPaymentByID(ctx, paymentID)
}

// ListStudentPayments lists a student's payments, most recent first.
func (s *paymentService) ListStudentPayments(ctx context.Context, studentID string, params dto.ListPaymentsParams) ([]domain.Payment, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	return s.paymentRepo.ListPaymentsByStudent(ctx, studentID, pagination.NormalizeLimit(params.Limit), offset)
}

func validatePaymentRequest(req dto.RecordPaymentRequest) error {
	verr := &apperrors.ValidationError{}
	if !req.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	}
	if len(req.InvoiceIDs) > 0 && len(req.Allocations) > 0 {
		verr.Add("allocations", "cannot be combined with invoiceIDs")
	}
	if dups := lo.FindDuplicates(req.InvoiceIDs); len(dups) > 0 {
		verr.Add("invoiceIDs", "duplicate invoice "+dups[0])
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// RecordPayment records a payment and allocates it, in one transaction, to the
// requested invoices or to the student's open invoices oldest due first. Anything
// left over becomes advance credit.
func (s *paymentService) RecordPayment(ctx context.Context, studentID string, req dto.RecordPaymentRequest, actorID string) (*domain.RecordPaymentResult, error) {
	logger := s.GetLogger(ctx)

	if err := validatePaymentRequest(req); err != nil {
		return nil, err
	}
	paymentDate, err := dto.ParseOptionalDate("paymentDate", req.PaymentDate, domain.DateOnly(s.now()))
	if err != nil {
		return nil, err
	}

	var result *domain.RecordPaymentResult
	err = s.TxManager.RunInTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := s.now()
		student, err := s.book.lockStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		open, err := s.invoiceRepo.ListOpenInvoicesForUpdate(ctx, tx, studentID)
		if err != nil {
			return err
		}

		allocations, remainder, err := s.allocate(ctx, tx, studentID, req, open)
		if err != nil {
			return err
		}

		payment := domain.Payment{
			PaymentID:   uuid.NewString(),
			StudentID:   studentID,
			Amount:      req.Amount,
			Method:      req.Method,
			Reference:   req.Reference,
			PaymentDate: paymentDate,
			Notes:       req.Notes,
			AuditFields: domain.NewAuditFields(actorID, now),
		}

		openByID := lo.KeyBy(open, func(inv domain.Invoice) string { return inv.InvoiceID })
		touched := make([]domain.Invoice, 0, len(allocations))
		for _, a := range allocations {
			inv := openByID[a.InvoiceID]
			inv.PaidAmount = inv.PaidAmount.Add(a.Amount)
			inv.Status = accounting.InvoiceStatusFor(inv.Total, inv.PaidAmount, inv.DueDate, now)
			touched = append(touched, inv)
			payment.Allocations = append(payment.Allocations, domain.PaymentAllocation{
				AllocationID: uuid.NewString(),
				PaymentID:    payment.PaymentID,
				InvoiceID:    a.InvoiceID,
				Amount:       a.Amount,
				CreatedAt:    now,
			})
		}

		description := fmt.Sprintf("Payment (%s)", payment.Method)
		if payment.Reference != "" {
			description += " ref " + payment.Reference
		}
		entry, err := s.book.post(ctx, tx, student, entryDraft{
			Type:        domain.EntryPayment,
			Description: description,
			ReferenceID: lo.ToPtr(payment.PaymentID),
			Debit:       decimal.Zero,
			Credit:      payment.Amount,
			EntryDate:   paymentDate,
		}, actorID, now)
		if err != nil {
			return err
		}
		payment.LedgerEntryID = &entry.LedgerEntryID

		if err := s.paymentRepo.SavePayment(ctx, tx, payment); err != nil {
			return err
		}
		if len(touched) > 0 {
			if err := s.invoiceRepo.UpdateInvoicePayments(ctx, tx, touched, actorID, now); err != nil {
				return err
			}
		}
		derived, err := s.book.rebalance(ctx, tx, studentID, now)
		if err != nil {
			return err
		}

		result = &domain.RecordPaymentResult{
			Payment:     &payment,
			Unallocated: remainder,
			Balance:     balanceOf(studentID, derived),
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to record payment",
			slog.String("student_id", studentID),
			slog.String("amount", req.Amount.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Payment recorded",
		slog.String("payment_id", result.Payment.PaymentID),
		slog.String("student_id", studentID),
		slog.String("amount", req.Amount.String()),
		slog.Int("allocations", len(result.Payment.Allocations)),
		slog.String("unallocated", result.Unallocated.String()))
	s.notify(ctx, notification.Event{
		Type:        notification.PaymentRecorded,
		StudentID:   studentID,
		Amount:      req.Amount,
		ReferenceID: result.Payment.PaymentID,
		Data: map[string]any{
			"method":      string(req.Method),
			"unallocated": result.Unallocated.String(),
			"balance":     result.Balance.CurrentBalance.String(),
		},
	})
	return result, nil
}

// allocate decides how the payment is split across invoices.
func (s *paymentService) allocate(ctx context.Context, tx pgx.Tx, studentID string, req dto.RecordPaymentRequest, open []domain.Invoice) ([]accounting.Allocation, decimal.Decimal, error) {
	if len(req.Allocations) > 0 {
		requested := lo.Map(req.Allocations, func(a dto.AllocationRequest, _ int) accounting.Allocation {
			return accounting.Allocation{InvoiceID: a.InvoiceID, Amount: a.Amount}
		})
		dues := make(map[string]decimal.Decimal, len(open))
		for i := range open {
			dues[open[i].InvoiceID] = open[i].BalanceDue()
		}
		remainder, err := accounting.ValidateExplicitAllocations(req.Amount, requested, dues)
		var notOpen *accounting.InvoiceNotOpenError
		if errors.As(err, &notOpen) {
			return nil, decimal.Zero, s.explainNotOpen(ctx, tx, studentID, notOpen.InvoiceID)
		}
		if err != nil {
			return nil, decimal.Zero, err
		}
		return requested, remainder, nil
	}

	if len(req.InvoiceIDs) > 0 {
		openByID := lo.KeyBy(open, func(inv domain.Invoice) string { return inv.InvoiceID })
		targets := make([]accounting.OpenBalance, 0, len(req.InvoiceIDs))
		for _, id := range req.InvoiceIDs {
			inv, ok := openByID[id]
			if !ok {
				return nil, decimal.Zero, s.explainNotOpen(ctx, tx, studentID, id)
			}
			targets = append(targets, accounting.OpenBalance{InvoiceID: id, BalanceDue: inv.BalanceDue()})
		}
		allocations, remainder := accounting.AllocateGreedy(req.Amount, targets)
		return allocations, remainder, nil
	}

	targets := lo.Map(open, func(inv domain.Invoice, _ int) accounting.OpenBalance {
		return accounting.OpenBalance{InvoiceID: inv.InvoiceID, BalanceDue: inv.BalanceDue()}
	})
	allocations, remainder := accounting.AllocateGreedy(req.Amount, targets)
	return allocations, remainder, nil
}

// explainNotOpen returns NotFound for an invoice of another student and Conflict for
// one that is closed.
func (s *paymentService) explainNotOpen(ctx context.Context, tx pgx.Tx, studentID, invoiceID string) error {
	inv, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	if inv.StudentID != studentID {
		return fmt.Errorf("invoice %s for student %s: %w", invoiceID, studentID, apperrors.ErrNotFound)
	}
	return fmt.Errorf("%w: invoice %s is %s and cannot take payments", apperrors.ErrConflict, invoiceID, inv.Status)
}

// RecordPayments records each payment in its own transaction.
func (s *paymentService) RecordPayments(ctx context.Context, req dto.RecordPaymentsRequest, actorID string) ([]domain.BatchItemResult, error) {
	results := make([]domain.BatchItemResult, len(req.Payments))
	for i, item := range req.Payments {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}
		row := domain.BatchItemResult{Index: i, StudentID: item.StudentID}
		res, err := s.RecordPayment(ctx, item.StudentID, item.RecordPaymentRequest, actorID)
		if err != nil {
			row.Status = string(domain.GenerationFailed)
			row.Error = err.Error()
		} else {
			row.Status = paymentRecorded
			row.ID = res.Payment.PaymentID
		}
		results[i] = row
	}

	failed := lo.CountBy(results, func(r domain.BatchItemResult) bool { return r.Error != "" })
	s.LogInfo(ctx, "Payment batch processed", slog.Int("payments", len(results)), slog.Int("failed", failed))
	return results, nil
}
