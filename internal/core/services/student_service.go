package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/utils/pagination"
	"github.com/google/uuid"
)

// studentService manages residents and their fee schedules.
type studentService struct {
	BaseService
	studentRepo portsrepo.StudentRepositoryFacade
	feeRepo     portsrepo.FeeScheduleRepositoryFacade
}

// NewStudentService creates a new StudentService.
func NewStudentService(repos portsrepo.RepositoryProvider, opts ...Option) portssvc.StudentSvcFacade {
	return &studentService{
		BaseService: newBaseService(repos.TxManager, opts...),
		studentRepo: repos.StudentRepo,
		feeRepo:     repos.FeeRepo,
	}
}

var _ portssvc.StudentSvcFacade = (*studentService)(nil)

func (s *studentService) GetStudent(ctx context.Context, studentID string) (*domain.Student, error) {
	return s.studentRepo.FindStudentByID(ctx, studentID)
}

func (s *studentService) ListStudents(ctx context.Context, params dto.ListStudentsParams) ([]domain.Student, error) {
	var status *domain.StudentStatus
	if params.Status != "" {
		st := domain.StudentStatus(params.Status)
		if !st.IsValid() {
			return nil, apperrors.NewValidationError("status", "unknown student status")
		}
		status = &st
	}
	offset := max(params.Offset, 0)
	return s.studentRepo.ListStudents(ctx, status, pagination.NormalizeLimit(params.Limit), offset)
}

// UpdateStudentStatus changes the lifecycle status of a student.
func (s *studentService) UpdateStudentStatus(ctx context.Context, studentID string, status domain.StudentStatus, actorID string) (*domain.Student, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("status", "unknown student status")
	}
	student, err := s.studentRepo.FindStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Status == status {
		return student, nil
	}

	previous := student.Status
	student.Status = status
	student.Touch(actorID, s.now())
	if err := s.studentRepo.UpdateStudent(ctx, nil, *student); err != nil {
		s.LogError(ctx, err, "Failed to update student status", slog.String("student_id", studentID))
		return nil, err
	}
	s.LogInfo(ctx, "Student status changed",
		slog.String("student_id", studentID),
		slog.String("from", string(previous)),
		slog.String("to", string(status)))
	return student, nil
}

// DeleteStudent soft-deletes a student whose balance is settled.
func (s *studentService) DeleteStudent(ctx context.Context, studentID string, actorID string) error {
	student, err := s.studentRepo.FindStudentByID(ctx, studentID)
	if err != nil {
		return err
	}
	if !student.CurrentBalance.IsZero() {
		return apperrors.NewAppError(http.StatusConflict, "student balance must be zero before deletion", apperrors.ErrConflict).
			WithDetails(map[string]any{"currentBalance": student.CurrentBalance.String()})
	}
	if err := s.studentRepo.MarkStudentDeleted(ctx, studentID, actorID, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to delete student", slog.String("student_id", studentID))
		return err
	}
	s.LogInfo(ctx, "Student deleted", slog.String("student_id", studentID), slog.String("actor_id", actorID))
	return nil
}

// AddFeeLine adds a charge to the student's fee schedule.
func (s *studentService) AddFeeLine(ctx context.Context, studentID string, req dto.AddFeeLineRequest, actorID string) (*domain.FeeLine, error) {
	verr := &apperrors.ValidationError{}
	if !req.Amount.IsPositive() {
		verr.Add("amount", "must be greater than zero")
	}
	switch req.FeeType {
	case domain.FeeAccommodation, domain.FeeFood, domain.FeeLaundry, domain.FeeUtilities, domain.FeeOther:
	default:
		verr.Add("feeType", "unknown fee type")
	}
	if req.Recurrence != domain.RecurrenceMonthly && req.Recurrence != domain.RecurrenceOneTime {
		verr.Add("recurrence", "must be MONTHLY or ONE_TIME")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	line := domain.FeeLine{
		FeeLineID:   uuid.NewString(),
		StudentID:   studentID,
		FeeType:     req.FeeType,
		Description: req.Description,
		Amount:      req.Amount,
		Recurrence:  req.Recurrence,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(actorID, s.now()),
	}
	if err := s.feeRepo.SaveFeeLines(ctx, nil, []domain.FeeLine{line}); err != nil {
		s.LogError(ctx, err, "Failed to add fee line", slog.String("student_id", studentID))
		return nil, err
	}
	return &line, nil
}

func (s *studentService) ListFeeLines(ctx context.Context, studentID string, activeOnly bool) ([]domain.FeeLine, error) {
	if _, err := s.studentRepo.FindStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.feeRepo.ListFeeLines(ctx, nil, studentID, activeOnly)
}

// DeactivateFeeLine stops a fee line from being billed. Past invoices are untouched.
func (s *studentService) DeactivateFeeLine(ctx context.Context, studentID string, feeLineID string, actorID string) error {
	line, err := s.feeRepo.FindFeeLineByID(ctx, feeLineID)
	if err != nil {
		return err
	}
	if line.StudentID != studentID {
		return fmt.Errorf("fee line %s for student %s: %w", feeLineID, studentID, apperrors.ErrNotFound)
	}
	if !line.IsActive {
		return fmt.Errorf("%w: fee line %s is already inactive", apperrors.ErrConflict, feeLineID)
	}
	return s.feeRepo.DeactivateFeeLine(ctx, feeLineID, actorID, s.now())
}
