package services

import (
	"context"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
)

// StudentReaderSvc defines read operations for students
type StudentReaderSvc interface {
	GetStudent(ctx context.Context, studentID string) (*domain.Student, error)
	ListStudents(ctx context.Context, params dto.ListStudentsParams) ([]domain.Student, error)
}

// StudentWriterSvc defines write operations for students
type StudentWriterSvc interface {
	UpdateStudentStatus(ctx context.Context, studentID string, status domain.StudentStatus, actorID string) (*domain.Student, error)

	// DeleteStudent soft-deletes a student whose balance is zero.
	DeleteStudent(ctx context.Context, studentID string, actorID string) error
}

// FeeScheduleSvc defines operations on a student's fee schedule
type FeeScheduleSvc interface {
	AddFeeLine(ctx context.Context, studentID string, req dto.AddFeeLineRequest, actorID string) (*domain.FeeLine, error)
	ListFeeLines(ctx context.Context, studentID string, activeOnly bool) ([]domain.FeeLine, error)
	DeactivateFeeLine(ctx context.Context, studentID string, feeLineID string, actorID string) error
}

// StudentSvcFacade combines all student-related service interfaces
type StudentSvcFacade interface {
	StudentReaderSvc
	StudentWriterSvc
	FeeScheduleSvc
}
