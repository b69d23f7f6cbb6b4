package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// StudentReader defines read operations for student data
type StudentReader interface {
	// FindStudentByID retrieves a student that has not been soft-deleted.
	FindStudentByID(ctx context.Context, studentID string) (*domain.Student, error)

	// ListStudents retrieves a page of students, optionally filtered by status.
	ListStudents(ctx context.Context, status *domain.StudentStatus, limit int, offset int) ([]domain.Student, error)

	// ListActiveStudentIDs returns the ids of every active, non-deleted student.
	ListActiveStudentIDs(ctx context.Context) ([]string, error)
}

// StudentWriter defines write operations for student data
type StudentWriter interface {
	SaveStudent(ctx context.Context, tx pgx.Tx, student domain.Student) error
	UpdateStudent(ctx context.Context, tx pgx.Tx, student domain.Student) error
	MarkStudentDeleted(ctx context.Context, studentID string, userID string, now time.Time) error
}

// StudentTransactionSupport defines locked reads and balance writes used inside ledger transactions.
type StudentTransactionSupport interface {
	// FindStudentByIDForUpdate selects the student row FOR UPDATE. All ledger
	// mutations for a student serialize on this lock.
	FindStudentByIDForUpdate(ctx context.Context, tx pgx.Tx, studentID string) (*domain.Student, error)

	// UpdateStudentBalances writes the derived balance columns.
	UpdateStudentBalances(ctx context.Context, tx pgx.Tx, studentID string, current, advance decimal.Decimal, now time.Time) error
}

// StudentRepositoryFacade combines all student-related repository interfaces
type StudentRepositoryFacade interface {
	StudentReader
	StudentWriter
	StudentTransactionSupport
}
