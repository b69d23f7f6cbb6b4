package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/hostel_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const studentColumns = `student_id, name, email, phone, room_number, status, current_balance, advance_balance,
	enrollment_date, checkout_date, booking_id, created_at, created_by, last_updated_at, last_updated_by, deleted_at`

// PgxStudentRepository persists students.
type PgxStudentRepository struct {
	BaseRepository
}

func newPgxStudentRepository(pool *pgxpool.Pool) portsrepo.StudentRepositoryFacade {
	return &PgxStudentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StudentRepositoryFacade = (*PgxStudentRepository)(nil)

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var s domain.Student
	err := row.Scan(
		&s.StudentID,
		&s.Name,
		&s.Email,
		&s.Phone,
		&s.RoomNumber,
		&s.Status,
		&s.CurrentBalance,
		&s.AdvanceBalance,
		&s.EnrollmentDate,
		&s.CheckoutDate,
		&s.BookingID,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
		&s.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveStudent inserts a new student.
func (r *PgxStudentRepository) SaveStudent(ctx context.Context, tx pgx.Tx, s domain.Student) error {
	query := `
		INSERT INTO students (` + studentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.q(tx).Exec(ctx, query,
		s.StudentID, s.Name, s.Email, s.Phone, s.RoomNumber, s.Status,
		s.CurrentBalance, s.AdvanceBalance, s.EnrollmentDate, s.CheckoutDate, s.BookingID,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy, s.DeletedAt,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: student with ID %s already exists", apperrors.ErrDuplicate, s.StudentID)
		}
		return fmt.Errorf("failed to save student %s: %w", s.StudentID, err)
	}
	return nil
}

// FindStudentByID retrieves a non-deleted student.
func (r *PgxStudentRepository) FindStudentByID(ctx context.Context, studentID string) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_id = $1 AND deleted_at IS NULL;`
	s, err := scanStudent(r.Pool.QueryRow(ctx, query, studentID))
	if err != nil {
		return nil, notFoundOr(err, "student", studentID)
	}
	return s, nil
}

// FindStudentByIDForUpdate retrieves a non-deleted student and locks the row.
func (r *PgxStudentRepository) FindStudentByIDForUpdate(ctx context.Context, tx pgx.Tx, studentID string) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE student_id = $1 AND deleted_at IS NULL FOR UPDATE;`
	s, err := scanStudent(tx.QueryRow(ctx, query, studentID))
	if err != nil {
		return nil, notFoundOr(err, "student", studentID)
	}
	return s, nil
}

// ListStudents retrieves a page of non-deleted students.
func (r *PgxStudentRepository) ListStudents(ctx context.Context, status *domain.StudentStatus, limit int, offset int) ([]domain.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE deleted_at IS NULL AND ($1::text IS NULL OR status = $1)
		ORDER BY name, student_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []domain.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

// ListActiveStudentIDs returns the ids of every active, non-deleted student.
func (r *PgxStudentRepository) ListActiveStudentIDs(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT student_id FROM students
		WHERE status = 'ACTIVE' AND deleted_at IS NULL
		ORDER BY student_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active students: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect active student ids: %w", err)
	}
	return ids, nil
}

// UpdateStudent writes the mutable profile and lifecycle fields. Balances are not
// touched here; they are owned by UpdateStudentBalances.
func (r *PgxStudentRepository) UpdateStudent(ctx context.Context, tx pgx.Tx, s domain.Student) error {
	query := `
		UPDATE students
		SET name = $2, email = $3, phone = $4, room_number = $5, status = $6, checkout_date = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE student_id = $1 AND deleted_at IS NULL;
	`
	ct, err := r.q(tx).Exec(ctx, query,
		s.StudentID, s.Name, s.Email, s.Phone, s.RoomNumber, s.Status, s.CheckoutDate,
		s.LastUpdatedAt, s.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update student %s: %w", s.StudentID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("student %s: %w", s.StudentID, apperrors.ErrNotFound)
	}
	return nil
}

// UpdateStudentBalances writes the derived balance columns.
func (r *PgxStudentRepository) UpdateStudentBalances(ctx context.Context, tx pgx.Tx, studentID string, current, advance decimal.Decimal, now time.Time) error {
	ct, err := tx.Exec(ctx, `
		UPDATE students
		SET current_balance = $2, advance_balance = $3, last_updated_at = $4
		WHERE student_id = $1;
	`, studentID, current, advance, now)
	if err != nil {
		return fmt.Errorf("failed to update balances for student %s: %w", studentID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("student %s: %w", studentID, apperrors.ErrNotFound)
	}
	return nil
}

// MarkStudentDeleted soft-deletes a student.
func (r *PgxStudentRepository) MarkStudentDeleted(ctx context.Context, studentID string, userID string, now time.Time) error {
	ct, err := r.Pool.Exec(ctx, `
		UPDATE students
		SET deleted_at = $2, status = 'INACTIVE', last_updated_at = $2, last_updated_by = $3
		WHERE student_id = $1 AND deleted_at IS NULL;
	`, studentID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to delete student %s: %w", studentID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("student %s: %w", studentID, apperrors.ErrNotFound)
	}
	return nil
}
