package services_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type StudentServiceTestSuite struct {
	billingFixture
}

func TestStudentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StudentServiceTestSuite))
}

func (s *StudentServiceTestSuite) TestListStudents_FiltersByStatus() {
	active := domain.StudentActive
	s.studentRepo.On("ListStudents", s.ctx, &active, 20, 0).Return([]domain.Student{s.student}, nil).Once()

	students, err := s.svc.Student.ListStudents(s.ctx, dto.ListStudentsParams{Status: "ACTIVE", Limit: 20, Offset: -3})

	s.Require().NoError(err)
	s.Len(students, 1)
	s.assertMocks()
}

func (s *StudentServiceTestSuite) TestListStudents_UnknownStatus() {
	_, err := s.svc.Student.ListStudents(s.ctx, dto.ListStudentsParams{Status: "EXPELLED"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StudentServiceTestSuite) TestUpdateStudentStatus() {
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Once()
	s.studentRepo.On("UpdateStudent", s.ctx, mock.Anything, mock.MatchedBy(func(st domain.Student) bool {
		return st.Status == domain.StudentSuspended && st.LastUpdatedBy == s.actorID
	})).Return(nil).Once()

	st, err := s.svc.Student.UpdateStudentStatus(s.ctx, s.student.StudentID, domain.StudentSuspended, s.actorID)

	s.Require().NoError(err)
	s.Equal(domain.StudentSuspended, st.Status)
	s.assertMocks()
}

func (s *StudentServiceTestSuite) TestUpdateStudentStatus_Unchanged() {
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Once()

	_, err := s.svc.Student.UpdateStudentStatus(s.ctx, s.student.StudentID, domain.StudentActive, s.actorID)

	s.Require().NoError(err)
	s.studentRepo.AssertNotCalled(s.T(), "UpdateStudent", mock.Anything, mock.Anything, mock.Anything)
}

func (s *StudentServiceTestSuite) TestDeleteStudent_RequiresSettledBalance() {
	s.student.CurrentBalance = amount(250)
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Once()

	err := s.svc.Student.DeleteStudent(s.ctx, s.student.StudentID, s.actorID)

	var appErr *apperrors.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Equal(http.StatusConflict, appErr.Code)
	s.Equal("250", appErr.Details["currentBalance"])
	s.studentRepo.AssertNotCalled(s.T(), "MarkStudentDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *StudentServiceTestSuite) TestDeleteStudent() {
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Once()
	s.studentRepo.On("MarkStudentDeleted", s.ctx, s.student.StudentID, s.actorID, s.now).Return(nil).Once()

	s.Require().NoError(s.svc.Student.DeleteStudent(s.ctx, s.student.StudentID, s.actorID))
	s.assertMocks()
}

func (s *StudentServiceTestSuite) TestAddFeeLine() {
	s.studentRepo.On("FindStudentByID", s.ctx, s.student.StudentID).Return(&s.student, nil).Once()
	s.feeRepo.On("SaveFeeLines", s.ctx, mock.Anything, mock.MatchedBy(func(lines []domain.FeeLine) bool {
		return len(lines) == 1 && lines[0].IsActive && lines[0].Recurrence == domain.RecurrenceOneTime
	})).Return(nil).Once()

	line, err := s.svc.Student.AddFeeLine(s.ctx, s.student.StudentID, dto.AddFeeLineRequest{
		FeeType:     domain.FeeLaundry,
		Description: "Laundry (March)",
		Amount:      amount(300),
		Recurrence:  domain.RecurrenceOneTime,
	}, s.actorID)

	s.Require().NoError(err)
	s.Equal(s.student.StudentID, line.StudentID)
	s.assertMocks()
}

func (s *StudentServiceTestSuite) TestAddFeeLine_Validation() {
	_, err := s.svc.Student.AddFeeLine(s.ctx, s.student.StudentID, dto.AddFeeLineRequest{
		FeeType:    "PARKING",
		Amount:     amount(-1),
		Recurrence: "WEEKLY",
	}, s.actorID)

	var verr *apperrors.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Len(verr.Fields, 3)
	s.studentRepo.AssertNotCalled(s.T(), "FindStudentByID", mock.Anything, mock.Anything)
}

func (s *StudentServiceTestSuite) TestDeactivateFeeLine() {
	line := monthlyLine(s.student.StudentID, domain.FeeFood, 3000)
	s.feeRepo.On("FindFeeLineByID", s.ctx, line.FeeLineID).Return(&line, nil).Once()
	s.feeRepo.On("DeactivateFeeLine", s.ctx, line.FeeLineID, s.actorID, s.now).Return(nil).Once()

	s.Require().NoError(s.svc.Student.DeactivateFeeLine(s.ctx, s.student.StudentID, line.FeeLineID, s.actorID))
	s.assertMocks()
}

func (s *StudentServiceTestSuite) TestDeactivateFeeLine_OtherStudent() {
	line := monthlyLine(uuid.NewString(), domain.FeeFood, 3000)
	s.feeRepo.On("FindFeeLineByID", s.ctx, line.FeeLineID).Return(&line, nil).Once()

	err := s.svc.Student.DeactivateFeeLine(s.ctx, s.student.StudentID, line.FeeLineID, s.actorID)

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StudentServiceTestSuite) TestDeactivateFeeLine_AlreadyInactive() {
	line := monthlyLine(s.student.StudentID, domain.FeeFood, 3000)
	line.IsActive = false
	s.feeRepo.On("FindFeeLineByID", s.ctx, line.FeeLineID).Return(&line, nil).Once()

	err := s.svc.Student.DeactivateFeeLine(s.ctx, s.student.StudentID, line.FeeLineID, s.actorID)

	s.ErrorIs(err, apperrors.ErrConflict)
}
