package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// studentHandler handles HTTP requests related to students and their fee schedules.
type studentHandler struct {
	studentService portssvc.StudentSvcFacade
}

func newStudentHandler(ss portssvc.StudentSvcFacade) *studentHandler {
	return &studentHandler{studentService: ss}
}

// RegisterStudentRoutes registers student and fee-line routes.
func RegisterStudentRoutes(rg *gin.RouterGroup, studentService portssvc.StudentSvcFacade) {
	h := newStudentHandler(studentService)

	students := rg.Group("/students")
	{
		students.GET("", h.listStudents)
		students.GET("/:studentID", h.getStudent)
		students.PATCH("/:studentID/status", h.updateStudentStatus)
		students.DELETE("/:studentID", h.deleteStudent)

		students.POST("/:studentID/fees", h.addFeeLine)
		students.GET("/:studentID/fees", h.listFeeLines)
		students.DELETE("/:studentID/fees/:feeID", h.deactivateFeeLine)
	}
}

// listStudents godoc
// @Summary List students
// @Description Lists students, optionally filtered by status
// @Tags students
// @Produce  json
// @Param   status query string false "Student status" Enums(ACTIVE, INACTIVE, SUSPENDED, GRADUATED)
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.StudentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Failed to list students"
// @Router /students [get]
func (h *studentHandler) listStudents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListStudentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	students, err := h.studentService.ListStudents(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "list students")
		return
	}
	c.JSON(http.StatusOK, dto.ToStudentResponses(students))
}

// getStudent godoc
// @Summary Get a student
// @Description Retrieves a student with the stored balances
// @Tags students
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Success 200 {object} dto.StudentResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve student"
// @Router /students/{studentID} [get]
func (h *studentHandler) getStudent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", c.Param("studentID")))

	student, err := h.studentService.GetStudent(c.Request.Context(), c.Param("studentID"))
	if err != nil {
		respondServiceError(c, logger, err, "retrieve student")
		return
	}
	c.JSON(http.StatusOK, dto.ToStudentResponse(student))
}

// updateStudentStatus godoc
// @Summary Change a student's status
// @Tags students
// @Accept  json
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   status body dto.UpdateStudentStatusRequest true "New status"
// @Success 200 {object} dto.StudentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to update student"
// @Router /students/{studentID}/status [patch]
func (h *studentHandler) updateStudentStatus(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var req dto.UpdateStudentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	student, err := h.studentService.UpdateStudentStatus(c.Request.Context(), studentID, req.Status, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "update student")
		return
	}
	logger.Info("Student status updated", slog.String("status", string(student.Status)))
	c.JSON(http.StatusOK, dto.ToStudentResponse(student))
}

// deleteStudent godoc
// @Summary Delete a student
// @Description Soft-deletes a student whose balance is settled
// @Tags students
// @Param   studentID path string true "Student ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student has an outstanding balance"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete student"
// @Router /students/{studentID} [delete]
func (h *studentHandler) deleteStudent(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))

	if err := h.studentService.DeleteStudent(c.Request.Context(), studentID, middleware.GetActorIDFromContext(c)); err != nil {
		respondServiceError(c, logger, err, "delete student")
		return
	}
	logger.Info("Student deleted")
	c.Status(http.StatusNoContent)
}

// addFeeLine godoc
// @Summary Add a fee line
// @Description Adds a monthly or one-time charge to a student's fee schedule
// @Tags fees
// @Accept  json
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   fee body dto.AddFeeLineRequest true "Fee line"
// @Success 201 {object} dto.FeeLineResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to add fee line"
// @Router /students/{studentID}/fees [post]
func (h *studentHandler) addFeeLine(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var req dto.AddFeeLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	line, err := h.studentService.AddFeeLine(c.Request.Context(), studentID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "add fee line")
		return
	}
	logger.Info("Fee line added", slog.String("fee_line_id", line.FeeLineID))
	c.JSON(http.StatusCreated, dto.ToFeeLineResponse(line))
}

// listFeeLines godoc
// @Summary List fee lines
// @Tags fees
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   activeOnly query bool false "Only active lines" default(true)
// @Success 200 {array} dto.FeeLineResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list fee lines"
// @Router /students/{studentID}/fees [get]
func (h *studentHandler) listFeeLines(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var params dto.ListFeeLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	lines, err := h.studentService.ListFeeLines(c.Request.Context(), studentID, params.ActiveOnly)
	if err != nil {
		respondServiceError(c, logger, err, "list fee lines")
		return
	}
	c.JSON(http.StatusOK, dto.ToFeeLineResponses(lines))
}

// deactivateFeeLine godoc
// @Summary Deactivate a fee line
// @Description Stops a fee line from being billed; past invoices are unaffected
// @Tags fees
// @Param   studentID path string true "Student ID"
// @Param   feeID path string true "Fee line ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse "Fee line not found"
// @Failure 409 {object} dto.ErrorResponse "Fee line already inactive"
// @Failure 500 {object} dto.ErrorResponse "Failed to deactivate fee line"
// @Router /students/{studentID}/fees/{feeID} [delete]
func (h *studentHandler) deactivateFeeLine(c *gin.Context) {
	studentID, feeID := c.Param("studentID"), c.Param("feeID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID), slog.String("fee_line_id", feeID))

	if err := h.studentService.DeactivateFeeLine(c.Request.Context(), studentID, feeID, middleware.GetActorIDFromContext(c)); err != nil {
		respondServiceError(c, logger, err, "deactivate fee line")
		return
	}
	c.Status(http.StatusNoContent)
}
