package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: ps}
}

// RegisterPaymentRoutes registers routes related to payments.
func RegisterPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	rg.POST("/students/:studentID/payments", h.recordPayment)
	rg.GET("/students/:studentID/payments", h.listStudentPayments)

	payments := rg.Group("/payments")
	{
		payments.POST("/batch", h.recordPayments)
		payments.GET("/:paymentID", h.getPayment)
	}
}

// recordPayment godoc
// @Summary Record a payment
// @Description Records a payment and allocates it to open invoices. Without invoiceIDs or allocations
// @Description the payment is applied oldest due date first; any remainder becomes advance credit.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.RecordPaymentResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Student or invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice is not open"
// @Failure 422 {object} dto.ErrorResponse "Allocations exceed the payment amount"
// @Failure 500 {object} dto.ErrorResponse "Failed to record payment"
// @Router /students/{studentID}/payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	res, err := h.paymentService.RecordPayment(c.Request.Context(), studentID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "record payment")
		return
	}
	logger.Info("Payment recorded", slog.String("payment_id", res.Payment.PaymentID), slog.String("amount", res.Payment.Amount.String()))
	c.JSON(http.StatusCreated, dto.ToRecordPaymentResponse(res))
}

// listStudentPayments godoc
// @Summary List a student's payments
// @Tags payments
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.PaymentResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list payments"
// @Router /students/{studentID}/payments [get]
func (h *paymentHandler) listStudentPayments(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	payments, err := h.paymentService.ListStudentPayments(c.Request.Context(), studentID, params)
	if err != nil {
		respondServiceError(c, logger, err, "list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// recordPayments godoc
// @Summary Record a batch of payments
// @Description Records each payment in its own transaction and reports one result per item
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   batch body dto.RecordPaymentsRequest true "Payments"
// @Success 200 {object} dto.BatchResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Failed to record payments"
// @Router /payments/batch [post]
func (h *paymentHandler) recordPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordPaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	items, err := h.paymentService.RecordPayments(c.Request.Context(), req, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "record payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(items))
}

// getPayment godoc
// @Summary Get a payment
// @Tags payments
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve payment"
// @Router /payments/{paymentID} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("payment_id", c.Param("paymentID")))

	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("paymentID"))
	if err != nil {
		respondServiceError(c, logger, err, "retrieve payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}
