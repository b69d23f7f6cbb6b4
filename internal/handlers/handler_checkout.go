package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// checkoutHandler handles refund quotes and checkouts.
type checkoutHandler struct {
	checkoutService portssvc.CheckoutSvcFacade
}

func newCheckoutHandler(cs portssvc.CheckoutSvcFacade) *checkoutHandler {
	return &checkoutHandler{checkoutService: cs}
}

// RegisterCheckoutRoutes registers checkout routes.
func RegisterCheckoutRoutes(rg *gin.RouterGroup, checkoutService portssvc.CheckoutSvcFacade) {
	h := newCheckoutHandler(checkoutService)

	rg.GET("/students/:studentID/checkout-refund", h.calculateCheckoutRefund)
	rg.POST("/students/:studentID/checkout", h.checkoutStudent)
}

// calculateCheckoutRefund godoc
// @Summary Quote a checkout refund
// @Description Refund for the unused days of the checkout month at the student's monthly rate.
// @Description The student is eligible only when no dues are outstanding.
// @Tags checkout
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   date query string true "Checkout date (YYYY-MM-DD)"
// @Success 200 {object} dto.RefundQuoteResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to calculate refund"
// @Router /students/{studentID}/checkout-refund [get]
func (h *checkoutHandler) calculateCheckoutRefund(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var params dto.CheckoutRefundParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	checkoutDate, err := dto.ParseDate("date", params.Date)
	if err != nil {
		respondServiceError(c, logger, err, "calculate refund")
		return
	}

	quote, err := h.checkoutService.CalculateCheckoutRefund(c.Request.Context(), studentID, checkoutDate)
	if err != nil {
		respondServiceError(c, logger, err, "calculate refund")
		return
	}
	c.JSON(http.StatusOK, dto.ToRefundQuoteResponse(quote))
}

// checkoutStudent godoc
// @Summary Check a student out
// @Description Deactivates the student and posts the unused-days refund when the checkout month was
// @Description invoiced. Outstanding dues block checkout unless deferDues is set, in which case no refund is posted.
// @Tags checkout
// @Accept  json
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   request body dto.CheckoutRequest true "Checkout details"
// @Success 200 {object} dto.CheckoutResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Outstanding dues or student not active"
// @Failure 500 {object} dto.ErrorResponse "Failed to check out student"
// @Router /students/{studentID}/checkout [post]
func (h *checkoutHandler) checkoutStudent(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	res, err := h.checkoutService.CheckoutStudent(c.Request.Context(), studentID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "check out student")
		return
	}
	logger.Info("Student checked out", slog.String("refund", res.Quote.RefundAmount.String()), slog.Bool("dues_deferred", res.DuesDeferred))
	c.JSON(http.StatusOK, dto.ToCheckoutResponse(res))
}
