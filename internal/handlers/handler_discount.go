package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// discountHandler handles HTTP requests related to discounts.
type discountHandler struct {
	discountService portssvc.DiscountSvcFacade
}

func newDiscountHandler(ds portssvc.DiscountSvcFacade) *discountHandler {
	return &discountHandler{discountService: ds}
}

// RegisterDiscountRoutes registers routes related to discounts.
func RegisterDiscountRoutes(rg *gin.RouterGroup, discountService portssvc.DiscountSvcFacade) {
	h := newDiscountHandler(discountService)

	rg.POST("/students/:studentID/discounts", h.applyDiscount)
	rg.GET("/students/:studentID/discounts", h.listStudentDiscounts)
	rg.POST("/discounts/:discountID/cancel", h.cancelDiscount)
}

// applyDiscount godoc
// @Summary Apply a discount
// @Description Credits a fixed amount, or a percentage of the monthly fees optionally capped by maxAmount
// @Tags discounts
// @Accept  json
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   discount body dto.ApplyDiscountRequest true "Discount details"
// @Success 201 {object} dto.DiscountResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Reference already used"
// @Failure 500 {object} dto.ErrorResponse "Failed to apply discount"
// @Router /students/{studentID}/discounts [post]
func (h *discountHandler) applyDiscount(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var req dto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	discount, err := h.discountService.ApplyDiscount(c.Request.Context(), studentID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "apply discount")
		return
	}
	logger.Info("Discount applied", slog.String("discount_id", discount.DiscountID), slog.String("amount", discount.Amount.String()))
	c.JSON(http.StatusCreated, dto.ToDiscountResponse(discount))
}

// listStudentDiscounts godoc
// @Summary List a student's discounts
// @Tags discounts
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Success 200 {array} dto.DiscountResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list discounts"
// @Router /students/{studentID}/discounts [get]
func (h *discountHandler) listStudentDiscounts(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))

	discounts, err := h.discountService.ListStudentDiscounts(c.Request.Context(), studentID)
	if err != nil {
		respondServiceError(c, logger, err, "list discounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToDiscountResponses(discounts))
}

// cancelDiscount godoc
// @Summary Cancel a discount
// @Description Cancels an active discount and reverses its ledger credit
// @Tags discounts
// @Produce  json
// @Param   discountID path string true "Discount ID"
// @Success 200 {object} dto.DiscountResponse
// @Failure 404 {object} dto.ErrorResponse "Discount not found"
// @Failure 409 {object} dto.ErrorResponse "Discount is not active"
// @Failure 500 {object} dto.ErrorResponse "Failed to cancel discount"
// @Router /discounts/{discountID}/cancel [post]
func (h *discountHandler) cancelDiscount(c *gin.Context) {
	discountID := c.Param("discountID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("discount_id", discountID))

	discount, err := h.discountService.CancelDiscount(c.Request.Context(), discountID, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "cancel discount")
		return
	}
	c.JSON(http.StatusOK, dto.ToDiscountResponse(discount))
}
