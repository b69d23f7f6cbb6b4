package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/hostel_billing_app/internal/core/domain"
	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles HTTP requests related to invoices.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	now            func() time.Time
}

func newInvoiceHandler(is portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{invoiceService: is, now: time.Now}
}

// RegisterInvoiceRoutes registers routes related to invoices.
func RegisterInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(invoiceService)

	rg.POST("/students/:studentID/invoices", h.generateInvoice)
	rg.GET("/students/:studentID/invoices", h.listStudentInvoices)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("/generate-monthly", h.generateMonthlyInvoices)
		invoices.POST("/mark-overdue", h.markOverdue)
		invoices.GET("/:invoiceID", h.getInvoice)
		invoices.POST("/:invoiceID/cancel", h.cancelInvoice)
	}
}

// generateInvoice godoc
// @Summary Generate a student's invoice for a month
// @Description Bills the student's active fee schedule for the month. The first month is prorated
// @Description from the enrollment date. A repeated request returns status SKIPPED with the existing invoice id.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   request body dto.GenerateInvoiceRequest true "Billing month (YYYY-MM)"
// @Success 201 {object} dto.GenerateInvoiceResponse "Invoice generated"
// @Success 200 {object} dto.GenerateInvoiceResponse "Invoice already existed"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate invoice"
// @Router /students/{studentID}/invoices [post]
func (h *invoiceHandler) generateInvoice(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var req dto.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	month, err := dto.ParseMonth("month", req.Month)
	if err != nil {
		respondServiceError(c, logger, err, "generate invoice")
		return
	}

	res, err := h.invoiceService.GenerateInvoice(c.Request.Context(), studentID, month, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "generate invoice")
		return
	}

	status := http.StatusCreated
	if res.Status != domain.GenerationGenerated {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToGenerateInvoiceResponse(res))
}

// listStudentInvoices godoc
// @Summary List a student's invoices
// @Tags invoices
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   status query string false "Invoice status" Enums(DRAFT, PENDING, PARTIALLY_PAID, PAID, OVERDUE, CANCELLED)
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to list invoices"
// @Router /students/{studentID}/invoices [get]
func (h *invoiceHandler) listStudentInvoices(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	page, err := h.invoiceService.ListStudentInvoices(c.Request.Context(), studentID, params)
	if err != nil {
		respondServiceError(c, logger, err, "list invoices")
		return
	}
	c.JSON(http.StatusOK, page)
}

// generateMonthlyInvoices godoc
// @Summary Generate invoices for every active student
// @Description Runs the generator for each active student and reports one result per student
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   request body dto.GenerateMonthlyInvoicesRequest true "Billing month (YYYY-MM)"
// @Success 200 {object} dto.BatchResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate invoices"
// @Router /invoices/generate-monthly [post]
func (h *invoiceHandler) generateMonthlyInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.GenerateMonthlyInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	month, err := dto.ParseMonth("month", req.Month)
	if err != nil {
		respondServiceError(c, logger, err, "generate invoices")
		return
	}

	items, err := h.invoiceService.GenerateMonthlyInvoices(c.Request.Context(), month, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "generate invoices")
		return
	}
	resp := dto.ToBatchResponse(items)
	logger.Info("Monthly invoice run finished", slog.String("month", req.Month), slog.Int("succeeded", resp.Succeeded), slog.Int("skipped", resp.Skipped), slog.Int("failed", resp.Failed))
	c.JSON(http.StatusOK, resp)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve invoice"
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", c.Param("invoiceID")))

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondServiceError(c, logger, err, "retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Description Cancels an invoice with no payments against it and reverses its ledger debit
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoiceID path string true "Invoice ID"
// @Param   request body dto.CancelInvoiceRequest true "Cancellation reason"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice has payments or is already cancelled"
// @Failure 500 {object} dto.ErrorResponse "Failed to cancel invoice"
// @Router /invoices/{invoiceID}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	invoiceID := c.Param("invoiceID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("invoice_id", invoiceID))
	var req dto.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), invoiceID, req.Reason, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "cancel invoice")
		return
	}
	logger.Info("Invoice cancelled")
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// markOverdue godoc
// @Summary Mark overdue invoices
// @Description Moves open invoices whose due date has passed to OVERDUE
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   request body dto.MarkOverdueRequest false "Reference date (defaults to today)"
// @Success 200 {object} dto.MarkOverdueResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Failed to mark invoices overdue"
// @Router /invoices/mark-overdue [post]
func (h *invoiceHandler) markOverdue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.MarkOverdueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err)
			return
		}
	}
	asOf, err := dto.ParseOptionalDate("asOf", req.AsOf, domain.DateOnly(h.now()))
	if err != nil {
		respondServiceError(c, logger, err, "mark invoices overdue")
		return
	}

	n, err := h.invoiceService.MarkOverdueInvoices(c.Request.Context(), asOf, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "mark invoices overdue")
		return
	}
	c.JSON(http.StatusOK, dto.MarkOverdueResponse{AsOf: asOf, Updated: n})
}
