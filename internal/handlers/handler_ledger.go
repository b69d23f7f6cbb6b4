package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to student ledgers and balances.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// RegisterLedgerRoutes registers ledger and balance routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	rg.GET("/students/:studentID/ledger", h.getStudentLedger)
	rg.GET("/students/:studentID/balance", h.getStudentBalance)
	rg.POST("/students/:studentID/balance/recalculate", h.recalculateBalance)
	rg.POST("/ledger/:entryID/reverse", h.reverseEntry)
}

// getStudentLedger godoc
// @Summary Get a student's ledger
// @Description Lists ledger entries in posting order with running balances
// @Tags ledger
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.LedgerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve ledger"
// @Router /students/{studentID}/ledger [get]
func (h *ledgerHandler) getStudentLedger(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))
	var params dto.ListLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	page, err := h.ledgerService.GetStudentLedger(c.Request.Context(), studentID, params)
	if err != nil {
		respondServiceError(c, logger, err, "retrieve ledger")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getStudentBalance godoc
// @Summary Get a student's balance
// @Tags ledger
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve balance"
// @Router /students/{studentID}/balance [get]
func (h *ledgerHandler) getStudentBalance(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))

	balance, err := h.ledgerService.GetStudentBalance(c.Request.Context(), studentID)
	if err != nil {
		respondServiceError(c, logger, err, "retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

// recalculateBalance godoc
// @Summary Recalculate a student's balance
// @Description Re-derives running balances from the ledger and repairs any stored drift
// @Tags ledger
// @Produce  json
// @Param   studentID path string true "Student ID"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to recalculate balance"
// @Router /students/{studentID}/balance/recalculate [post]
func (h *ledgerHandler) recalculateBalance(c *gin.Context) {
	studentID := c.Param("studentID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("student_id", studentID))

	rec, err := h.ledgerService.RecalculateStudentBalance(c.Request.Context(), studentID, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "recalculate balance")
		return
	}
	if rec.Drifted {
		logger.Warn("Stored balance drifted from ledger", slog.String("stored", rec.StoredBalance.String()), slog.String("derived", rec.DerivedBalance.String()))
	}
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(rec))
}

// reverseEntry godoc
// @Summary Reverse a ledger entry
// @Description Posts a mirror entry for a manual adjustment or refund. Entries owned by invoices,
// @Description payments or discounts are reversed through those resources instead.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Ledger entry ID"
// @Param   request body dto.ReverseEntryRequest true "Reversal reason"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry cannot be reversed"
// @Failure 500 {object} dto.ErrorResponse "Failed to reverse entry"
// @Router /ledger/{entryID}/reverse [post]
func (h *ledgerHandler) reverseEntry(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("ledger_entry_id", entryID))
	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	reversal, err := h.ledgerService.ReverseEntry(c.Request.Context(), entryID, req.Reason, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "reverse entry")
		return
	}
	logger.Info("Ledger entry reversed", slog.String("reversal_id", reversal.LedgerEntryID))
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(reversal))
}
