package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/SscSPs/hostel_billing_app/internal/apperrors"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report binding failures under the JSON/query names clients actually send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	}
}

// respondBindError answers a request whose body or query failed to bind.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = describeTag(fe)
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Fields: fields})
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "Invalid request format",
			Fields: map[string]string{typeErr.Field: "has the wrong type"},
		})
		return
	}

	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
}

// fieldPath drops the top-level struct name from a validator namespace,
// e.g. "RecordPaymentsRequest.payments[0].studentID" -> "payments[0].studentID".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must have at least " + fe.Param() + " items"
	case "datetime":
		return "must match the format " + fe.Param()
	default:
		return "failed the '" + fe.Tag() + "' check"
	}
}

// respondServiceError maps a service error onto an HTTP status and body.
// action completes the sentence "Failed to ..." for unexpected failures.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, action string) {
	var (
		validationErr *apperrors.ValidationError
		overAlloc     *apperrors.OverAllocationError
		appErr        *apperrors.AppError
		dupPeriod     *apperrors.DuplicatePeriodError
	)

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Validation error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Fields: validationErr.Fields})
	case errors.As(err, &overAlloc):
		logger.Warn("Payment over-allocated", slog.String("payment_amount", overAlloc.PaymentAmount.String()), slog.String("requested_total", overAlloc.RequestedTotal.String()))
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error: overAlloc.Error(),
			Details: map[string]any{
				"paymentAmount":  overAlloc.PaymentAmount.String(),
				"requestedTotal": overAlloc.RequestedTotal.String(),
				"invoiceIDs":     overAlloc.InvoiceIDs,
			},
		})
	case errors.As(err, &appErr):
		logger.Warn("Request rejected", slog.String("action", action), slog.Int("status", appErr.Code), slog.String("error", err.Error()))
		code := appErr.Code
		if code < 400 || code > 599 {
			code = http.StatusInternalServerError
		}
		c.JSON(code, dto.ErrorResponse{Error: appErr.Message, Details: appErr.Details})
	case errors.As(err, &dupPeriod):
		logger.Warn("Invoice already exists for period", slog.String("existing_invoice_id", dupPeriod.ExistingInvoiceID))
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   dupPeriod.Error(),
			Details: map[string]any{"existingInvoiceID": dupPeriod.ExistingInvoiceID},
		})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflict", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
	default:
		logger.Error("Service call failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to " + action})
	}
}
