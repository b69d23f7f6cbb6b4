package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/hostel_billing_app/internal/core/ports/services"
	"github.com/SscSPs/hostel_billing_app/internal/dto"
	"github.com/SscSPs/hostel_billing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bookingHandler handles HTTP requests related to booking requests.
type bookingHandler struct {
	bookingService portssvc.BookingSvcFacade
}

func newBookingHandler(bs portssvc.BookingSvcFacade) *bookingHandler {
	return &bookingHandler{bookingService: bs}
}

// RegisterBookingRoutes registers routes related to booking requests.
func RegisterBookingRoutes(rg *gin.RouterGroup, bookingService portssvc.BookingSvcFacade) {
	h := newBookingHandler(bookingService)

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.createBooking)
		bookings.GET("", h.listBookings)
		bookings.GET("/:bookingID", h.getBooking)
		bookings.POST("/:bookingID/approve", h.approveBooking)
		bookings.POST("/:bookingID/reject", h.rejectBooking)
		bookings.POST("/:bookingID/cancel", h.cancelBooking)
	}
}

// createBooking godoc
// @Summary Submit a booking request
// @Tags bookings
// @Accept  json
// @Produce  json
// @Param   booking body dto.CreateBookingRequest true "Booking details"
// @Success 201 {object} dto.BookingResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 500 {object} dto.ErrorResponse "Failed to create booking"
// @Router /bookings [post]
func (h *bookingHandler) createBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), req, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "create booking")
		return
	}
	logger.Info("Booking created", slog.String("booking_id", booking.BookingID))
	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

// listBookings godoc
// @Summary List booking requests
// @Tags bookings
// @Produce  json
// @Param   status query string false "Booking status" Enums(PENDING, APPROVED, REJECTED, CANCELLED)
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.BookingResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} dto.ErrorResponse "Failed to list bookings"
// @Router /bookings [get]
func (h *bookingHandler) listBookings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBookingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	bookings, err := h.bookingService.ListBookings(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "list bookings")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

// getBooking godoc
// @Summary Get a booking request
// @Tags bookings
// @Produce  json
// @Param   bookingID path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 {object} dto.ErrorResponse "Booking not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve booking"
// @Router /bookings/{bookingID} [get]
func (h *bookingHandler) getBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("booking_id", c.Param("bookingID")))

	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondServiceError(c, logger, err, "retrieve booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// approveBooking godoc
// @Summary Approve a booking request
// @Description Creates the student, the fee schedule and the first (prorated) invoice in one transaction
// @Tags bookings
// @Accept  json
// @Produce  json
// @Param   bookingID path string true "Booking ID"
// @Param   approval body dto.ApproveBookingRequest false "Optional enrollment date override"
// @Success 201 {object} dto.ApproveBookingResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Booking not found"
// @Failure 409 {object} dto.ErrorResponse "Booking is not pending"
// @Failure 500 {object} dto.ErrorResponse "Failed to approve booking"
// @Router /bookings/{bookingID}/approve [post]
func (h *bookingHandler) approveBooking(c *gin.Context) {
	bookingID := c.Param("bookingID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("booking_id", bookingID))
	var req dto.ApproveBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err)
			return
		}
	}

	res, err := h.bookingService.ApproveBooking(c.Request.Context(), bookingID, req, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "approve booking")
		return
	}
	logger.Info("Booking approved", slog.String("student_id", res.Student.StudentID))
	c.JSON(http.StatusCreated, dto.ToApproveBookingResponse(res))
}

// rejectBooking godoc
// @Summary Reject a booking request
// @Tags bookings
// @Accept  json
// @Produce  json
// @Param   bookingID path string true "Booking ID"
// @Param   rejection body dto.RejectBookingRequest true "Rejection reason"
// @Success 200 {object} dto.BookingResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Booking not found"
// @Failure 409 {object} dto.ErrorResponse "Booking is not pending"
// @Failure 500 {object} dto.ErrorResponse "Failed to reject booking"
// @Router /bookings/{bookingID}/reject [post]
func (h *bookingHandler) rejectBooking(c *gin.Context) {
	bookingID := c.Param("bookingID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("booking_id", bookingID))
	var req dto.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	booking, err := h.bookingService.RejectBooking(c.Request.Context(), bookingID, req.Reason, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "reject booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// cancelBooking godoc
// @Summary Cancel a booking request
// @Tags bookings
// @Produce  json
// @Param   bookingID path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 {object} dto.ErrorResponse "Booking not found"
// @Failure 409 {object} dto.ErrorResponse "Booking is not pending"
// @Failure 500 {object} dto.ErrorResponse "Failed to cancel booking"
// @Router /bookings/{bookingID}/cancel [post]
func (h *bookingHandler) cancelBooking(c *gin.Context) {
	bookingID := c.Param("bookingID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("booking_id", bookingID))

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), bookingID, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondServiceError(c, logger, err, "cancel booking")
		return
	}
	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
