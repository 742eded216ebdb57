package bookings

import (
	"errors"
	"net/http"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) CreateReservation(ctx *gin.Context) {
	var req CreateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	userID, _ := middleware.ActorFromContext(ctx)
	resp, err := c.service.CreateReservation(ctx.Request.Context(), userID, req)
	if err != nil {
		switch {
		case availability.IsUnavailable(err):
			response.Error(ctx, http.StatusConflict, "Some units are no longer available", err.Error())
		case errors.Is(err, ErrMissingUnits), errors.Is(err, ErrDuplicateUnits),
			errors.Is(err, ErrMissingSchedule), errors.Is(err, ErrMissingAmount):
			response.Error(ctx, http.StatusBadRequest, "Invalid reservation request", err.Error())
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to create reservation", err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Reservation created successfully", resp, nil)
}

func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID := ctx.Param("bookingId")

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.Error(ctx, http.StatusNotFound, "Booking not found", err.Error())
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to get booking", err.Error())
		return
	}

	userID, role := middleware.ActorFromContext(ctx)
	if role != middleware.RoleAdmin && booking.UserID != userID {
		response.Error(ctx, http.StatusForbidden, "Access denied", "booking belongs to another user")
		return
	}

	response.Success(ctx, "Booking retrieved successfully", booking)
}

func (c *Controller) GetMyBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	userID, _ := middleware.ActorFromContext(ctx)
	resp, err := c.service.GetUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list bookings", err.Error())
		return
	}

	response.Success(ctx, "Bookings retrieved successfully", resp)
}

func (c *Controller) ListBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	resp, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list bookings", err.Error())
		return
	}

	response.Success(ctx, "Bookings retrieved successfully", resp)
}
