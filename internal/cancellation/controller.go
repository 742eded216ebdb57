package cancellation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/utils/response"
)

type Controller struct {
	service     Service
	bookingRepo bookings.Repository
}

func NewController(service Service, bookingRepo bookings.Repository) *Controller {
	return &Controller{service: service, bookingRepo: bookingRepo}
}

type cancelRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=3,max=200"`
}

func (c *Controller) CancelBooking(ctx *gin.Context) {
	var req cancelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	actorID, role := middleware.ActorFromContext(ctx)
	if role != middleware.RoleAdmin {
		booking, err := c.bookingRepo.GetByID(ctx.Request.Context(), req.BookingID)
		if err != nil {
			if errors.Is(err, bookings.ErrBookingNotFound) {
				response.Error(ctx, http.StatusNotFound, "Booking not found", err.Error())
				return
			}
			response.Error(ctx, http.StatusInternalServerError, "Failed to cancel booking", err.Error())
			return
		}
		if booking.UserID != actorID {
			response.Error(ctx, http.StatusForbidden, "Access denied", "booking belongs to another user")
			return
		}
	}

	record, err := c.service.CancelBooking(ctx.Request.Context(), req.BookingID, req.Reason, Actor{ID: actorID, Role: role})
	if err != nil {
		var releaseErr *ReleaseError
		switch {
		case errors.As(err, &releaseErr):
			// Cancellation stands; report the record with a warning
			response.RespondJSON(ctx, "success", http.StatusOK,
				"Booking cancelled; unit release pending reconciliation", record, releaseErr.Error())
		case errors.Is(err, bookings.ErrBookingNotFound):
			response.Error(ctx, http.StatusNotFound, "Booking not found", err.Error())
		case errors.Is(err, ErrNotCancellable):
			response.Error(ctx, http.StatusConflict, "Booking cannot be cancelled", err.Error())
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to cancel booking", err.Error())
		}
		return
	}

	response.Success(ctx, "Booking cancelled successfully", record)
}

type refundUpdateRequest struct {
	RefundStatus string `json:"refund_status" binding:"required,oneof=PROCESSING COMPLETED REJECTED"`
}

func (c *Controller) UpdateRefundStatus(ctx *gin.Context) {
	recordID, err := uuid.Parse(ctx.Param("recordId"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid record ID", err.Error())
		return
	}

	var req refundUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	record, err := c.service.UpdateRefundStatus(ctx.Request.Context(), recordID, RefundStatus(req.RefundStatus))
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			response.Error(ctx, http.StatusNotFound, "Cancellation record not found", err.Error())
		case errors.Is(err, ErrInvalidRefundMove):
			response.Error(ctx, http.StatusConflict, "Refund status transition not allowed", err.Error())
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to update refund status", err.Error())
		}
		return
	}

	response.Success(ctx, "Refund status updated successfully", record)
}

func (c *Controller) ListRecords(ctx *gin.Context) {
	var query struct {
		RefundStatus string `form:"refund_status" binding:"omitempty,oneof=PENDING PROCESSING COMPLETED REJECTED"`
		Limit        int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
		Offset       int    `form:"offset,default=0" binding:"omitempty,min=0"`
	}
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	records, total, err := c.service.ListRecords(ctx.Request.Context(), RefundStatus(query.RefundStatus), query.Limit, query.Offset)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list cancellation records", err.Error())
		return
	}

	response.Success(ctx, "Cancellation records retrieved successfully", gin.H{
		"records": records,
		"total":   total,
		"limit":   query.Limit,
		"offset":  query.Offset,
	})
}
