package cancellation

import (
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	cancellations := rg.Group("/cancellations")
	cancellations.Use(middleware.JWTAuth(cfg))
	{
		cancellations.POST("", controller.CancelBooking) // POST /api/v1/cancellations
	}

	// REFUND ADMINISTRATION

	admin := rg.Group("/admin/cancellations")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.GET("", controller.ListRecords)                           // GET /api/v1/admin/cancellations?refund_status=PENDING
		admin.PATCH("/:recordId/refund", controller.UpdateRefundStatus) // PATCH /api/v1/admin/cancellations/:recordId/refund
	}
}
