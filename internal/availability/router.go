package availability

import (
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAvailabilityRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// PUBLIC AVAILABILITY

	avail := rg.Group("/availability")
	{
		avail.GET("/:partitionKey", controller.GetAvailability) // GET /api/v1/availability/2025-11-14_morning
	}

	// ADMIN UNIT MANAGEMENT

	admin := rg.Group("/admin/availability")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.GET("/partitions", controller.ListPartitions)  // GET /api/v1/admin/availability/partitions
		admin.POST("/block", controller.AdminBlockUnits)     // POST /api/v1/admin/availability/block
		admin.POST("/release", controller.AdminReleaseUnits) // POST /api/v1/admin/availability/release
	}
}
