package cleanup

import (
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCleanupRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	admin := rg.Group("/admin/cleanup")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.POST("/run", controller.TriggerPass) // POST /api/v1/admin/cleanup/run
		admin.GET("/status", controller.GetStatus) // GET /api/v1/admin/cleanup/status
	}
}
