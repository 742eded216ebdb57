package pricing

import (
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

func SetupPricingRoutes(rg *gin.RouterGroup) {
	// PUBLIC TARIFF

	prices := rg.Group("/pricing")
	{
		prices.GET("", getPriceTable) // GET /api/v1/pricing
	}
}

func getPriceTable(ctx *gin.Context) {
	response.Success(ctx, "Price table retrieved successfully", Table())
}
