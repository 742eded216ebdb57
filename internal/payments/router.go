package payments

import (
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	payments := rg.Group("/payments")
	{
		// The gateway posts the callback server-to-server, so it is
		// unauthenticated; the ciphertext itself is the credential
		payments.POST("/callback", controller.HandleCallback) // POST /api/v1/payments/callback
		payments.GET("/callback", controller.HandleCallback)  // GET /api/v1/payments/callback?encResp=...

		authed := payments.Group("")
		authed.Use(middleware.JWTAuth(cfg))
		{
			authed.POST("/initiate", controller.InitiatePayment) // POST /api/v1/payments/initiate
		}
	}
}
