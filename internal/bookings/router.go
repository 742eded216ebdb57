package bookings

import (
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// USER BOOKINGS

	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(cfg))
	{
		bookings.POST("", controller.CreateReservation)    // POST /api/v1/bookings
		bookings.GET("/me", controller.GetMyBookings)      // GET /api/v1/bookings/me
		bookings.GET("/:bookingId", controller.GetBooking) // GET /api/v1/bookings/BK1731558000000_X7KQ
	}

	// ADMIN BOOKINGS

	admin := rg.Group("/admin/bookings")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.GET("", controller.ListBookings) // GET /api/v1/admin/bookings?status=pending_payment
	}
}
