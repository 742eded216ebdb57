// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/cancellation"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/cleanup"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/notifications"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/payments"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/pricing"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/database"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/cache"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

// Router wires every feature package against the shared store, cache
// and broker handles.
type Router struct {
	config   *config.Config
	db       *database.DB
	log      *logger.Logger
	producer notifications.Producer

	// Exposed so main can start/stop the background loop
	CleanupScheduler *cleanup.Scheduler
}

func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
		log:      log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()
	cacheService := cache.NewService(r.db.GetRedisClient())
	publisher := notifications.NewBookingPublisher(r.producer, r.log)

	availRepo := availability.NewRepository(pg)
	availService := availability.NewService(availRepo, cacheService, r.config.Redis.AvailabilityCacheTTL)
	availController := availability.NewController(availService)

	bookingRepo := bookings.NewRepository(pg)
	bookingService := bookings.NewService(bookingRepo, availRepo, cacheService, publisher,
		r.config.Booking.HoldTTL, r.config.Booking.MaxUnitsPerHold, r.log)
	bookingController := bookings.NewController(bookingService)

	paymentService, err := payments.NewService(r.config.CCAvenue, bookingService, r.log)
	if err != nil {
		return err
	}
	paymentController := payments.NewController(paymentService, r.log)

	cancellationRepo := cancellation.NewRepository(pg)
	cancellationService := cancellation.NewService(cancellationRepo, bookingRepo, availRepo,
		cacheService, publisher, r.log)
	cancellationController := cancellation.NewController(cancellationService, bookingRepo)

	cleanupService := cleanup.NewService(availRepo, bookingRepo, cacheService, r.log)
	r.CleanupScheduler = cleanup.NewScheduler(cleanupService, r.config.Booking.CleanupInterval, r.log)
	cleanupController := cleanup.NewController(r.CleanupScheduler)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		availability.SetupAvailabilityRoutes(api, availController, r.config)
		pricing.SetupPricingRoutes(api)
		bookings.SetupBookingRoutes(api, bookingController, r.config)
		payments.SetupPaymentRoutes(api, paymentController, r.config)
		cancellation.SetupCancellationRoutes(api, cancellationController, r.config)
		cleanup.SetupCleanupRoutes(api, cleanupController, r.config)
	}
	return nil
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "seat-booking-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "seat-booking-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
