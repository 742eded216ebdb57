package database

import (
	"fmt"
	"log"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/cancellation"

	"gorm.io/gorm"
)

// Migrate runs auto-migrations for all persistent models
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&availability.AvailabilityDocument{},
		&bookings.Booking{},
		&cancellation.CancellationRecord{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto-migration failed for %T: %w", model, err)
		}
	}

	log.Println("✅ Database migrations completed")
	return nil
}
