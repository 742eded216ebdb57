package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/constants"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/database"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/cache"
)

// Seeds empty availability partitions for the ceremony window: havan
// seat partitions per date/shift, one show partition per evening, and
// the stall singleton. Existing partitions are left untouched.
func main() {
	fmt.Println("🌱 Starting availability seeder...")

	cfg := config.Load()
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.GetPostgreSQL()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC)
	const days = 5
	shifts := []string{"morning", "evening"}

	var docs []availability.AvailabilityDocument
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format("2006-01-02")
		for _, shift := range shifts {
			docs = append(docs, availability.AvailabilityDocument{
				PartitionKey: availability.SeatPartitionKey(date, shift),
				ResourceType: availability.ResourceHavan,
				Units:        datatypes.NewJSONType(availability.UnitMap{}),
			})
		}
		docs = append(docs, availability.AvailabilityDocument{
			PartitionKey: availability.SeatPartitionKey(date, "show"),
			ResourceType: availability.ResourceShow,
			Units:        datatypes.NewJSONType(availability.UnitMap{}),
		})
	}
	docs = append(docs, availability.AvailabilityDocument{
		PartitionKey: availability.StallPartitionKey,
		ResourceType: availability.ResourceStall,
		Units:        datatypes.NewJSONType(availability.UnitMap{}),
	})

	res := db.GetPostgreSQL().WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&docs)
	if res.Error != nil {
		log.Fatalf("seeding failed: %v", res.Error)
	}

	// drop cached snapshots so new partitions show up immediately
	cacheService := cache.NewService(db.GetRedisClient())
	if err := cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_AVAILABILITY); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}

	fmt.Printf("✅ Seeded %d availability partitions (%d new)\n", len(docs), res.RowsAffected)
}
