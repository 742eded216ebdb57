package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/constants"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/cache"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

// UnitView is the externally visible state of one occupied unit. Units
// not present in the map are free.
type UnitView struct {
	Status       string     `json:"status"` // BOOKED | BLOCKED | ADMIN_BLOCKED
	BookingID    string     `json:"booking_id,omitempty"`
	CustomerName string     `json:"customer_name,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// PartitionView is the public availability snapshot for one partition
type PartitionView struct {
	PartitionKey string              `json:"partition_key"`
	Units        map[string]UnitView `json:"units"`
}

type Service interface {
	GetAvailability(ctx context.Context, partitionKey string) (*PartitionView, error)
	ListPartitions(ctx context.Context) ([]string, error)
	AdminBlockUnits(ctx context.Context, partitionKey, resourceType string, unitIDs []string, actor string) error
	AdminReleaseUnits(ctx context.Context, partitionKey string, unitIDs []string) error
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
}

func NewService(repo Repository, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
	}
}

// GetAvailability reads the availability snapshot, serving from the Redis
// read-cache when fresh. Blocked units whose hold already expired are
// reported as free even before the cleanup pass reclaims them.
func (s *service) GetAvailability(ctx context.Context, partitionKey string) (*PartitionView, error) {
	if err := ValidatePartitionKey(partitionKey); err != nil {
		return nil, err
	}

	cacheKey := constants.BuildAvailabilityKey(partitionKey)
	if s.cache != nil {
		var cached PartitionView
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	units, err := s.repo.Get(ctx, partitionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	view := &PartitionView{
		PartitionKey: partitionKey,
		Units:        make(map[string]UnitView, len(units)),
	}

	now := time.Now()
	for id, state := range units {
		uv := UnitView{BookingID: state.BookingID, CustomerName: state.CustomerName}
		switch {
		case state.Booked:
			uv.Status = "BOOKED"
		case state.IsAdminBlocked():
			uv.Status = "ADMIN_BLOCKED"
		case state.Blocked:
			expiry, err := state.Expiry()
			if err == nil && expiry.Before(now) {
				// Hold lapsed; unit is effectively free until cleanup runs
				continue
			}
			uv.Status = "BLOCKED"
			if err == nil {
				uv.ExpiresAt = &expiry
			}
		default:
			continue
		}
		view.Units[id] = uv
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, view, s.cacheTTL); err != nil {
			logger.GetDefault().WarnWithContext(ctx, "failed to cache availability", map[string]interface{}{
				"partition": partitionKey,
				"error":     err.Error(),
			})
		}
	}

	return view, nil
}

func (s *service) ListPartitions(ctx context.Context) ([]string, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		keys = append(keys, doc.PartitionKey)
	}
	return keys, nil
}

// AdminBlockUnits places permanent holds on units, e.g. to rope off rows
// reserved for dignitaries. These holds carry no expiry and survive
// every cleanup pass.
func (s *service) AdminBlockUnits(ctx context.Context, partitionKey, resourceType string, unitIDs []string, actor string) error {
	if err := ValidatePartitionKey(partitionKey); err != nil {
		return err
	}
	if len(unitIDs) == 0 {
		return fmt.Errorf("no units specified")
	}

	if err := s.repo.SetAdminBlock(ctx, partitionKey, resourceType, unitIDs, actor, true); err != nil {
		return err
	}

	s.invalidate(ctx, partitionKey)
	return nil
}

func (s *service) AdminReleaseUnits(ctx context.Context, partitionKey string, unitIDs []string) error {
	if err := ValidatePartitionKey(partitionKey); err != nil {
		return err
	}
	if len(unitIDs) == 0 {
		return fmt.Errorf("no units specified")
	}

	if err := s.repo.SetAdminBlock(ctx, partitionKey, "", unitIDs, "", false); err != nil {
		return err
	}

	s.invalidate(ctx, partitionKey)
	return nil
}

func (s *service) invalidate(ctx context.Context, partitionKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildAvailabilityKey(partitionKey)); err != nil {
		logger.GetDefault().WarnWithContext(ctx, "failed to invalidate availability cache", map[string]interface{}{
			"partition": partitionKey,
			"error":     err.Error(),
		})
	}
}
