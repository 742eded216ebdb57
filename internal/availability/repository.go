package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TxFunc runs inside the same store transaction as the unit mutation.
// Reservation creation passes the booking insert here so that unit block
// and booking write are indivisible.
type TxFunc func(tx *gorm.DB) error

type Repository interface {
	// Reads
	Get(ctx context.Context, partitionKey string) (UnitMap, error)
	GetDocument(ctx context.Context, partitionKey string) (*AvailabilityDocument, error)
	ListDocuments(ctx context.Context) ([]AvailabilityDocument, error)

	// Transactional mutations
	BlockUnits(ctx context.Context, partitionKey, resourceType string, unitIDs []string, hold Hold, within TxFunc) error
	MarkBooked(ctx context.Context, partitionKey string, unitIDs []string, bookingID string, within TxFunc) error

	// Idempotent releases
	ReleaseUnits(ctx context.Context, partitionKey string, unitIDs []string, bookingID string) (int, error)
	ForceRelease(ctx context.Context, partitionKey string, unitIDs []string) (int, error)

	// Admin holds (permanent, never auto-released)
	SetAdminBlock(ctx context.Context, partitionKey, resourceType string, unitIDs []string, actor string, blocked bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Get returns the unit map for a partition. A partition that has never
// been written is an empty map: every unit is free.
func (r *repository) Get(ctx context.Context, partitionKey string) (UnitMap, error) {
	doc, err := r.GetDocument(ctx, partitionKey)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return UnitMap{}, nil
	}
	return doc.UnitMap(), nil
}

func (r *repository) GetDocument(ctx context.Context, partitionKey string) (*AvailabilityDocument, error) {
	var doc AvailabilityDocument
	err := r.db.WithContext(ctx).Where("partition_key = ?", partitionKey).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read availability %s: %w", partitionKey, err)
	}
	return &doc, nil
}

func (r *repository) ListDocuments(ctx context.Context) ([]AvailabilityDocument, error) {
	var docs []AvailabilityDocument
	err := r.db.WithContext(ctx).Order("partition_key ASC").Find(&docs).Error
	return docs, err
}

// lockDocument reads the partition row FOR UPDATE inside tx, creating it
// first if this is the partition's first-ever write.
func lockDocument(tx *gorm.DB, partitionKey, resourceType string) (*AvailabilityDocument, error) {
	if resourceType != "" {
		seed := AvailabilityDocument{
			PartitionKey: partitionKey,
			ResourceType: resourceType,
			Units:        datatypes.NewJSONType(UnitMap{}),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return nil, fmt.Errorf("failed to seed availability %s: %w", partitionKey, err)
		}
	}

	var doc AvailabilityDocument
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("partition_key = ?", partitionKey).
		First(&doc).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock availability %s: %w", partitionKey, err)
	}
	return &doc, nil
}

func saveUnits(tx *gorm.DB, doc *AvailabilityDocument, units UnitMap) error {
	doc.Units = datatypes.NewJSONType(units)
	if err := tx.Model(&AvailabilityDocument{}).
		Where("partition_key = ?", doc.PartitionKey).
		Update("units", doc.Units).Error; err != nil {
		return fmt.Errorf("failed to write availability %s: %w", doc.PartitionKey, err)
	}
	return nil
}

// BlockUnits atomically verifies that every requested unit is claimable
// (free, or holding a lapsed payment block) and blocks them all for the
// holder. Any conflict aborts the whole transaction with an
// UnavailableError naming the contested units. The within callback
// (booking creation) runs in the same transaction.
func (r *repository) BlockUnits(ctx context.Context, partitionKey, resourceType string, unitIDs []string, hold Hold, within TxFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, partitionKey, resourceType)
		if err != nil {
			return err
		}

		units := doc.UnitMap()
		now := time.Now()
		var conflicts []string
		for _, id := range unitIDs {
			if state, taken := units[id]; taken && !state.IsClaimable(now) {
				conflicts = append(conflicts, id)
			}
		}
		if len(conflicts) > 0 {
			sort.Strings(conflicts)
			return &UnavailableError{PartitionKey: partitionKey, Units: conflicts}
		}

		for _, id := range unitIDs {
			units[id] = UnitState{
				Blocked:       true,
				BlockedReason: BlockReasonPayment,
				BookingID:     hold.BookingID,
				ExpiryTime:    FormatTimestamp(hold.ExpiresAt),
				UserID:        hold.UserID,
				CustomerName:  hold.CustomerName,
			}
		}

		if err := saveUnits(tx, doc, units); err != nil {
			return err
		}

		if within != nil {
			return within(tx)
		}
		return nil
	})
}

// MarkBooked flips payment-blocked units to permanently booked, clearing
// their expiry. Units already booked by the same booking are left alone,
// making repeated confirmation calls harmless.
func (r *repository) MarkBooked(ctx context.Context, partitionKey string, unitIDs []string, bookingID string, within TxFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, partitionKey, "")
		if err != nil {
			return err
		}

		units := doc.UnitMap()
		for _, id := range unitIDs {
			state, ok := units[id]
			if !ok {
				return fmt.Errorf("%w: %s in %s", ErrUnitNotFound, id, partitionKey)
			}
			if state.Booked && state.BookingID == bookingID {
				continue
			}
			if state.BookingID != bookingID {
				return fmt.Errorf("unit %s in %s is held by another booking", id, partitionKey)
			}
			state.Booked = true
			state.Blocked = false
			state.BlockedReason = ""
			state.ExpiryTime = nil
			units[id] = state
		}

		if err := saveUnits(tx, doc, units); err != nil {
			return err
		}

		if within != nil {
			return within(tx)
		}
		return nil
	})
}

// ReleaseUnits clears only units still held by the given booking. A unit
// reassigned to a different booking since the caller last looked is left
// untouched, and calling twice is harmless.
func (r *repository) ReleaseUnits(ctx context.Context, partitionKey string, unitIDs []string, bookingID string) (int, error) {
	released := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, partitionKey, "")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		units := doc.UnitMap()
		for _, id := range unitIDs {
			state, ok := units[id]
			if !ok {
				continue
			}
			if state.IsAdminBlocked() || state.BookingID != bookingID {
				continue
			}
			delete(units, id)
			released++
		}

		if released == 0 {
			return nil
		}
		return saveUnits(tx, doc, units)
	})
	return released, err
}

// ForceRelease clears payment-blocked units regardless of holder. Admin
// blocks and booked units are never touched. Used for orphaned and
// expired blocks during reconciliation.
func (r *repository) ForceRelease(ctx context.Context, partitionKey string, unitIDs []string) (int, error) {
	released := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, partitionKey, "")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		units := doc.UnitMap()
		for _, id := range unitIDs {
			state, ok := units[id]
			if !ok {
				continue
			}
			if state.Booked || state.IsAdminBlocked() {
				continue
			}
			delete(units, id)
			released++
		}

		if released == 0 {
			return nil
		}
		return saveUnits(tx, doc, units)
	})
	return released, err
}

// SetAdminBlock places or removes permanent admin holds. Placing fails
// on units that are booked or payment-blocked; removing only clears
// admin holds.
func (r *repository) SetAdminBlock(ctx context.Context, partitionKey, resourceType string, unitIDs []string, actor string, blocked bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, partitionKey, resourceType)
		if err != nil {
			return err
		}

		units := doc.UnitMap()
		if blocked {
			var conflicts []string
			for _, id := range unitIDs {
				if state, taken := units[id]; taken && !state.IsFree() {
					conflicts = append(conflicts, id)
				}
			}
			if len(conflicts) > 0 {
				sort.Strings(conflicts)
				return &UnavailableError{PartitionKey: partitionKey, Units: conflicts}
			}
			for _, id := range unitIDs {
				units[id] = UnitState{
					Blocked:       true,
					BlockedReason: BlockReasonAdmin,
					UserID:        actor,
				}
			}
		} else {
			for _, id := range unitIDs {
				if state, ok := units[id]; ok && state.IsAdminBlocked() {
					delete(units, id)
				}
			}
		}

		return saveUnits(tx, doc, units)
	})
}
