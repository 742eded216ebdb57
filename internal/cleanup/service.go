package cleanup

import (
	"context"
	"errors"
	"time"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/constants"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

const autoCancelReason = "payment expired - auto-cancelled"

// Report aggregates one reconciliation pass
type Report struct {
	Partitions int       `json:"partitions"`
	Scanned    int       `json:"scanned"`
	Released   int       `json:"released"`
	Corrected  int       `json:"corrected"`
	Orphans    int       `json:"orphans"`
	Cancelled  int       `json:"cancelled"`
	Errors     int       `json:"errors"`
	StartedAt  time.Time `json:"started_at"`
	Duration   string    `json:"duration"`
}

// AvailabilityCache invalidates cached partition snapshots touched by a pass
type AvailabilityCache interface {
	Delete(ctx context.Context, key string) error
}

type Service interface {
	// Run executes one full reconciliation pass. Per-item failures are
	// counted and skipped, never fatal.
	Run(ctx context.Context) (*Report, error)
}

type service struct {
	avail       availability.Repository
	bookingRepo bookings.Repository
	cache       AvailabilityCache
	log         *logger.Logger
}

func NewService(avail availability.Repository, bookingRepo bookings.Repository, availCache AvailabilityCache, log *logger.Logger) Service {
	return &service{
		avail:       avail,
		bookingRepo: bookingRepo,
		cache:       availCache,
		log:         log,
	}
}

func (s *service) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	report := &Report{StartedAt: started.UTC()}

	docs, err := s.avail.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	report.Partitions = len(docs)

	now := time.Now()
	for i := range docs {
		s.reconcilePartition(ctx, &docs[i], now, report)
	}

	s.cancelExpiredBookings(ctx, now, report)

	report.Duration = time.Since(started).String()
	s.log.LogCleanupPass(ctx, report.Scanned, report.Released, report.Corrected,
		report.Cancelled, report.Errors, time.Since(started))
	return report, nil
}

func (s *service) reconcilePartition(ctx context.Context, doc *availability.AvailabilityDocument, now time.Time, report *Report) {
	key := doc.PartitionKey
	touched := false

	for unitID, state := range doc.UnitMap() {
		report.Scanned++

		// Admin holds are permanent and never touched here
		if state.IsAdminBlocked() || state.Booked || !state.Blocked {
			continue
		}

		switch {
		case state.BookingID != "":
			changed := s.reconcileLinkedUnit(ctx, key, unitID, state, now, report)
			touched = touched || changed
		case state.IsOrphaned():
			if s.release(ctx, key, unitID, "", report) {
				report.Orphans++
				touched = true
			}
		}
	}

	if touched {
		s.invalidate(ctx, key)
	}
}

// reconcileLinkedUnit aligns one payment-blocked unit with its booking.
// Returns true when the unit changed.
func (s *service) reconcileLinkedUnit(ctx context.Context, key, unitID string, state availability.UnitState, now time.Time, report *Report) bool {
	booking, err := s.bookingRepo.GetByID(ctx, state.BookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			// Block survived its booking; same as an orphan
			if s.release(ctx, key, unitID, "", report) {
				report.Orphans++
				return true
			}
			return false
		}
		report.Errors++
		s.log.ErrorWithContext(ctx, "cleanup: booking lookup failed", err, map[string]interface{}{
			"partition_key": key,
			"unit_id":       unitID,
		})
		return false
	}

	switch booking.Status {
	case bookings.StatusConfirmed:
		// Stale block under a paid booking. Correct in place; releasing
		// would silently drop a paid reservation.
		if err := s.avail.MarkBooked(ctx, key, []string{unitID}, booking.ID, nil); err != nil {
			report.Errors++
			s.log.ErrorWithContext(ctx, "cleanup: blocked-but-confirmed correction failed", err, map[string]interface{}{
				"partition_key": key,
				"unit_id":       unitID,
				"booking_id":    booking.ID,
			})
			return false
		}
		report.Corrected++
		return true

	case bookings.StatusCancelled, bookings.StatusRefunded:
		return s.release(ctx, key, unitID, booking.ID, report)

	default:
		// Pending or payment_failed: hold stands until its expiry lapses
		expiry, err := state.Expiry()
		if err != nil {
			report.Errors++
			s.log.ErrorWithContext(ctx, "cleanup: malformed unit expiry", err, map[string]interface{}{
				"partition_key": key,
				"unit_id":       unitID,
			})
			return false
		}
		if expiry.IsZero() || expiry.After(now) {
			return false
		}
		return s.release(ctx, key, unitID, booking.ID, report)
	}
}

func (s *service) release(ctx context.Context, key, unitID, bookingID string, report *Report) bool {
	var (
		n   int
		err error
	)
	if bookingID == "" {
		n, err = s.avail.ForceRelease(ctx, key, []string{unitID})
	} else {
		n, err = s.avail.ReleaseUnits(ctx, key, []string{unitID}, bookingID)
	}
	if err != nil {
		report.Errors++
		s.log.ErrorWithContext(ctx, "cleanup: unit release failed", err, map[string]interface{}{
			"partition_key": key,
			"unit_id":       unitID,
		})
		return false
	}
	report.Released += n
	return n > 0
}

// cancelExpiredBookings sweeps pending bookings past their own expiry.
// Runs independently of the per-unit scan; both are idempotent so a
// race between them converges.
func (s *service) cancelExpiredBookings(ctx context.Context, now time.Time, report *Report) {
	expired, err := s.bookingRepo.ListExpiredPending(ctx, now, 0)
	if err != nil {
		report.Errors++
		s.log.ErrorWithContext(ctx, "cleanup: expired booking scan failed", err, nil)
		return
	}

	for i := range expired {
		booking := &expired[i]
		cancelledAt := now.UTC()
		ok, err := s.bookingRepo.UpdateStatus(ctx, booking.ID,
			[]bookings.Status{bookings.StatusPendingPayment}, bookings.StatusCancelled,
			map[string]interface{}{
				"cancellation_reason": autoCancelReason,
				"cancelled_at":        cancelledAt,
			})
		if err != nil {
			report.Errors++
			s.log.ErrorWithContext(ctx, "cleanup: auto-cancel failed", err, map[string]interface{}{
				"booking_id": booking.ID,
			})
			continue
		}
		if !ok {
			// Lost the race to a callback or an explicit cancel
			continue
		}
		report.Cancelled++

		if booking.PartitionKey != "" && len(booking.Units) > 0 {
			if n, err := s.avail.ReleaseUnits(ctx, booking.PartitionKey, booking.Units, booking.ID); err != nil {
				report.Errors++
				s.log.ErrorWithContext(ctx, "cleanup: expired booking release failed", err, map[string]interface{}{
					"booking_id": booking.ID,
				})
			} else if n > 0 {
				report.Released += n
				s.invalidate(ctx, booking.PartitionKey)
			}
		}
	}
}

func (s *service) invalidate(ctx context.Context, partitionKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildAvailabilityKey(partitionKey)); err != nil {
		s.log.WarnWithContext(ctx, "cleanup: cache invalidation failed", map[string]interface{}{
			"partition_key": partitionKey,
		})
	}
}
