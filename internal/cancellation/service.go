package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/constants"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

var (
	ErrNotCancellable    = errors.New("booking cannot be cancelled in its current status")
	ErrInvalidRefundMove = errors.New("refund status transition not allowed")
)

// ReleaseError reports a cancellation that committed but whose unit
// release failed. The audit record exists and the booking is cancelled;
// the stranded blocks are left for reconciliation to sweep.
type ReleaseError struct {
	BookingID string
	Err       error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("booking %s cancelled but unit release failed: %v", e.BookingID, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// Actor identifies who requested the cancellation
type Actor struct {
	ID   string
	Role string
}

type AvailabilityCache interface {
	Delete(ctx context.Context, key string) error
}

type Service interface {
	CancelBooking(ctx context.Context, bookingID, reason string, actor Actor) (*CancellationRecord, error)
	UpdateRefundStatus(ctx context.Context, recordID uuid.UUID, to RefundStatus) (*CancellationRecord, error)
	GetRecord(ctx context.Context, recordID uuid.UUID) (*CancellationRecord, error)
	ListRecords(ctx context.Context, refundStatus RefundStatus, limit, offset int) ([]CancellationRecord, int64, error)
}

type service struct {
	repo        Repository
	bookingRepo bookings.Repository
	avail       availability.Repository
	cache       AvailabilityCache
	publisher   bookings.EventPublisher
	log         *logger.Logger
}

func NewService(repo Repository, bookingRepo bookings.Repository, avail availability.Repository, availCache AvailabilityCache, publisher bookings.EventPublisher, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		avail:       avail,
		cache:       availCache,
		publisher:   publisher,
		log:         log,
	}
}

// CancelBooking cancels a pending or confirmed booking, writes the
// audit record, then releases units. The release is deliberately
// fail-open: when it errors the cancellation still stands and the
// caller gets the record plus a ReleaseError.
func (s *service) CancelBooking(ctx context.Context, bookingID, reason string, actor Actor) (*CancellationRecord, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanBeCancelled() {
		return nil, fmt.Errorf("%w: %s", ErrNotCancellable, booking.Status)
	}

	now := time.Now().UTC()
	ok, err := s.bookingRepo.UpdateStatus(ctx, bookingID,
		[]bookings.Status{bookings.StatusPendingPayment, bookings.StatusConfirmed},
		bookings.StatusCancelled,
		map[string]interface{}{
			"cancellation_reason": reason,
			"cancelled_at":        now,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: booking moved concurrently", ErrNotCancellable)
	}

	record := &CancellationRecord{
		ID:             uuid.New(),
		BookingID:      bookingID,
		BookingType:    booking.Type.String(),
		OriginalAmount: booking.TotalAmount,
		RefundAmount:   refundAmount(booking),
		RefundStatus:   RefundPending,
		Reason:         reason,
		CancelledBy:    actor.ID,
		CancelledRole:  actor.Role,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		// The cancellation committed; an audit write failure must not
		// resurrect the booking
		s.log.ErrorWithContext(ctx, "cancellation audit write failed", err, map[string]interface{}{
			"booking_id": bookingID,
		})
		return nil, err
	}

	booking.Status = bookings.StatusCancelled
	s.publish(ctx, booking)
	s.log.LogBookingCancelled(ctx, bookingID, reason, actor.ID)

	if booking.Type.ReservesUnits() && len(booking.Units) > 0 {
		released, err := s.avail.ReleaseUnits(ctx, booking.PartitionKey, booking.Units, bookingID)
		if err != nil {
			record.ReleaseFailed = true
			return record, &ReleaseError{BookingID: bookingID, Err: err}
		}
		record.UnitsReleased = released
		s.invalidate(ctx, booking.PartitionKey)
	}

	return record, nil
}

// refundAmount is full for paid bookings and zero for holds where no
// money moved
func refundAmount(b *bookings.Booking) float64 {
	if b.Status == bookings.StatusConfirmed {
		return b.TotalAmount
	}
	return 0
}

func (s *service) UpdateRefundStatus(ctx context.Context, recordID uuid.UUID, to RefundStatus) (*CancellationRecord, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRefundMove, to)
	}

	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !record.RefundStatus.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidRefundMove, record.RefundStatus, to)
	}

	ok, err := s.repo.UpdateRefundStatus(ctx, recordID, record.RefundStatus, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: refund moved concurrently", ErrInvalidRefundMove)
	}

	if to == RefundCompleted {
		// Refund settled: the booking reaches its terminal state
		if _, err := s.bookingRepo.UpdateStatus(ctx, record.BookingID,
			[]bookings.Status{bookings.StatusCancelled}, bookings.StatusRefunded, nil); err != nil {
			s.log.ErrorWithContext(ctx, "booking refund transition failed", err, map[string]interface{}{
				"booking_id": record.BookingID,
			})
		}
	}

	record.RefundStatus = to
	return record, nil
}

func (s *service) GetRecord(ctx context.Context, recordID uuid.UUID) (*CancellationRecord, error) {
	return s.repo.GetByID(ctx, recordID)
}

func (s *service) ListRecords(ctx context.Context, refundStatus RefundStatus, limit, offset int) ([]CancellationRecord, int64, error) {
	return s.repo.List(ctx, refundStatus, limit, offset)
}

func (s *service) publish(ctx context.Context, booking *bookings.Booking) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, "booking.cancelled", booking)
}

func (s *service) invalidate(ctx context.Context, partitionKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildAvailabilityKey(partitionKey)); err != nil {
		s.log.WarnWithContext(ctx, "availability cache invalidation failed", map[string]interface{}{
			"partition_key": partitionKey,
		})
	}
}
