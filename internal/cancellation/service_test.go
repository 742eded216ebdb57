package cancellation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

type fakeRecords struct {
	records map[uuid.UUID]*CancellationRecord
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: map[uuid.UUID]*CancellationRecord{}}
}

func (f *fakeRecords) Create(_ context.Context, record *CancellationRecord) error {
	clone := *record
	f.records[record.ID] = &clone
	return nil
}

func (f *fakeRecords) GetByID(_ context.Context, id uuid.UUID) (*CancellationRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeRecords) GetByBookingID(_ context.Context, bookingID string) (*CancellationRecord, error) {
	for _, r := range f.records {
		if r.BookingID == bookingID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (f *fakeRecords) UpdateRefundStatus(_ context.Context, id uuid.UUID, from, to RefundStatus) (bool, error) {
	r, ok := f.records[id]
	if !ok || r.RefundStatus != from {
		return false, nil
	}
	r.RefundStatus = to
	return true, nil
}

func (f *fakeRecords) List(_ context.Context, refundStatus RefundStatus, limit, offset int) ([]CancellationRecord, int64, error) {
	var out []CancellationRecord
	for _, r := range f.records {
		if refundStatus == "" || r.RefundStatus == refundStatus {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

type fakeBookingStore struct {
	bookings map[string]*bookings.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[string]*bookings.Booking{}}
}

func (f *fakeBookingStore) Create(_ context.Context, b *bookings.Booking) error {
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

func (f *fakeBookingStore) CreateInTx(_ *gorm.DB, b *bookings.Booking) error {
	return f.Create(context.Background(), b)
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*bookings.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id string, from []bookings.Status, to bookings.Status, updates map[string]interface{}) (bool, error) {
	b, ok := f.bookings[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if b.Status == s {
			b.Status = to
			if reason, ok := updates["cancellation_reason"].(string); ok {
				b.CancellationReason = reason
			}
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingStore) UpdateStatusInTx(tx *gorm.DB, id string, from []bookings.Status, to bookings.Status, updates map[string]interface{}) (bool, error) {
	return f.UpdateStatus(context.Background(), id, from, to, updates)
}

func (f *fakeBookingStore) ListExpiredPending(context.Context, time.Time, int) ([]bookings.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) ListByUser(context.Context, string, int, int) ([]bookings.Booking, int64, error) {
	return nil, 0, nil
}

func (f *fakeBookingStore) ListByStatus(context.Context, bookings.Status, int, int) ([]bookings.Booking, int64, error) {
	return nil, 0, nil
}

// releaseStore counts releases and can be forced to fail
type releaseStore struct {
	released   map[string][]string
	releaseErr error
}

func newReleaseStore() *releaseStore {
	return &releaseStore{released: map[string][]string{}}
}

func (f *releaseStore) Get(context.Context, string) (availability.UnitMap, error) {
	return nil, nil
}

func (f *releaseStore) GetDocument(context.Context, string) (*availability.AvailabilityDocument, error) {
	return nil, availability.ErrUnitNotFound
}

func (f *releaseStore) ListDocuments(context.Context) ([]availability.AvailabilityDocument, error) {
	return nil, nil
}

func (f *releaseStore) BlockUnits(context.Context, string, string, []string, availability.Hold, availability.TxFunc) error {
	return nil
}

func (f *releaseStore) MarkBooked(context.Context, string, []string, string, availability.TxFunc) error {
	return nil
}

func (f *releaseStore) ReleaseUnits(_ context.Context, key string, unitIDs []string, bookingID string) (int, error) {
	if f.releaseErr != nil {
		return 0, f.releaseErr
	}
	f.released[key] = append(f.released[key], unitIDs...)
	return len(unitIDs), nil
}

func (f *releaseStore) ForceRelease(_ context.Context, key string, unitIDs []string) (int, error) {
	return f.ReleaseUnits(context.Background(), key, unitIDs, "")
}

func (f *releaseStore) SetAdminBlock(context.Context, string, string, []string, string, bool) error {
	return nil
}

func newTestCancellation(t *testing.T) (Service, *fakeRecords, *fakeBookingStore, *releaseStore) {
	t.Helper()
	records := newFakeRecords()
	bookingStore := newFakeBookingStore()
	store := newReleaseStore()
	svc := NewService(records, bookingStore, store, nil, nil, logger.New())
	return svc, records, bookingStore, store
}

func confirmedBooking(id string) *bookings.Booking {
	return &bookings.Booking{
		ID:           id,
		Type:         bookings.TypeHavan,
		Status:       bookings.StatusConfirmed,
		PartitionKey: "2025-11-14_morning",
		Units:        []string{"A1", "A2"},
		TotalAmount:  1000,
		UserID:       "user-1",
	}
}

func TestCancelConfirmedBooking(t *testing.T) {
	svc, _, bookingStore, store := newTestCancellation(t)
	ctx := context.Background()
	require.NoError(t, bookingStore.Create(ctx, confirmedBooking("BK1")))

	record, err := svc.CancelBooking(ctx, "BK1", "customer request", Actor{ID: "admin-1", Role: "admin"})
	require.NoError(t, err)

	assert.Equal(t, "BK1", record.BookingID)
	assert.Equal(t, "HAVAN", record.BookingType)
	assert.Equal(t, 1000.0, record.OriginalAmount)
	assert.Equal(t, 1000.0, record.RefundAmount, "confirmed booking refunds in full")
	assert.Equal(t, RefundPending, record.RefundStatus)
	assert.Equal(t, "admin-1", record.CancelledBy)
	assert.Equal(t, 2, record.UnitsReleased)

	booking, err := bookingStore.GetByID(ctx, "BK1")
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, booking.Status)
	assert.Equal(t, "customer request", booking.CancellationReason)

	assert.Equal(t, []string{"A1", "A2"}, store.released["2025-11-14_morning"])
}

func TestCancelPendingBookingNoRefund(t *testing.T) {
	svc, _, bookingStore, _ := newTestCancellation(t)
	ctx := context.Background()

	b := confirmedBooking("BK2")
	b.Status = bookings.StatusPendingPayment
	require.NoError(t, bookingStore.Create(ctx, b))

	record, err := svc.CancelBooking(ctx, "BK2", "changed mind", Actor{ID: "user-1", Role: "user"})
	require.NoError(t, err)
	assert.Zero(t, record.RefundAmount, "nothing was paid yet")
}

func TestCancelTerminalBookingRejected(t *testing.T) {
	svc, _, bookingStore, _ := newTestCancellation(t)
	ctx := context.Background()

	b := confirmedBooking("BK3")
	b.Status = bookings.StatusPaymentFailed
	require.NoError(t, bookingStore.Create(ctx, b))

	_, err := svc.CancelBooking(ctx, "BK3", "reason", Actor{ID: "u", Role: "user"})
	assert.ErrorIs(t, err, ErrNotCancellable)

	require.NoError(t, bookingStore.Create(ctx, confirmedBooking("BK4")))
	_, err = svc.CancelBooking(ctx, "BK4", "first", Actor{ID: "u", Role: "user"})
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, "BK4", "second", Actor{ID: "u", Role: "user"})
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestCancelReleaseFailureIsFailOpen(t *testing.T) {
	svc, records, bookingStore, store := newTestCancellation(t)
	ctx := context.Background()
	require.NoError(t, bookingStore.Create(ctx, confirmedBooking("BK5")))
	store.releaseErr = errors.New("store unavailable")

	record, err := svc.CancelBooking(ctx, "BK5", "venue closed", Actor{ID: "admin-1", Role: "admin"})
	require.Error(t, err)

	var releaseErr *ReleaseError
	require.ErrorAs(t, err, &releaseErr)
	assert.Equal(t, "BK5", releaseErr.BookingID)

	// The cancellation itself must stand
	require.NotNil(t, record)
	assert.True(t, record.ReleaseFailed)

	booking, err := bookingStore.GetByID(ctx, "BK5")
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCancelled, booking.Status)

	_, err = records.GetByBookingID(ctx, "BK5")
	assert.NoError(t, err, "audit record must exist despite release failure")
}

func TestRefundLifecycle(t *testing.T) {
	svc, _, bookingStore, _ := newTestCancellation(t)
	ctx := context.Background()
	require.NoError(t, bookingStore.Create(ctx, confirmedBooking("BK6")))

	record, err := svc.CancelBooking(ctx, "BK6", "refund me", Actor{ID: "admin-1", Role: "admin"})
	require.NoError(t, err)

	// PENDING cannot jump straight to COMPLETED
	_, err = svc.UpdateRefundStatus(ctx, record.ID, RefundCompleted)
	assert.ErrorIs(t, err, ErrInvalidRefundMove)

	record, err = svc.UpdateRefundStatus(ctx, record.ID, RefundProcessing)
	require.NoError(t, err)
	assert.Equal(t, RefundProcessing, record.RefundStatus)

	record, err = svc.UpdateRefundStatus(ctx, record.ID, RefundCompleted)
	require.NoError(t, err)
	assert.Equal(t, RefundCompleted, record.RefundStatus)

	booking, err := bookingStore.GetByID(ctx, "BK6")
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusRefunded, booking.Status)

	// Terminal; further moves rejected
	_, err = svc.UpdateRefundStatus(ctx, record.ID, RefundRejected)
	assert.ErrorIs(t, err, ErrInvalidRefundMove)
}
