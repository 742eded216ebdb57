package bookings

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

// fakeAvailRepo keeps unit state in memory with the same conflict and
// idempotency rules as the real store.
type fakeAvailRepo struct {
	mu         sync.Mutex
	partitions map[string]availability.UnitMap
}

func newFakeAvailRepo() *fakeAvailRepo {
	return &fakeAvailRepo{partitions: map[string]availability.UnitMap{}}
}

func (f *fakeAvailRepo) units(key string) availability.UnitMap {
	if f.partitions[key] == nil {
		f.partitions[key] = availability.UnitMap{}
	}
	return f.partitions[key]
}

func (f *fakeAvailRepo) Get(_ context.Context, key string) (availability.UnitMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.units(key), nil
}

func (f *fakeAvailRepo) GetDocument(_ context.Context, key string) (*availability.AvailabilityDocument, error) {
	return nil, availability.ErrUnitNotFound
}

func (f *fakeAvailRepo) ListDocuments(_ context.Context) ([]availability.AvailabilityDocument, error) {
	return nil, nil
}

func (f *fakeAvailRepo) BlockUnits(_ context.Context, key, resourceType string, unitIDs []string, hold availability.Hold, within availability.TxFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	units := f.units(key)
	now := time.Now()
	var conflicts []string
	for _, id := range unitIDs {
		if state, ok := units[id]; ok && !state.IsClaimable(now) {
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return &availability.UnavailableError{PartitionKey: key, Units: conflicts}
	}
	for _, id := range unitIDs {
		units[id] = availability.UnitState{
			Blocked:       true,
			BlockedReason: availability.BlockReasonPayment,
			BookingID:     hold.BookingID,
			UserID:        hold.UserID,
			CustomerName:  hold.CustomerName,
			ExpiryTime:    hold.ExpiresAt,
		}
	}
	if within != nil {
		if err := within(&gorm.DB{}); err != nil {
			for _, id := range unitIDs {
				delete(units, id)
			}
			return err
		}
	}
	return nil
}

func (f *fakeAvailRepo) MarkBooked(_ context.Context, key string, unitIDs []string, bookingID string, within availability.TxFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	units := f.units(key)
	for _, id := range unitIDs {
		units[id] = availability.UnitState{
			Booked:    true,
			BookingID: bookingID,
		}
	}
	if within != nil {
		return within(&gorm.DB{})
	}
	return nil
}

func (f *fakeAvailRepo) ReleaseUnits(_ context.Context, key string, unitIDs []string, bookingID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	units := f.units(key)
	released := 0
	for _, id := range unitIDs {
		state, ok := units[id]
		if !ok || state.BookingID != bookingID || state.IsAdminBlocked() {
			continue
		}
		delete(units, id)
		released++
	}
	return released, nil
}

func (f *fakeAvailRepo) ForceRelease(_ context.Context, key string, unitIDs []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	units := f.units(key)
	released := 0
	for _, id := range unitIDs {
		state, ok := units[id]
		if !ok || state.Booked || state.IsAdminBlocked() {
			continue
		}
		delete(units, id)
		released++
	}
	return released, nil
}

func (f *fakeAvailRepo) SetAdminBlock(_ context.Context, key, resourceType string, unitIDs []string, actor string, blocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	units := f.units(key)
	for _, id := range unitIDs {
		if blocked {
			units[id] = availability.UnitState{
				Blocked:       true,
				BlockedReason: availability.BlockReasonAdmin,
				UserID:        actor,
			}
		} else {
			delete(units, id)
		}
	}
	return nil
}

// fakeBookingRepo is an in-memory Repository with compare-and-set
// semantics matching the SQL implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*Booking{}}
}

func (f *fakeBookingRepo) Create(_ context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.CreatedAt = time.Now()
	clone := *b
	f.bookings[b.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) CreateInTx(_ *gorm.DB, b *Booking) error {
	return f.Create(context.Background(), b)
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id string, from []Status, to Status, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range from {
		if b.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	b.Status = to
	if v, ok := updates["status_message"].(string); ok {
		b.StatusMessage = v
	}
	if v, ok := updates["tracking_id"].(string); ok {
		b.TrackingID = v
	}
	if reason, ok := updates["cancellation_reason"].(string); ok {
		b.CancellationReason = reason
	}
	if _, ok := updates["expiry_time"]; ok {
		b.ExpiryTime = nil
	}
	return true, nil
}

func (f *fakeBookingRepo) UpdateStatusInTx(_ *gorm.DB, id string, from []Status, to Status, updates map[string]interface{}) (bool, error) {
	return f.UpdateStatus(context.Background(), id, from, to, updates)
}

func (f *fakeBookingRepo) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Booking
	for _, b := range f.bookings {
		if b.Status == StatusPendingPayment && b.ExpiryTime != nil && b.ExpiryTime.Before(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) ListByStatus(_ context.Context, status Status, limit, offset int) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Booking
	for _, b := range f.bookings {
		if status == "" || b.Status == status {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ *Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func newTestService(t *testing.T) (Service, *fakeBookingRepo, *fakeAvailRepo, *recordingPublisher) {
	t.Helper()
	repo := newFakeBookingRepo()
	avail := newFakeAvailRepo()
	pub := &recordingPublisher{}
	svc := NewService(repo, avail, nil, pub, 15*time.Minute, 10, logger.New())
	return svc, repo, avail, pub
}

func havanRequest(units ...string) CreateReservationRequest {
	return CreateReservationRequest{
		Type:         "HAVAN",
		Date:         "2025-11-14",
		Shift:        "morning",
		UnitIDs:      units,
		CustomerName: "Asha Patel",
	}
}

func TestCreateReservationBlocksUnits(t *testing.T) {
	svc, _, avail, pub := newTestService(t)

	resp, err := svc.CreateReservation(context.Background(), "user-1", havanRequest("A1", "A2"))
	require.NoError(t, err)

	assert.Equal(t, "pending_payment", resp.Status)
	assert.Equal(t, "2025-11-14_morning", resp.PartitionKey)
	assert.Equal(t, 2*500.0, resp.TotalAmount)
	require.NotNil(t, resp.ExpiresAt)

	units, _ := avail.Get(context.Background(), resp.PartitionKey)
	state, ok := units["A1"]
	require.True(t, ok)
	assert.True(t, state.Blocked)
	assert.Equal(t, availability.BlockReasonPayment, state.BlockedReason)
	assert.Equal(t, resp.BookingID, state.BookingID)

	assert.Contains(t, pub.events, "booking.created")
}

func TestCreateReservationConflict(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateReservation(context.Background(), "user-1", havanRequest("B1", "B2"))
	require.NoError(t, err)

	_, err = svc.CreateReservation(context.Background(), "user-2", havanRequest("B2", "B3"))
	require.Error(t, err)
	assert.True(t, availability.IsUnavailable(err))

	var unavailable *availability.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"B2"}, unavailable.Units)
}

func TestCreateReservationMutualExclusion(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	const contenders = 8
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateReservation(context.Background(), "user", havanRequest("C5"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	won, lost := 0, 0
	for err := range results {
		if err == nil {
			won++
		} else {
			require.True(t, availability.IsUnavailable(err), "unexpected error: %v", err)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, contenders-1, lost)
}

func TestCreateReservationValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, "u", CreateReservationRequest{Type: "HAVAN", CustomerName: "X Y"})
	assert.ErrorIs(t, err, ErrMissingUnits)

	req := havanRequest("A1")
	req.Date = ""
	_, err = svc.CreateReservation(ctx, "u", req)
	assert.ErrorIs(t, err, ErrMissingSchedule)

	_, err = svc.CreateReservation(ctx, "u", havanRequest(
		"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "B1", "B2"))
	assert.Error(t, err)
}

func TestConfirmReservationIdempotent(t *testing.T) {
	svc, repo, avail, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateReservation(ctx, "user-1", havanRequest("D1"))
	require.NoError(t, err)

	result := PaymentResult{TrackingID: "trk-100", StatusMessage: "Success"}
	require.NoError(t, svc.ConfirmReservation(ctx, resp.BookingID, result))
	require.NoError(t, svc.ConfirmReservation(ctx, resp.BookingID, result))

	booking, err := repo.GetByID(ctx, resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, booking.Status)
	assert.Equal(t, "trk-100", booking.TrackingID)

	units, _ := avail.Get(ctx, resp.PartitionKey)
	state := units["D1"]
	assert.True(t, state.Booked)
	assert.False(t, state.Blocked)
	assert.Equal(t, resp.BookingID, state.BookingID)
}

func TestConfirmAfterCancelRejected(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateReservation(ctx, "user-1", havanRequest("E1"))
	require.NoError(t, err)

	ok, err := repo.UpdateStatus(ctx, resp.BookingID, []Status{StatusPendingPayment}, StatusCancelled, nil)
	require.NoError(t, err)
	require.True(t, ok)

	err = svc.ConfirmReservation(ctx, resp.BookingID, PaymentResult{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFailReservationKeepsUnitsBlocked(t *testing.T) {
	svc, repo, avail, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateReservation(ctx, "user-1", havanRequest("F1"))
	require.NoError(t, err)

	result := PaymentResult{StatusMessage: "Declined by bank"}
	require.NoError(t, svc.FailReservation(ctx, resp.BookingID, result))
	require.NoError(t, svc.FailReservation(ctx, resp.BookingID, result))

	booking, err := repo.GetByID(ctx, resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaymentFailed, booking.Status)

	units, _ := avail.Get(ctx, resp.PartitionKey)
	state, ok := units["F1"]
	require.True(t, ok)
	assert.True(t, state.Blocked)
}

func TestDonationSkipsAvailability(t *testing.T) {
	svc, repo, avail, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateReservation(ctx, "user-9", CreateReservationRequest{
		Type:         "DONATION",
		CustomerName: "Ravi Kumar",
		Amount:       1101,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.PartitionKey)
	assert.Empty(t, resp.Units)
	assert.Equal(t, 1101.0, resp.TotalAmount)

	require.NoError(t, svc.ConfirmReservation(ctx, resp.BookingID, PaymentResult{TrackingID: "trk-dn"}))

	booking, err := repo.GetByID(ctx, resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, booking.Status)

	assert.Empty(t, avail.partitions)
}

func TestStallReservationUsesCurrentPartition(t *testing.T) {
	svc, _, avail, _ := newTestService(t)

	resp, err := svc.CreateReservation(context.Background(), "vendor-1", CreateReservationRequest{
		Type:         "STALL",
		UnitIDs:      []string{"S1"},
		CustomerName: "Meena Stores",
	})
	require.NoError(t, err)
	assert.Equal(t, availability.StallPartitionKey, resp.PartitionKey)

	units, _ := avail.Get(context.Background(), availability.StallPartitionKey)
	assert.Contains(t, units, "S1")
}

func TestConfirmAfterFailedPaymentRetry(t *testing.T) {
	svc, repo, avail, pub := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateReservation(ctx, "user-1", havanRequest("G1"))
	require.NoError(t, err)

	require.NoError(t, svc.FailReservation(ctx, resp.BookingID, PaymentResult{StatusMessage: "Declined by bank"}))

	// retried payment succeeds while the seats are still held
	result := PaymentResult{TrackingID: "trk-retry", StatusMessage: "Success"}
	require.NoError(t, svc.ConfirmReservation(ctx, resp.BookingID, result))

	booking, err := repo.GetByID(ctx, resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, booking.Status)
	assert.Equal(t, "trk-retry", booking.TrackingID)

	units, _ := avail.Get(ctx, resp.PartitionKey)
	state := units["G1"]
	assert.True(t, state.Booked)
	assert.Equal(t, resp.BookingID, state.BookingID)

	assert.Contains(t, pub.events, "booking.payment_failed")
	assert.Contains(t, pub.events, "booking.confirmed")
}

func TestCreateReservationRejectsDuplicateUnits(t *testing.T) {
	svc, _, avail, _ := newTestService(t)

	_, err := svc.CreateReservation(context.Background(), "user-1", havanRequest("A1", "A1"))
	assert.ErrorIs(t, err, ErrDuplicateUnits)

	units, _ := avail.Get(context.Background(), "2025-11-14_morning")
	assert.Empty(t, units)
}

func TestLapsedHoldCanBeRebooked(t *testing.T) {
	svc, _, avail, _ := newTestService(t)
	ctx := context.Background()

	avail.mu.Lock()
	avail.units("2025-11-14_morning")["H1"] = availability.UnitState{
		Blocked:       true,
		BlockedReason: availability.BlockReasonPayment,
		BookingID:     "BK900_OLD1",
		ExpiryTime:    time.Now().Add(-time.Minute),
	}
	avail.mu.Unlock()

	resp, err := svc.CreateReservation(ctx, "user-2", havanRequest("H1"))
	require.NoError(t, err)

	units, _ := avail.Get(ctx, resp.PartitionKey)
	assert.Equal(t, resp.BookingID, units["H1"].BookingID)
}
