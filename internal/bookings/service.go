package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/availability"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/pricing"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/constants"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidTransition = errors.New("booking status transition not allowed")
	ErrMissingUnits      = errors.New("at least one unit is required")
	ErrDuplicateUnits    = errors.New("duplicate unit in request")
	ErrMissingSchedule   = errors.New("date and shift are required")
	ErrMissingAmount     = errors.New("donation amount is required")
)

// PaymentResult carries the gateway fields recorded on a booking when
// its payment settles or fails.
type PaymentResult struct {
	TrackingID    string
	BankRefNo     string
	PaymentMode   string
	StatusMessage string
}

// EventPublisher decouples the booking flow from the message broker.
// Publish must never block a booking on broker trouble.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, booking *Booking)
}

// AvailabilityCache invalidates cached partition snapshots after a
// booking mutates units.
type AvailabilityCache interface {
	Delete(ctx context.Context, key string) error
}

type Service interface {
	CreateReservation(ctx context.Context, userID string, req CreateReservationRequest) (*ReservationResponse, error)
	ConfirmReservation(ctx context.Context, bookingID string, result PaymentResult) error
	FailReservation(ctx context.Context, bookingID string, result PaymentResult) error
	GetBooking(ctx context.Context, bookingID string) (*Booking, error)
	GetUserBookings(ctx context.Context, userID string, query BookingListQuery) (*BookingListResponse, error)
	ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error)
}

type service struct {
	repo      Repository
	avail     availability.Repository
	cache     AvailabilityCache
	publisher EventPublisher
	holdTTL   time.Duration
	maxUnits  int
	log       *logger.Logger
}

func NewService(repo Repository, avail availability.Repository, availCache AvailabilityCache, publisher EventPublisher, holdTTL time.Duration, maxUnits int, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		avail:     avail,
		cache:     availCache,
		publisher: publisher,
		holdTTL:   holdTTL,
		maxUnits:  maxUnits,
		log:       log,
	}
}

func (s *service) CreateReservation(ctx context.Context, userID string, req CreateReservationRequest) (*ReservationResponse, error) {
	bookingType := Type(req.Type)
	if !bookingType.IsValid() {
		return nil, fmt.Errorf("unknown booking type: %q", req.Type)
	}

	if bookingType == TypeDonation {
		return s.createDonation(ctx, userID, req)
	}

	if len(req.UnitIDs) == 0 {
		return nil, ErrMissingUnits
	}
	if len(req.UnitIDs) > s.maxUnits {
		return nil, fmt.Errorf("at most %d units per reservation", s.maxUnits)
	}
	seen := make(map[string]struct{}, len(req.UnitIDs))
	for _, id := range req.UnitIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUnits, id)
		}
		seen[id] = struct{}{}
	}

	partitionKey, resourceType, err := resolvePartition(bookingType, req.Date, req.Shift)
	if err != nil {
		return nil, err
	}

	total, err := pricing.ComputeTotal(resourceType, req.UnitIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiry := now.Add(s.holdTTL)
	booking := &Booking{
		ID:            NewBookingID(bookingType),
		Type:          bookingType,
		Status:        StatusPendingPayment,
		PartitionKey:  partitionKey,
		Shift:         req.Shift,
		Units:         req.UnitIDs,
		TotalAmount:   total,
		Currency:      "INR",
		UserID:        userID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ExpiryTime:    &expiry,
	}

	hold := availability.Hold{
		BookingID:    booking.ID,
		UserID:       userID,
		CustomerName: req.CustomerName,
		ExpiresAt:    expiry,
	}

	// Unit blocking and row insert commit or roll back together, so a
	// blocked unit always has a booking behind it
	err = s.avail.BlockUnits(ctx, partitionKey, resourceType, req.UnitIDs, hold, func(tx *gorm.DB) error {
		return s.repo.CreateInTx(tx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, partitionKey)
	s.publish(ctx, "booking.created", booking)
	s.log.LogReservationCreated(ctx, booking.ID, partitionKey, len(req.UnitIDs), expiry)

	resp := toReservationResponse(booking)
	return &resp, nil
}

func (s *service) createDonation(ctx context.Context, userID string, req CreateReservationRequest) (*ReservationResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrMissingAmount
	}

	now := time.Now().UTC()
	expiry := now.Add(s.holdTTL)
	booking := &Booking{
		ID:            NewBookingID(TypeDonation),
		Type:          TypeDonation,
		Status:        StatusPendingPayment,
		TotalAmount:   req.Amount,
		Currency:      "INR",
		UserID:        userID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ExpiryTime:    &expiry,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking.created", booking)
	resp := toReservationResponse(booking)
	return &resp, nil
}

// ConfirmReservation settles a paid booking. Safe to call more than
// once for the same booking; replayed gateway callbacks are absorbed.
func (s *service) ConfirmReservation(ctx context.Context, bookingID string, result PaymentResult) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == StatusConfirmed {
		return nil
	}
	if !booking.Status.CanTransitionTo(StatusConfirmed) {
		return fmt.Errorf("%w: %s -> confirmed", ErrInvalidTransition, booking.Status)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"tracking_id":    result.TrackingID,
		"bank_ref_no":    result.BankRefNo,
		"payment_mode":   result.PaymentMode,
		"status_message": result.StatusMessage,
		"confirmed_at":   now,
		"expiry_time":    nil,
	}

	confirmable := []Status{StatusPendingPayment, StatusPaymentFailed}
	if booking.Type == TypeDonation {
		ok, err := s.repo.UpdateStatus(ctx, bookingID, confirmable, StatusConfirmed, updates)
		if err != nil {
			return err
		}
		if !ok {
			return s.confirmRaced(ctx, bookingID)
		}
	} else {
		// The status flip and the unit flip share one transaction
		err = s.avail.MarkBooked(ctx, booking.PartitionKey, booking.Units, bookingID, func(tx *gorm.DB) error {
			ok, err := s.repo.UpdateStatusInTx(tx, bookingID, confirmable, StatusConfirmed, updates)
			if err != nil {
				return err
			}
			if !ok {
				return s.confirmRaced(ctx, bookingID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.invalidate(ctx, booking.PartitionKey)
	}

	booking.Status = StatusConfirmed
	s.publish(ctx, "booking.confirmed", booking)
	s.log.LogBookingConfirmed(ctx, bookingID, result.TrackingID)
	return nil
}

// confirmRaced resolves a lost compare-and-set: a concurrent callback
// already moved the booking, which is fine if it landed on confirmed.
func (s *service) confirmRaced(ctx context.Context, bookingID string) error {
	current, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if current.Status == StatusConfirmed {
		return nil
	}
	return fmt.Errorf("%w: %s -> confirmed", ErrInvalidTransition, current.Status)
}

// FailReservation marks a declined payment. Units stay blocked until
// the hold expires so the customer can retry without losing seats.
func (s *service) FailReservation(ctx context.Context, bookingID string, result PaymentResult) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == StatusPaymentFailed {
		return nil
	}
	if !booking.Status.CanTransitionTo(StatusPaymentFailed) {
		return fmt.Errorf("%w: %s -> payment_failed", ErrInvalidTransition, booking.Status)
	}

	updates := map[string]interface{}{
		"tracking_id":    result.TrackingID,
		"bank_ref_no":    result.BankRefNo,
		"payment_mode":   result.PaymentMode,
		"status_message": result.StatusMessage,
	}
	ok, err := s.repo.UpdateStatus(ctx, bookingID, []Status{StatusPendingPayment}, StatusPaymentFailed, updates)
	if err != nil {
		return err
	}
	if !ok {
		current, err := s.repo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.Status == StatusPaymentFailed {
			return nil
		}
		return fmt.Errorf("%w: %s -> payment_failed", ErrInvalidTransition, current.Status)
	}

	booking.Status = StatusPaymentFailed
	s.publish(ctx, "booking.payment_failed", booking)
	return nil
}

func (s *service) GetBooking(ctx context.Context, bookingID string) (*Booking, error) {
	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) GetUserBookings(ctx context.Context, userID string, query BookingListQuery) (*BookingListResponse, error) {
	items, total, err := s.repo.ListByUser(ctx, userID, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return listResponse(items, total, query), nil
}

func (s *service) ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error) {
	items, total, err := s.repo.ListByStatus(ctx, Status(query.Status), query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return listResponse(items, total, query), nil
}

func listResponse(items []Booking, total int64, query BookingListQuery) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]ReservationResponse, 0, len(items)),
		Total:    total,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}
	for i := range items {
		resp.Bookings = append(resp.Bookings, toReservationResponse(&items[i]))
	}
	return resp
}

func resolvePartition(t Type, date, shift string) (partitionKey, resourceType string, err error) {
	switch t {
	case TypeStall:
		return availability.StallPartitionKey, availability.ResourceStall, nil
	case TypeShow:
		resourceType = availability.ResourceShow
	default:
		resourceType = availability.ResourceHavan
	}
	if date == "" || shift == "" {
		return "", "", ErrMissingSchedule
	}
	key := availability.SeatPartitionKey(date, shift)
	if err := availability.ValidatePartitionKey(key); err != nil {
		return "", "", err
	}
	return key, resourceType, nil
}

func (s *service) invalidate(ctx context.Context, partitionKey string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.BuildAvailabilityKey(partitionKey)); err != nil {
		s.log.WarnWithContext(ctx, "availability cache invalidation failed", map[string]interface{}{
			"partition_key": partitionKey,
			"error":         err.Error(),
		})
	}
}

func (s *service) publish(ctx context.Context, eventType string, booking *Booking) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, eventType, booking)
}
