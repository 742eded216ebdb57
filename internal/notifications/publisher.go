package notifications

import (
	"context"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

// BookingPublisher adapts Producer to the booking flow's publisher
// interface. Publish failures are logged and swallowed; the broker is
// best-effort and must never fail a booking.
type BookingPublisher struct {
	producer Producer
	log      *logger.Logger
}

func NewBookingPublisher(producer Producer, log *logger.Logger) *BookingPublisher {
	return &BookingPublisher{producer: producer, log: log}
}

func (p *BookingPublisher) Publish(ctx context.Context, eventType string, booking *bookings.Booking) {
	event := NewBookingEvent(eventType)
	event.BookingID = booking.ID
	event.BookingType = booking.Type.String()
	event.Status = booking.Status.String()
	event.PartitionKey = booking.PartitionKey
	event.Units = booking.Units
	event.TotalAmount = booking.TotalAmount
	event.Currency = booking.Currency
	event.UserID = booking.UserID
	event.CustomerName = booking.CustomerName
	event.CustomerEmail = booking.CustomerEmail

	if err := p.producer.PublishBookingEvent(ctx, event); err != nil {
		p.log.ErrorWithContext(ctx, "booking event publish failed", err, map[string]interface{}{
			"event_type": eventType,
			"booking_id": booking.ID,
		})
	}
}
