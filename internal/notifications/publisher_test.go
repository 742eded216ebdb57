package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

type capturingProducer struct {
	events []*BookingEvent
	err    error
}

func (p *capturingProducer) PublishBookingEvent(_ context.Context, event *BookingEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturingProducer) Close() error { return nil }

func TestBookingPublisherMapsFields(t *testing.T) {
	producer := &capturingProducer{}
	publisher := NewBookingPublisher(producer, logger.New())

	booking := &bookings.Booking{
		ID:           "BK1731558000000_X7KQ",
		Type:         bookings.TypeHavan,
		Status:       bookings.StatusConfirmed,
		PartitionKey: "2025-11-14_morning",
		Units:        []string{"A1"},
		TotalAmount:  500,
		Currency:     "INR",
		UserID:       "user-1",
		CustomerName: "Asha Patel",
	}

	publisher.Publish(context.Background(), "booking.confirmed", booking)

	require.Len(t, producer.events, 1)
	event := producer.events[0]
	assert.Equal(t, "booking.confirmed", event.EventType)
	assert.Equal(t, booking.ID, event.BookingID)
	assert.Equal(t, "HAVAN", event.BookingType)
	assert.Equal(t, "confirmed", event.Status)
	assert.Equal(t, []string{"A1"}, event.Units)
	assert.NotEmpty(t, event.EventID)
	assert.False(t, event.OccurredAt.IsZero())
	assert.Equal(t, booking.ID, event.PartitionKeyForKafka())
}

func TestBookingPublisherSwallowsBrokerErrors(t *testing.T) {
	producer := &capturingProducer{err: errors.New("broker down")}
	publisher := NewBookingPublisher(producer, logger.New())

	// Must not panic or propagate
	publisher.Publish(context.Background(), "booking.created", &bookings.Booking{ID: "BK1"})
}
