package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BookingEvent is the lifecycle record published for the downstream
// email/notification collaborator. The consumer side lives outside
// this service.
type BookingEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	BookingID     string    `json:"booking_id"`
	BookingType   string    `json:"booking_type"`
	Status        string    `json:"status"`
	PartitionKey  string    `json:"partition_key,omitempty"`
	Units         []string  `json:"units,omitempty"`
	TotalAmount   float64   `json:"total_amount"`
	Currency      string    `json:"currency"`
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string) *BookingEvent {
	return &BookingEvent{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKeyForKafka routes all events of one booking to the same
// partition so consumers see them in order
func (e *BookingEvent) PartitionKeyForKafka() string {
	return e.BookingID
}
