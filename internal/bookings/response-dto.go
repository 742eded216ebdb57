package bookings

import "time"

type ReservationResponse struct {
	BookingID    string     `json:"booking_id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	PartitionKey string     `json:"partition_key,omitempty"`
	Units        []string   `json:"units,omitempty"`
	TotalAmount  float64    `json:"total_amount"`
	Currency     string     `json:"currency"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type BookingListResponse struct {
	Bookings []ReservationResponse `json:"bookings"`
	Total    int64                 `json:"total"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

func toReservationResponse(b *Booking) ReservationResponse {
	return ReservationResponse{
		BookingID:    b.ID,
		Type:         b.Type.String(),
		Status:       b.Status.String(),
		PartitionKey: b.PartitionKey,
		Units:        b.Units,
		TotalAmount:  b.TotalAmount,
		Currency:     b.Currency,
		ExpiresAt:    b.ExpiryTime,
		CreatedAt:    b.CreatedAt,
	}
}
