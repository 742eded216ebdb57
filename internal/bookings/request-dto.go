package bookings

// CreateReservationRequest opens a payment-pending hold on seats or a
// stall, or records a donation when Type is DONATION.
type CreateReservationRequest struct {
	Type          string   `json:"type" validate:"required,oneof=HAVAN SHOW STALL DONATION"`
	Date          string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Shift         string   `json:"shift" validate:"omitempty,lowercase"`
	UnitIDs       []string `json:"unit_ids" validate:"omitempty,max=10,unique,dive,min=2,max=5"`
	CustomerName  string   `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerEmail string   `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string   `json:"customer_phone" validate:"omitempty,min=10,max=15"`

	// Donation amount in INR; ignored for unit-backed types
	Amount float64 `json:"amount" validate:"omitempty,gt=0"`
}

type BookingListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending_payment confirmed payment_failed cancelled refunded"`
	Limit  int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset,default=0" binding:"omitempty,min=0"`
}
