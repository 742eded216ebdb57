package bookings

import (
	"time"

	"gorm.io/datatypes"
)

// Booking is one reservation, confirmed booking, or donation. The ID is
// the externally visible order reference, not a surrogate key.
type Booking struct {
	ID     string `gorm:"type:varchar(40);primaryKey" json:"id"`
	Type   Type   `gorm:"type:varchar(20);not null;index" json:"type"`
	Status Status `gorm:"type:varchar(20);not null;index" json:"status"`

	// Reserved units; empty for donations
	PartitionKey string                      `gorm:"type:varchar(64);index" json:"partition_key,omitempty"`
	Shift        string                      `gorm:"type:varchar(20)" json:"shift,omitempty"`
	Units        datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"units,omitempty"`

	TotalAmount float64 `gorm:"not null" json:"total_amount"`
	Currency    string  `gorm:"type:varchar(3);default:'INR'" json:"currency"`

	UserID        string `gorm:"type:varchar(64);index;not null" json:"user_id"`
	CustomerName  string `gorm:"type:varchar(120);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(120)" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(20)" json:"customer_phone"`

	// Gateway response fields, filled on callback
	TrackingID    string `gorm:"type:varchar(40)" json:"tracking_id,omitempty"`
	BankRefNo     string `gorm:"type:varchar(40)" json:"bank_ref_no,omitempty"`
	PaymentMode   string `gorm:"type:varchar(40)" json:"payment_mode,omitempty"`
	StatusMessage string `gorm:"type:varchar(200)" json:"status_message,omitempty"`

	ExpiryTime         *time.Time `gorm:"index" json:"expiry_time,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"type:varchar(200)" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPendingPayment
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// HoldExpired reports whether the reservation's hold window has lapsed
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.ExpiryTime != nil && now.After(*b.ExpiryTime)
}
