package cancellation

import (
	"time"

	"github.com/google/uuid"
)

type RefundStatus string

const (
	RefundPending    RefundStatus = "PENDING"
	RefundProcessing RefundStatus = "PROCESSING"
	RefundCompleted  RefundStatus = "COMPLETED"
	RefundRejected   RefundStatus = "REJECTED"
)

func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundPending, RefundProcessing, RefundCompleted, RefundRejected:
		return true
	}
	return false
}

// CanTransitionTo enforces the refund sub-machine. COMPLETED and
// REJECTED are terminal.
func (s RefundStatus) CanTransitionTo(next RefundStatus) bool {
	switch s {
	case RefundPending:
		return next == RefundProcessing || next == RefundRejected
	case RefundProcessing:
		return next == RefundCompleted || next == RefundRejected
	}
	return false
}

// CancellationRecord is the audit entry appended for every explicit
// cancellation. The booking row holds current state; this table holds
// who cancelled what, when, and how the refund proceeded.
type CancellationRecord struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID      string       `gorm:"type:varchar(40);index;not null" json:"booking_id"`
	BookingType    string       `gorm:"type:varchar(20);not null" json:"booking_type"`
	OriginalAmount float64      `gorm:"not null" json:"original_amount"`
	RefundAmount   float64      `gorm:"not null" json:"refund_amount"`
	RefundStatus   RefundStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"refund_status"`
	Reason         string       `gorm:"type:varchar(200)" json:"reason"`
	CancelledBy    string       `gorm:"type:varchar(64);not null" json:"cancelled_by"`
	CancelledRole  string       `gorm:"type:varchar(20);not null" json:"cancelled_role"`
	UnitsReleased  int          `json:"units_released"`
	ReleaseFailed  bool         `json:"release_failed"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (CancellationRecord) TableName() string {
	return "cancellation_records"
}
