package availability

import (
	"fmt"
	"regexp"
	"time"

	"gorm.io/datatypes"
)

// Reasons a unit can be blocked. A payment-pending block expires; an
// admin block is permanent until an admin removes it.
const (
	BlockReasonPayment = "payment-pending"
	BlockReasonAdmin   = "admin"
)

// Resource types a partition can hold
const (
	ResourceHavan = "HAVAN"
	ResourceShow  = "SHOW"
	ResourceStall = "STALL"
)

// StallPartitionKey is the singleton partition for stalls, which are not
// date/shift partitioned.
const StallPartitionKey = "current"

// UnitState is the stored state of one bookable seat or stall. A unit is
// never both booked and blocked. ExpiryTime is kept loosely typed because
// historical documents carry several timestamp representations; use
// Expiry() to read it.
type UnitState struct {
	Booked        bool        `json:"booked"`
	Blocked       bool        `json:"blocked"`
	BlockedReason string      `json:"blocked_reason,omitempty"`
	BookingID     string      `json:"booking_id,omitempty"`
	ExpiryTime    interface{} `json:"expiry_time,omitempty"`
	UserID        string      `json:"user_id,omitempty"`
	CustomerName  string      `json:"customer_name,omitempty"`
}

// Expiry normalizes the stored expiry timestamp
func (u UnitState) Expiry() (time.Time, error) {
	return ParseTimestamp(u.ExpiryTime)
}

// IsFree reports whether the unit can be newly blocked
func (u UnitState) IsFree() bool {
	return !u.Booked && !u.Blocked
}

// IsClaimable reports whether a new hold may take the unit: it is free,
// or its payment hold lapsed and cleanup has not reclaimed it yet.
func (u UnitState) IsClaimable(now time.Time) bool {
	if u.IsFree() {
		return true
	}
	if u.Booked || u.IsAdminBlocked() {
		return false
	}
	expiry, err := u.Expiry()
	return err == nil && expiry.Before(now)
}

// IsAdminBlocked reports whether the unit is under a permanent admin hold
func (u UnitState) IsAdminBlocked() bool {
	return u.Blocked && u.BlockedReason == BlockReasonAdmin
}

// IsOrphaned reports whether the unit is payment-blocked with no booking
// reference. Such units are safe to release unconditionally.
func (u UnitState) IsOrphaned() bool {
	return u.Blocked && u.BlockedReason == BlockReasonPayment && u.BookingID == ""
}

// UnitMap maps unit ID (e.g. "A12") to its stored state
type UnitMap map[string]UnitState

// AvailabilityDocument is one availability partition: all units for a
// (date, shift) pair, or the stall singleton. The unit map is a single
// JSONB value and is only ever mutated inside a row-locked transaction.
type AvailabilityDocument struct {
	PartitionKey string                        `gorm:"primaryKey;size:64" json:"partition_key"`
	ResourceType string                        `gorm:"type:varchar(20);not null" json:"resource_type"`
	Units        datatypes.JSONType[UnitMap]   `json:"units"`
	CreatedAt    time.Time                     `json:"created_at"`
	UpdatedAt    time.Time                     `json:"updated_at"`
}

// TableName sets the table name for AvailabilityDocument
func (AvailabilityDocument) TableName() string {
	return "availability_documents"
}

// UnitMap returns the decoded unit map, never nil
func (d *AvailabilityDocument) UnitMap() UnitMap {
	units := d.Units.Data()
	if units == nil {
		return UnitMap{}
	}
	return units
}

// Hold describes the holder written onto blocked units
type Hold struct {
	BookingID    string
	UserID       string
	CustomerName string
	ExpiresAt    time.Time
}

var seatPartitionRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_[a-z-]+$`)

// SeatPartitionKey builds the partition key for date/shift partitioned
// resources (havan seats, show seats): "2025-11-14_morning".
func SeatPartitionKey(date, shift string) string {
	return date + "_" + shift
}

// ValidatePartitionKey checks a partition key against the accepted formats
func ValidatePartitionKey(key string) error {
	if key == StallPartitionKey {
		return nil
	}
	if !seatPartitionRe.MatchString(key) {
		return fmt.Errorf("invalid partition key: %q", key)
	}
	if _, err := time.Parse("2006-01-02", key[:10]); err != nil {
		return fmt.Errorf("invalid partition key date: %q", key)
	}
	return nil
}
