package availability

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampRepresentations(t *testing.T) {
	want := time.Date(2025, 11, 14, 6, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
	}{
		{"native time", want},
		{"rfc3339", "2025-11-14T06:30:00Z"},
		{"rfc3339 nano", "2025-11-14T06:30:00.000000000Z"},
		{"space separated", "2025-11-14 06:30:00"},
		{"no zone", "2025-11-14T06:30:00"},
		{"epoch seconds float", float64(want.Unix())},
		{"epoch seconds int", int(want.Unix())},
		{"epoch seconds int64", want.Unix()},
		{"epoch millis", float64(want.UnixMilli())},
		{"stringified epoch", "1763101800"},
		{"json number", json.Number("1763101800")},
		{"seconds object", map[string]interface{}{"seconds": float64(want.Unix())}},
		{"underscore seconds object", map[string]interface{}{"_seconds": float64(want.Unix())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %v want %v", got, want)
		})
	}
}

func TestParseTimestampRejections(t *testing.T) {
	inputs := []interface{}{
		nil,
		"",
		"yesterday-ish",
		map[string]interface{}{"minutes": 5},
		[]string{"2025-11-14"},
		true,
	}
	for _, in := range inputs {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, "input %#v", in)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	parsed, err := ParseTimestamp(FormatTimestamp(now))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestValidatePartitionKey(t *testing.T) {
	valid := []string{
		"2025-11-14_morning",
		"2025-11-14_evening",
		"2026-01-01_full-day",
		StallPartitionKey,
	}
	for _, key := range valid {
		assert.NoError(t, ValidatePartitionKey(key), key)
	}

	invalid := []string{
		"",
		"2025-11-14",
		"morning_2025-11-14",
		"2025-13-40_morning",
		"2025-11-14_MORNING",
		"current_extra",
	}
	for _, key := range invalid {
		assert.Error(t, ValidatePartitionKey(key), key)
	}
}

func TestUnitStatePredicates(t *testing.T) {
	free := UnitState{}
	assert.True(t, free.IsFree())

	adminHold := UnitState{Blocked: true, BlockedReason: BlockReasonAdmin}
	assert.True(t, adminHold.IsAdminBlocked())
	assert.False(t, adminHold.IsFree())
	assert.False(t, adminHold.IsOrphaned())

	orphan := UnitState{Blocked: true, BlockedReason: BlockReasonPayment}
	assert.True(t, orphan.IsOrphaned())

	held := UnitState{Blocked: true, BlockedReason: BlockReasonPayment, BookingID: "BK1"}
	assert.False(t, held.IsOrphaned())

	booked := UnitState{Booked: true, BookingID: "BK1"}
	assert.False(t, booked.IsFree())
	assert.False(t, booked.IsOrphaned())
}

func TestUnitStateClaimable(t *testing.T) {
	now := time.Date(2025, 11, 14, 8, 0, 0, 0, time.UTC)

	assert.True(t, UnitState{}.IsClaimable(now))

	lapsed := UnitState{
		Blocked:       true,
		BlockedReason: BlockReasonPayment,
		BookingID:     "BK1",
		ExpiryTime:    now.Add(-time.Minute).Format(time.RFC3339),
	}
	assert.True(t, lapsed.IsClaimable(now))

	live := UnitState{
		Blocked:       true,
		BlockedReason: BlockReasonPayment,
		BookingID:     "BK1",
		ExpiryTime:    now.Add(time.Minute).Format(time.RFC3339),
	}
	assert.False(t, live.IsClaimable(now))

	// an unreadable expiry keeps the unit held; cleanup reports it instead
	garbled := UnitState{Blocked: true, BlockedReason: BlockReasonPayment, ExpiryTime: "not-a-time"}
	assert.False(t, garbled.IsClaimable(now))

	admin := UnitState{Blocked: true, BlockedReason: BlockReasonAdmin}
	assert.False(t, admin.IsClaimable(now))

	booked := UnitState{Booked: true, BookingID: "BK1"}
	assert.False(t, booked.IsClaimable(now))
}

func TestSeatPartitionKey(t *testing.T) {
	assert.Equal(t, "2025-11-14_morning", SeatPartitionKey("2025-11-14", "morning"))
}
