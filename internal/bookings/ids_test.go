package bookings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBookingIDPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewBookingID(TypeHavan), "BK"))
	assert.True(t, strings.HasPrefix(NewBookingID(TypeShow), "SHOW-"))
	assert.True(t, strings.HasPrefix(NewBookingID(TypeStall), "STALL-"))
	assert.True(t, strings.HasPrefix(NewBookingID(TypeDonation), "DN"))
}

func TestNewBookingIDLength(t *testing.T) {
	// CCAvenue caps order_id at 30 characters
	for _, typ := range []Type{TypeHavan, TypeShow, TypeStall, TypeDonation} {
		id := NewBookingID(typ)
		assert.LessOrEqual(t, len(id), 30, "id too long for gateway: %s", id)
	}
}

func TestNewBookingIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := NewBookingID(TypeHavan)
		assert.False(t, seen[id], "duplicate id: %s", id)
		seen[id] = true
	}
}

func TestTypeFromID(t *testing.T) {
	assert.Equal(t, TypeHavan, TypeFromID("BK1731558000000_X7KQ"))
	assert.Equal(t, TypeShow, TypeFromID("SHOW-1731558000000-AB2C"))
	assert.Equal(t, TypeStall, TypeFromID("STALL-1731558000000-ZZ99"))
	assert.Equal(t, TypeDonation, TypeFromID("DN1731558000000"))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPendingPayment.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPendingPayment.CanTransitionTo(StatusPaymentFailed))
	assert.True(t, StatusPendingPayment.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusRefunded))
	assert.True(t, StatusCancelled.CanTransitionTo(StatusRefunded))
	assert.True(t, StatusPaymentFailed.CanTransitionTo(StatusConfirmed))

	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPendingPayment))
	assert.False(t, StatusPaymentFailed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusRefunded.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
}
