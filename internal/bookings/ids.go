package bookings

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const idSuffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomSuffix(n int) string {
	var sb strings.Builder
	max := big.NewInt(int64(len(idSuffixAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms; fall back
			// to a time-derived index rather than panic mid-request
			idx = big.NewInt(time.Now().UnixNano() % int64(len(idSuffixAlphabet)))
		}
		sb.WriteByte(idSuffixAlphabet[idx.Int64()])
	}
	return sb.String()
}

// NewBookingID builds an order reference with a type-specific prefix.
// The reference doubles as the gateway order_id, so it stays within
// CCAvenue's 30 character limit.
func NewBookingID(t Type) string {
	ts := time.Now().UnixMilli()
	switch t {
	case TypeShow:
		return fmt.Sprintf("SHOW-%d-%s", ts, randomSuffix(4))
	case TypeStall:
		return fmt.Sprintf("STALL-%d-%s", ts, randomSuffix(4))
	case TypeDonation:
		return fmt.Sprintf("DN%d", ts)
	default:
		return fmt.Sprintf("BK%d_%s", ts, randomSuffix(4))
	}
}

// TypeFromID recovers the booking type from an order reference prefix
func TypeFromID(id string) Type {
	switch {
	case strings.HasPrefix(id, "SHOW-"):
		return TypeShow
	case strings.HasPrefix(id, "STALL-"):
		return TypeStall
	case strings.HasPrefix(id, "DN"):
		return TypeDonation
	default:
		return TypeHavan
	}
}
