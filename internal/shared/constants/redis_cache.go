package constants

import "time"

// Redis cache keys and TTL values for the booking platform.
// Pattern: havan:{module}:{identifier}

const CACHE_PREFIX = "havan"

// Availability snapshots are the hot path and stay very short lived so
// a stale read can never mask a payment hold for long.
const TTL_AVAILABILITY_SNAPSHOT = 15 * time.Second

const (
	CACHE_KEY_AVAILABILITY = CACHE_PREFIX + ":availability:" // + partition key
)

// Invalidation patterns (used with DeletePattern)
const (
	PATTERN_INVALIDATE_AVAILABILITY = CACHE_PREFIX + ":availability:*"
)

func BuildAvailabilityKey(partitionKey string) string {
	return CACHE_KEY_AVAILABILITY + partitionKey
}
