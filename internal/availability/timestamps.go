package availability

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp layouts seen in stored documents, tried in order
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimestamp normalizes the timestamp representations that occur in
// stored unit state: native time.Time, RFC3339-ish strings, epoch seconds
// or milliseconds as numbers, and a {"seconds": n} object. This is the
// single normalization point; callers never parse expiry fields themselves.
func ParseTimestamp(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is empty")
	case time.Time:
		return t, nil
	case string:
		if t == "" {
			return time.Time{}, fmt.Errorf("timestamp is empty")
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		// Epoch values occasionally arrive stringified
		if n, err := strconv.ParseFloat(t, 64); err == nil {
			return fromEpoch(n), nil
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", t)
	case float64:
		return fromEpoch(t), nil
	case int64:
		return fromEpoch(float64(t)), nil
	case int:
		return fromEpoch(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("unparseable numeric timestamp %q", t.String())
		}
		return fromEpoch(n), nil
	case map[string]interface{}:
		// Document-store snapshot shape: {"seconds": n, "nanoseconds": n}
		sec, ok := t["seconds"]
		if !ok {
			sec, ok = t["_seconds"]
		}
		if !ok {
			return time.Time{}, fmt.Errorf("timestamp object has no seconds field")
		}
		parsed, err := ParseTimestamp(sec)
		if err != nil {
			return time.Time{}, err
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

// fromEpoch treats values above 1e12 as milliseconds, otherwise seconds
func fromEpoch(n float64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec := int64(n)
	nsec := int64((n - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// FormatTimestamp is the canonical representation for newly written
// expiry fields
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
