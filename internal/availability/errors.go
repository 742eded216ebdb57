package availability

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnitNotFound is returned when a referenced unit does not exist in
// the partition
var ErrUnitNotFound = errors.New("unit not found in partition")

// UnavailableError reports a reservation conflict: one or more requested
// units were already booked or blocked. The whole operation is aborted
// with no partial mutation; the caller must retry with a fresh selection.
type UnavailableError struct {
	PartitionKey string
	Units        []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("units not available in %s: %s", e.PartitionKey, strings.Join(e.Units, ", "))
}

// IsUnavailable reports whether err wraps a reservation conflict
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
