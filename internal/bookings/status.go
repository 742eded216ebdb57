package bookings

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusPaymentFailed  Status = "payment_failed"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusPaymentFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo enforces the booking lifecycle. refunded is terminal.
// payment_failed may still confirm: the units stay blocked for the rest
// of the hold window, so a retried gateway success settles the booking.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPendingPayment:
		return next == StatusConfirmed || next == StatusPaymentFailed || next == StatusCancelled
	case StatusPaymentFailed:
		return next == StatusConfirmed
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusRefunded
	case StatusCancelled:
		return next == StatusRefunded
	}
	return false
}

// IsActive checks if the booking still occupies or may occupy units
func (s Status) IsActive() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

// CanBeCancelled checks if a booking with this status can be cancelled
func (s Status) CanBeCancelled() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}
