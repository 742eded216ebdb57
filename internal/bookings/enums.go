package bookings

// Type discriminates what a booking row pays for
type Type string

const (
	TypeHavan    Type = "HAVAN"
	TypeShow     Type = "SHOW"
	TypeStall    Type = "STALL"
	TypeDonation Type = "DONATION"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeHavan, TypeShow, TypeStall, TypeDonation:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

// ReservesUnits reports whether this booking type holds seat or stall units
func (t Type) ReservesUnits() bool {
	return t != TypeDonation
}
