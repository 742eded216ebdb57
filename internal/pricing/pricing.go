package pricing

import (
	"fmt"
	"regexp"
)

// Flat per-unit tariffs in INR. Show seating is tiered by row.
const (
	HavanSeatPrice = 500.0
	StallPrice     = 5000.0

	ShowPremiumPrice  = 1000.0
	ShowStandardPrice = 750.0
	ShowEconomyPrice  = 500.0
)

var unitIDRe = regexp.MustCompile(`^[A-Z]{1,2}\d{1,3}$`)

// ValidateUnitID checks the row-letter + number unit naming ("A12")
func ValidateUnitID(unitID string) error {
	if !unitIDRe.MatchString(unitID) {
		return fmt.Errorf("invalid unit id: %q", unitID)
	}
	return nil
}

// UnitPrice returns the price of a single unit for a resource type
func UnitPrice(resourceType, unitID string) (float64, error) {
	if err := ValidateUnitID(unitID); err != nil {
		return 0, err
	}

	switch resourceType {
	case "HAVAN":
		return HavanSeatPrice, nil
	case "STALL":
		return StallPrice, nil
	case "SHOW":
		switch unitID[0] {
		case 'A', 'B', 'C':
			return ShowPremiumPrice, nil
		case 'D', 'E', 'F', 'G', 'H':
			return ShowStandardPrice, nil
		default:
			return ShowEconomyPrice, nil
		}
	default:
		return 0, fmt.Errorf("unknown resource type: %q", resourceType)
	}
}

// ComputeTotal sums unit prices for a reservation
func ComputeTotal(resourceType string, unitIDs []string) (float64, error) {
	var total float64
	for _, id := range unitIDs {
		price, err := UnitPrice(resourceType, id)
		if err != nil {
			return 0, err
		}
		total += price
	}
	return total, nil
}

// Table returns the published tariff, keyed for display
func Table() map[string]float64 {
	return map[string]float64{
		"havan_seat":    HavanSeatPrice,
		"stall":         StallPrice,
		"show_premium":  ShowPremiumPrice,
		"show_standard": ShowStandardPrice,
		"show_economy":  ShowEconomyPrice,
	}
}
