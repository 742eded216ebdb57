package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name         string
		resourceType string
		unitID       string
		want         float64
		wantErr      bool
	}{
		{"havan seat flat rate", "HAVAN", "A12", HavanSeatPrice, false},
		{"stall flat rate", "STALL", "S1", StallPrice, false},
		{"show premium row", "SHOW", "B5", ShowPremiumPrice, false},
		{"show standard row", "SHOW", "F10", ShowStandardPrice, false},
		{"show economy row", "SHOW", "K3", ShowEconomyPrice, false},
		{"unknown resource type", "PARKING", "A1", 0, true},
		{"malformed unit id", "HAVAN", "12A", 0, true},
		{"empty unit id", "SHOW", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnitPrice(tt.resourceType, tt.unitID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotal(t *testing.T) {
	total, err := ComputeTotal("SHOW", []string{"A1", "D2", "K9"})
	require.NoError(t, err)
	assert.Equal(t, ShowPremiumPrice+ShowStandardPrice+ShowEconomyPrice, total)

	total, err = ComputeTotal("HAVAN", nil)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = ComputeTotal("HAVAN", []string{"A1", "bad id"})
	assert.Error(t, err)
}
