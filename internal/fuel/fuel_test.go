package fuel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floatTolerance = 0.01

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name    string
		prev    float64
		curr    float64
		liters  float64
		want    float64
		wantErr error
	}{
		{name: "typical full tank", prev: 15000, curr: 15250, liters: 5.5, want: 45.45},
		{name: "short hop", prev: 100, curr: 150, liters: 2, want: 25},
		{name: "odometer equal", prev: 15000, curr: 15000, liters: 5, wantErr: ErrOdometerNotIncreasing},
		{name: "odometer rolled back", prev: 15250, curr: 15000, liters: 5, wantErr: ErrOdometerNotIncreasing},
		{name: "zero liters", prev: 15000, curr: 15250, liters: 0, wantErr: ErrNonPositiveLiters},
		{name: "negative liters", prev: 15000, curr: 15250, liters: -3, wantErr: ErrNonPositiveLiters},
		{name: "nan odometer", prev: math.NaN(), curr: 15250, liters: 5, wantErr: ErrNotFinite},
		{name: "infinite liters", prev: 15000, curr: 15250, liters: math.Inf(1), wantErr: ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Efficiency(tt.prev, tt.curr, tt.liters)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, floatTolerance)
		})
	}
}

func TestCostPerKm(t *testing.T) {
	got, err := CostPerKm(360.25, 250)
	require.NoError(t, err)
	assert.InDelta(t, 1.44, got, floatTolerance)

	_, err = CostPerKm(360.25, 0)
	assert.ErrorIs(t, err, ErrNonPositiveDistance)

	_, err = CostPerKm(360.25, -10)
	assert.ErrorIs(t, err, ErrNonPositiveDistance)

	_, err = CostPerKm(math.NaN(), 250)
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestProjectedLevelAfterRefuel(t *testing.T) {
	tests := []struct {
		name    string
		tank    float64
		level   float64
		liters  float64
		want    float64
		wantErr error
	}{
		{name: "partial refuel", tank: 15, level: 20, liters: 5, want: 53.33},
		{name: "derived quantity refuel", tank: 15, level: 10, liters: 7.69, want: 61.27},
		{name: "overfill clamps to full", tank: 15, level: 90, liters: 10, want: 100},
		{name: "zero liters keeps level", tank: 15, level: 42, liters: 0, want: 42},
		{name: "full tank from empty", tank: 12, level: 0, liters: 12, want: 100},
		{name: "zero tank", tank: 0, level: 20, liters: 5, wantErr: ErrNonPositiveTank},
		{name: "negative liters", tank: 15, level: 20, liters: -1, wantErr: ErrNegativeLiters},
		{name: "infinite level", tank: 15, level: math.Inf(1), liters: 5, wantErr: ErrLevelNotFinite},
		{name: "nan liters", tank: 15, level: 20, liters: math.NaN(), wantErr: ErrNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectedLevelAfterRefuel(tt.tank, tt.level, tt.liters)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, floatTolerance)
		})
	}
}

func TestProjectedLevelMonotonic(t *testing.T) {
	// Adding more fuel never lowers the projected level.
	prev := 0.0

	for liters := 0.0; liters <= 20; liters += 0.5 {
		got, err := ProjectedLevelAfterRefuel(15, 30, liters)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, MaxLevelPercent)

		prev = got
	}
}

func TestValidateLevel(t *testing.T) {
	assert.NoError(t, ValidateLevel(0))
	assert.NoError(t, ValidateLevel(53.33))
	assert.NoError(t, ValidateLevel(100))

	assert.ErrorIs(t, ValidateLevel(-0.1), ErrLevelOutOfRange)
	assert.ErrorIs(t, ValidateLevel(100.1), ErrLevelOutOfRange)
	assert.ErrorIs(t, ValidateLevel(math.NaN()), ErrLevelNotFinite)
	assert.ErrorIs(t, ValidateLevel(math.Inf(-1)), ErrLevelNotFinite)
}

func TestDeriveQuantity(t *testing.T) {
	got, err := DeriveQuantity(500, 65)
	require.NoError(t, err)
	assert.InDelta(t, 7.69, got, floatTolerance)

	_, err = DeriveQuantity(0, 65)
	assert.ErrorIs(t, err, ErrNonPositiveCost)

	_, err = DeriveQuantity(500, 0)
	assert.ErrorIs(t, err, ErrNonPositivePrice)

	_, err = DeriveQuantity(-500, 65)
	assert.ErrorIs(t, err, ErrNonPositiveCost)

	_, err = DeriveQuantity(500, math.Inf(1))
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestRemainingAndRange(t *testing.T) {
	assert.InDelta(t, 7.5, RemainingLiters(15, 50), floatTolerance)
	assert.InDelta(t, 300, EstimatedRangeKm(15, 50, 40), floatTolerance)
	assert.InDelta(t, 0, EstimatedRangeKm(15, 0, 40), floatTolerance)
}
