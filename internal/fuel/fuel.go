// Package fuel implements the pure fuel-state calculations: efficiency from
// odometer readings, cost-per-kilometer, and projected tank level after a
// refuel. All functions are side-effect free; callers validate and report
// errors rather than clamping bad input into range.
package fuel

import (
	"errors"
	"math"
)

// Default values applied at the data-model boundary when the backend omits
// a motor's numeric fields. The calculator itself assumes fully-populated
// inputs; decoding fills these in so it never sees a zero tank.
const (
	DefaultTankCapacityLiters = 15.0
	DefaultConsumptionKmPerL  = 40.0
	DefaultLevelPercent       = 0.0
)

// Fuel level bounds, in percent.
const (
	MinLevelPercent = 0.0
	MaxLevelPercent = 100.0
)

// percentScale converts a tank fraction to a percentage.
const percentScale = 100.0

// Sentinel errors for input validation.
// Use errors.Is(err, fuel.ErrOdometerNotIncreasing) to check.
var (
	ErrOdometerNotIncreasing = errors.New("fuel: current odometer must be greater than previous")
	ErrNonPositiveLiters     = errors.New("fuel: liters must be greater than zero")
	ErrNonPositiveDistance   = errors.New("fuel: distance must be greater than zero")
	ErrNonPositiveCost       = errors.New("fuel: cost must be greater than zero")
	ErrNonPositivePrice      = errors.New("fuel: price per liter must be greater than zero")
	ErrNonPositiveTank       = errors.New("fuel: tank capacity must be greater than zero")
	ErrNegativeLiters        = errors.New("fuel: liters must not be negative")
	ErrNotFinite             = errors.New("fuel: input must be a finite number")
	ErrLevelNotFinite        = errors.New("fuel: fuel level must be a finite number")
	ErrLevelOutOfRange       = errors.New("fuel: fuel level must be between 0 and 100")
)

// Efficiency computes fuel efficiency in km/L from two odometer readings and
// the liters consumed between them (full-tank method). Preconditions:
// currOdometer > prevOdometer and liters > 0. Violations are validation
// errors reported to the caller, never a panic.
func Efficiency(prevOdometer, currOdometer, liters float64) (float64, error) {
	if !isFinite(prevOdometer) || !isFinite(currOdometer) || !isFinite(liters) {
		return 0, ErrNotFinite
	}

	if currOdometer <= prevOdometer {
		return 0, ErrOdometerNotIncreasing
	}

	if liters <= 0 {
		return 0, ErrNonPositiveLiters
	}

	return (currOdometer - prevOdometer) / liters, nil
}

// CostPerKm computes the fuel cost per kilometer traveled.
func CostPerKm(totalCost, distanceKm float64) (float64, error) {
	if !isFinite(totalCost) || !isFinite(distanceKm) {
		return 0, ErrNotFinite
	}

	if distanceKm <= 0 {
		return 0, ErrNonPositiveDistance
	}

	return totalCost / distanceKm, nil
}

// ProjectedLevelAfterRefuel computes the new fuel level percentage after
// adding litersAdded to a tank of tankLiters capacity currently at
// levelPercent. The result is clamped to [0,100]. Clamping happens only
// here, inside the projection formula — an already-invalid stored level is
// the caller's problem to validate, never silently corrected.
func ProjectedLevelAfterRefuel(tankLiters, levelPercent, litersAdded float64) (float64, error) {
	if !isFinite(tankLiters) || !isFinite(litersAdded) {
		return 0, ErrNotFinite
	}

	if !isFinite(levelPercent) {
		return 0, ErrLevelNotFinite
	}

	if tankLiters <= 0 {
		return 0, ErrNonPositiveTank
	}

	if litersAdded < 0 {
		return 0, ErrNegativeLiters
	}

	return clamp(levelPercent+(litersAdded/tankLiters)*percentScale, MinLevelPercent, MaxLevelPercent), nil
}

// ValidateLevel reports whether a fuel level is storable: finite and within
// [0,100]. A refuel-driven motor update whose resulting level fails this
// check must abort without touching the stored level.
func ValidateLevel(level float64) error {
	if !isFinite(level) {
		return ErrLevelNotFinite
	}

	if level < MinLevelPercent || level > MaxLevelPercent {
		return ErrLevelOutOfRange
	}

	return nil
}

// DeriveQuantity computes refuel liters from total cost and unit price
// (quantity = cost / costPerLiter). Used when the pump amount was not
// recorded directly. Same positivity preconditions as the calculator.
func DeriveQuantity(cost, costPerLiter float64) (float64, error) {
	if !isFinite(cost) || !isFinite(costPerLiter) {
		return 0, ErrNotFinite
	}

	if cost <= 0 {
		return 0, ErrNonPositiveCost
	}

	if costPerLiter <= 0 {
		return 0, ErrNonPositivePrice
	}

	return cost / costPerLiter, nil
}

// RemainingLiters converts a level percentage to liters left in the tank.
func RemainingLiters(tankLiters, levelPercent float64) float64 {
	return tankLiters * levelPercent / percentScale
}

// EstimatedRangeKm estimates how far the remaining fuel will go at the
// given consumption rate. Display-only — no validation beyond what the
// inputs already passed.
func EstimatedRangeKm(tankLiters, levelPercent, kmPerLiter float64) float64 {
	return RemainingLiters(tankLiters, levelPercent) * kmPerLiter
}

// clamp restricts v to the inclusive range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// isFinite reports whether f is neither NaN nor infinite.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
