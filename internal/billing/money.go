package billing

import (
	"math"
)

// RoundMoney rounds to the nearest whole currency unit, half away from zero
// for positive values (round-half-up). Every monetary figure in the engine
// goes through this one function so preview and generation can never diverge.
func RoundMoney(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// ItemAmount is the gross value of a single lot: quantity * rate, rounded.
// Groups may carry mixed rates, so totals are always sums of per-item
// amounts, never total quantity times a single rate.
func ItemAmount(quantity, rate float64) int64 {
	return RoundMoney(quantity * rate)
}

// CommissionAmount is the marketplace cut of a gross amount at the given
// percentage rate.
func CommissionAmount(gross int64, ratePercent float64) int64 {
	return RoundMoney(float64(gross) * ratePercent / 100)
}
