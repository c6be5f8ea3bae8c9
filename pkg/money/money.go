package money

import "math"

// Round2 rounds an amount to 2 decimal places, half away from zero.
// Monetary fields in this service are non-negative decimals with
// 2-unit precision.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Percent returns pct percent of amount, rounded to 2 decimal places.
func Percent(amount, pct float64) float64 {
	return Round2(amount * pct / 100)
}
