// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/rebalance-simulator/pkg/constants"
)

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// PercentToDecimal converts a percentage such as 7.5 into 0.075.
func PercentToDecimal(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * PercentToDecimal(percentage)
}

// MonthlyRate converts an annual return in percent into the equivalent monthly
// compounding rate, so that twelve months at the returned rate reproduce the
// annual return exactly.
func MonthlyRate(annualPercent float64) float64 {
	return math.Pow(1+PercentToDecimal(annualPercent), 1.0/constants.MonthsPerYear) - 1
}

// AnnualizedReturn returns the constant annual return in percent that grows start
// into end over the given number of years. Zero is returned when the inputs do not
// describe a growth path.
func AnnualizedReturn(start, end, years float64) float64 {
	if start <= 0 || end < 0 || years <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/years) - 1) * constants.PercentageMultiplier
}

// ClampNonNegative returns val, or zero when val is negative.
func ClampNonNegative(val float64) float64 {
	return math.Max(0, val)
}
