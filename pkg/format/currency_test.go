package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "$0.00"},
		{"Small amount", 12.5, "$12.50"},
		{"Thousands", 1234.56, "$1,234.56"},
		{"Millions", 1234567.891, "$1,234,567.89"},
		{"Negative", -1234.56, "-$1,234.56"},
		{"Rounds half cent", 10.005, "$10.01"},
		{"Beyond int64 cents", 1e17, "$100,000,000,000,000,000.00"},
		{"Far beyond int64 cents", 1e20, "$100,000,000,000,000,000,000.00"},
		{"Large negative", -1e18, "-$1,000,000,000,000,000,000.00"},
		{"Positive infinity", math.Inf(1), PositiveInfinity},
		{"Negative infinity", math.Inf(-1), NegativeInfinity},
		{"NaN", math.NaN(), NotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "0.00"},
		{1234.56, "1,234.56"},
		{-1234.56, "-1,234.56"},
		{999.999, "1,000.00"},
		{1e17, "100,000,000,000,000,000.00"},
		{-1e20, "-100,000,000,000,000,000,000.00"},
		{math.Inf(1), PositiveInfinity},
	}

	for _, tt := range tests {
		if got := NumericCurrency(tt.amount); got != tt.expected {
			t.Errorf("NumericCurrency(%v) = %q, expected %q", tt.amount, got, tt.expected)
		}
	}
}
