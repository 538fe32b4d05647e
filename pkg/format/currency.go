// Package format renders amounts for labels, tables and reports.
package format

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Tokens shown in place of amounts that are not finite.
const (
	PositiveInfinity = "+Inf"
	NegativeInfinity = "-Inf"
	NotANumber       = "NaN"
)

// Currency returns the amount in the default currency with its symbol and
// thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	return render(amount, true)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return render(amount, false)
}

func render(amount float64, symbol bool) string {
	switch {
	case math.IsNaN(amount):
		return NotANumber
	case math.IsInf(amount, 1):
		return PositiveInfinity
	case math.IsInf(amount, -1):
		return NegativeInfinity
	}

	cur := money.GetCurrency(constants.DefaultCurrency)
	factor := math.Pow10(cur.Fraction)
	grapheme := ""
	if symbol {
		grapheme = cur.Grapheme
	}

	// Minor units must fit in an int64 for go-money.
	if math.Abs(amount)*factor >= math.MaxInt64 {
		return large(amount, cur, grapheme)
	}

	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	m := money.New(minor.IntPart(), constants.DefaultCurrency)
	if symbol {
		return m.Display()
	}
	plain := money.NewFormatter(cur.Fraction, cur.Decimal, cur.Thousand, "", "1").Format(m.Amount())
	if m.IsNegative() && !strings.HasPrefix(plain, "-") {
		return "-" + plain
	}
	return plain
}

// large formats amounts beyond the int64 minor-unit range from their decimal
// representation, using the currency's separators and template.
func large(amount float64, cur *money.Currency, grapheme string) string {
	d := decimal.NewFromFloat(amount)
	digits := d.Abs().StringFixed(int32(cur.Fraction))

	integer, fraction := digits, ""
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		integer, fraction = digits[:i], digits[i+1:]
	}

	var b strings.Builder
	for i, r := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteString(cur.Thousand)
		}
		b.WriteRune(r)
	}
	if fraction != "" {
		b.WriteString(cur.Decimal)
		b.WriteString(fraction)
	}

	formatted := strings.NewReplacer("1", b.String(), "$", grapheme).Replace(cur.Template)
	if d.IsNegative() {
		return "-" + formatted
	}
	return formatted
}
