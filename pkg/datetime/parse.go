// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/rebalance-simulator/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthLabels maps month offsets from start to calendar labels in DateTimeLayout.
func MonthLabels(start string, months []int) ([]string, error) {
	startT, err := time.Parse(DateTimeLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = startT.AddDate(0, m, 0).Format(DateTimeLayout)
	}
	return labels, nil
}

// YearLabel formats a fractional year offset for display.
func YearLabel(years float64) string {
	return fmt.Sprintf("%.2f", years)
}
