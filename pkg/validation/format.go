// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/rebalance-simulator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatMarkdown:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatMarkdown, format)
}

// ValidateChartFormat checks if the chart format is one of the supported encodings.
func ValidateChartFormat(format string) error {
	if format != constants.ChartFormatPNG && format != constants.ChartFormatSVG {
		return fmt.Errorf("expected chart format of %s or %s, got %s",
			constants.ChartFormatPNG, constants.ChartFormatSVG, format)
	}
	return nil
}
