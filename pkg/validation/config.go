// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"time"

	"github.com/iwvelando/rebalance-simulator/pkg/constants"
)

// AssetConfig is the part of an asset that is checked for warnings.
type AssetConfig struct {
	Name                string
	AnnualReturnPercent float64
	TargetWeightPercent float64
}

// SimulationValidator checks simulation settings that are accepted but unusual.
// Hard failures such as weights that do not sum to 100% are reported by the
// simulator itself.
type SimulationValidator struct {
	Principal       float64
	Years           int
	RebalanceMonths int
	Contribution    float64
	StartDate       string
	Assets          []AssetConfig
}

// ValidateHorizon warns when the projection horizon is outside the form's range.
func ValidateHorizon(years int) string {
	if years < constants.MinYears || years > constants.MaxYears {
		return fmt.Sprintf("Projection horizon of %d years is outside %d..%d",
			years, constants.MinYears, constants.MaxYears)
	}
	return ""
}

// ValidateRebalancePeriod warns when the rebalance period is outside the form's range.
func ValidateRebalancePeriod(months int) string {
	if months < constants.MinRebalanceMonths || months > constants.MaxRebalanceMonths {
		return fmt.Sprintf("Rebalance period of %d months is outside %d..%d",
			months, constants.MinRebalanceMonths, constants.MaxRebalanceMonths)
	}
	return ""
}

// ValidateStartDate checks an optional projection start date.
func ValidateStartDate(startDate string) error {
	if startDate == "" {
		return nil
	}
	if _, err := time.Parse(constants.DateTimeLayout, startDate); err != nil {
		return fmt.Errorf("start date %q must use the %s layout: %w", startDate, constants.DateTimeLayout, err)
	}
	return nil
}

// ValidateAll validates the simulation settings and returns warnings.
func (sv *SimulationValidator) ValidateAll() []string {
	var warnings []string

	if w := ValidateHorizon(sv.Years); w != "" {
		warnings = append(warnings, w)
	}
	if w := ValidateRebalancePeriod(sv.RebalanceMonths); w != "" {
		warnings = append(warnings, w)
	}
	if sv.Principal < 0 {
		warnings = append(warnings, fmt.Sprintf("Principal %.2f is negative", sv.Principal))
	}
	if sv.Contribution < 0 {
		warnings = append(warnings, fmt.Sprintf("Contribution %.2f is negative and will be treated as 0", sv.Contribution))
	}
	if err := ValidateStartDate(sv.StartDate); err != nil {
		warnings = append(warnings, err.Error())
	}

	seen := make(map[string]bool)
	for _, asset := range sv.Assets {
		if asset.TargetWeightPercent == 0 {
			warnings = append(warnings, fmt.Sprintf("Asset '%s' has a zero target weight", asset.Name))
		}
		if asset.TargetWeightPercent < 0 {
			warnings = append(warnings, fmt.Sprintf("Asset '%s' has a negative target weight", asset.Name))
		}
		if asset.Name != "" && seen[asset.Name] {
			warnings = append(warnings, fmt.Sprintf("Asset '%s' is listed more than once", asset.Name))
		}
		seen[asset.Name] = true
	}

	return warnings
}
