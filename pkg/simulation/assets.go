package simulation

import (
	"fmt"
	"strings"
)

// Asset describes one investment method: its fixed annual return and its target
// share of the portfolio, both in percent.
type Asset struct {
	Name                string  `json:"name" yaml:"name" mapstructure:"name"`
	AnnualReturnPercent float64 `json:"annualReturnPercent" yaml:"annualReturnPercent" mapstructure:"annualReturnPercent"`
	TargetWeightPercent float64 `json:"targetWeightPercent" yaml:"targetWeightPercent" mapstructure:"targetWeightPercent"`
}

// DefaultAssets returns the starting asset rows of a fresh form.
func DefaultAssets() []Asset {
	return []Asset{
		{Name: "Stock", AnnualReturnPercent: 7, TargetWeightPercent: 60},
		{Name: "Bond", AnnualReturnPercent: 3, TargetWeightPercent: 40},
	}
}

// NewAsset returns the row added by "Add Method".
func NewAsset() Asset {
	return Asset{Name: "New", AnnualReturnPercent: 5, TargetWeightPercent: 0}
}

// NormalizeAssets returns a copy of assets with surrounding whitespace trimmed from
// names and blank names replaced by "Method N", N being the 1-based row.
func NormalizeAssets(assets []Asset) []Asset {
	normalized := make([]Asset, len(assets))
	for i, asset := range assets {
		asset.Name = strings.TrimSpace(asset.Name)
		if asset.Name == "" {
			asset.Name = fmt.Sprintf("Method %d", i+1)
		}
		normalized[i] = asset
	}
	return normalized
}

// TotalWeight returns the sum of the target weights.
func TotalWeight(assets []Asset) float64 {
	total := 0.0
	for _, asset := range assets {
		total += asset.TargetWeightPercent
	}
	return total
}
