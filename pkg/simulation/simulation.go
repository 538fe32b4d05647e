// Package simulation projects the growth of a multi-asset portfolio that is
// periodically rebalanced back to fixed target weights, optionally adding a
// contribution at every rebalance.
package simulation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"github.com/iwvelando/rebalance-simulator/pkg/mathutil"
)

var (
	// ErrInvalidWeights reports target weights that are non-positive in sum or do
	// not add up to 100 percent.
	ErrInvalidWeights = errors.New("target weights must sum to 100%")

	// ErrInvalidReturn reports an asset whose annual return is below -100 percent.
	ErrInvalidReturn = errors.New("annual return must be at least -100%")
)

// Input holds the validated numeric inputs of one simulation run.
type Input struct {
	Principal                float64
	Years                    int
	RebalanceMonths          int
	ContributionPerRebalance float64
	Assets                   []Asset
}

// Result holds the aligned monthly series of a simulation run. Index 0 is the
// initial state.
type Result struct {
	MonthIndex             []int
	TotalValue             []float64
	CumulativeContribution []float64
}

// Len returns the number of samples in the result.
func (r Result) Len() int {
	return len(r.MonthIndex)
}

// Final returns the last sample of the result.
func (r Result) Final() (month int, total, contributed float64) {
	n := r.Len()
	if n == 0 {
		return 0, 0, 0
	}
	return r.MonthIndex[n-1], r.TotalValue[n-1], r.CumulativeContribution[n-1]
}

// Years returns the x-axis of the result in years.
func (r Result) Years() []float64 {
	years := make([]float64, len(r.MonthIndex))
	for i, month := range r.MonthIndex {
		years[i] = float64(month) / constants.MonthsPerYear
	}
	return years
}

// Simulate runs the monthly compounding model described by in.
//
// Every holding grows by its own monthly rate; when the month is a multiple of
// RebalanceMonths the non-negative contribution is added and the total is
// redistributed by target weight. A non-positive RebalanceMonths never
// rebalances and never contributes. A non-positive horizon yields the single
// initial sample.
func Simulate(in Input) (Result, error) {
	if in.Years <= 0 {
		return Result{
			MonthIndex:             []int{0},
			TotalValue:             []float64{in.Principal},
			CumulativeContribution: []float64{in.Principal},
		}, nil
	}

	if err := Validate(in.Assets); err != nil {
		return Result{}, err
	}

	months := in.Years * constants.MonthsPerYear
	holdings := make([]float64, len(in.Assets))
	rates := make([]float64, len(in.Assets))
	for i, asset := range in.Assets {
		holdings[i] = mathutil.ApplyPercentage(in.Principal, asset.TargetWeightPercent)
		rates[i] = mathutil.MonthlyRate(asset.AnnualReturnPercent)
	}

	contribution := mathutil.ClampNonNegative(in.ContributionPerRebalance)
	contributed := in.Principal

	result := Result{
		MonthIndex:             make([]int, 0, months+1),
		TotalValue:             make([]float64, 0, months+1),
		CumulativeContribution: make([]float64, 0, months+1),
	}
	result.append(0, in.Principal, contributed)

	for month := 1; month <= months; month++ {
		for i := range holdings {
			holdings[i] *= 1 + rates[i]
		}

		if in.RebalanceMonths > 0 && month%in.RebalanceMonths == 0 {
			total := sum(holdings) + contribution
			contributed += contribution
			for i, asset := range in.Assets {
				holdings[i] = mathutil.ApplyPercentage(total, asset.TargetWeightPercent)
			}
		}

		result.append(month, sum(holdings), contributed)
	}

	return result, nil
}

// Validate checks the asset list against the domain rules applied by Simulate.
// The weight sum is checked before individual returns.
func Validate(assets []Asset) error {
	weights := TotalWeight(assets)
	if weights <= 0 {
		return fmt.Errorf("weights sum to %.2f: %w", weights, ErrInvalidWeights)
	}
	if !mathutil.WithinTolerance(weights, constants.TotalWeightPercent, constants.WeightTolerance) {
		return fmt.Errorf("weights sum to %.2f: %w", weights, ErrInvalidWeights)
	}

	for _, asset := range assets {
		if asset.AnnualReturnPercent < constants.MinAnnualReturnPercent {
			return fmt.Errorf("asset %q returns %.2f%%: %w", asset.Name, asset.AnnualReturnPercent, ErrInvalidReturn)
		}
	}
	return nil
}

func (r *Result) append(month int, total, contributed float64) {
	r.MonthIndex = append(r.MonthIndex, month)
	r.TotalValue = append(r.TotalValue, total)
	r.CumulativeContribution = append(r.CumulativeContribution, contributed)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
