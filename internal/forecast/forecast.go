// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"github.com/iwvelando/rebalance-simulator/internal/config"
	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"github.com/iwvelando/rebalance-simulator/pkg/datetime"
	"github.com/iwvelando/rebalance-simulator/pkg/mathutil"
	"github.com/iwvelando/rebalance-simulator/pkg/optimization"
	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
	"go.uber.org/zap"
)

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	Name   string
	Input  simulation.Input
	Result simulation.Result
	Series *probe.ChartSeries
	// Dates holds a calendar label per sample when a start date is configured.
	Dates   []string
	Metrics Metrics
}

// Metrics summarises a forecast.
type Metrics struct {
	FinalValue       float64                `json:"finalValue"`
	TotalContributed float64                `json:"totalContributed"`
	Growth           float64                `json:"growth"`
	GrowthMultiple   float64                `json:"growthMultiple"`
	AnnualizedReturn float64                `json:"annualizedReturn"`
	Optimizations    []optimization.Summary `json:"optimizations,omitempty"`
}

// Row is one sample of a forecast prepared for tabular output.
type Row struct {
	Month       int
	Years       float64
	Date        string
	Total       float64
	Contributed float64
}

// GetForecast runs the simulation described by the configuration.
func GetForecast(logger *zap.Logger, conf config.Configuration) (Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	in := conf.ToInput()
	result, err := simulation.Simulate(in)
	if err != nil {
		logger.Debug("simulation rejected its input",
			zap.String("op", "forecast.GetForecast"),
			zap.Error(err),
		)
		return Forecast{}, fmt.Errorf("failed to simulate %s: %w", conf.Simulation.Name, err)
	}

	fc := Forecast{
		Name:    conf.Simulation.Name,
		Input:   in,
		Result:  result,
		Series:  probe.NewChartSeries(result),
		Metrics: ComputeMetrics(result),
	}

	if conf.Simulation.StartDate != "" {
		dates, err := datetime.MonthLabels(conf.Simulation.StartDate, result.MonthIndex)
		if err != nil {
			return Forecast{}, err
		}
		fc.Dates = dates
	}

	logger.Debug("forecast computed",
		zap.String("op", "forecast.GetForecast"),
		zap.String("name", fc.Name),
		zap.Int("samples", result.Len()),
		zap.Float64("final", fc.Metrics.FinalValue),
	)

	return fc, nil
}

// ComputeMetrics derives the summary metrics of a simulation result.
func ComputeMetrics(result simulation.Result) Metrics {
	month, final, contributed := result.Final()
	m := Metrics{
		FinalValue:       final,
		TotalContributed: contributed,
		Growth:           final - contributed,
	}
	if contributed > 0 {
		m.GrowthMultiple = final / contributed
	}
	m.AnnualizedReturn = mathutil.AnnualizedReturn(contributed, final, float64(month)/constants.MonthsPerYear)
	return m
}

// Rows returns the samples of the forecast every stride months plus the final
// sample. A non-positive stride returns every sample.
func (f Forecast) Rows(stride int) []Row {
	n := f.Result.Len()
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		month := f.Result.MonthIndex[i]
		if stride > 0 && month%stride != 0 && i != n-1 {
			continue
		}
		row := Row{
			Month:       month,
			Years:       float64(month) / constants.MonthsPerYear,
			Total:       f.Result.TotalValue[i],
			Contributed: f.Result.CumulativeContribution[i],
		}
		if i < len(f.Dates) {
			row.Date = f.Dates[i]
		}
		rows = append(rows, row)
	}
	return rows
}

// Label returns the display label of a row: its calendar date when known and
// its year offset otherwise.
func (r Row) Label() string {
	if r.Date != "" {
		return r.Date
	}
	return datetime.YearLabel(r.Years)
}
