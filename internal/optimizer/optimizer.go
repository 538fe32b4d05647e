package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/rebalance-simulator/internal/config"
	"github.com/iwvelando/rebalance-simulator/internal/forecast"
	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	formatutil "github.com/iwvelando/rebalance-simulator/pkg/format"
	"github.com/iwvelando/rebalance-simulator/pkg/optimization"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
	"go.uber.org/zap"
)

// Runner searches for the smallest amount of the configured field that lets the
// projection reach the optimizer's target value.
type Runner struct {
	logger *zap.Logger
	conf   *config.Configuration
}

type evaluation struct {
	value    float64
	achieved float64
	target   float64
}

func (e evaluation) feasible() bool {
	return e.achieved >= e.target
}

func (e evaluation) headroom() float64 {
	return e.achieved - e.target
}

// Result summarizes optimizer adjustments.
type Result struct {
	Summaries []optimization.Summary
}

// Apply attaches optimizer summaries to the provided forecast.
func (r Result) Apply(fc *forecast.Forecast) {
	if fc == nil || len(r.Summaries) == 0 {
		return
	}
	fc.Metrics.Optimizations = append(fc.Metrics.Optimizations, r.Summaries...)
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, conf: conf}, nil
}

// Run executes the optimizer directive, if any, and stores the optimized value
// back into the configuration.
func (r *Runner) Run() (*Result, error) {
	cfg := r.conf.Optimizer
	if cfg == nil {
		return &Result{}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}

	sim := r.conf.Simulation
	if sim.Years <= 0 {
		return nil, fmt.Errorf("optimizer requires a positive projection horizon, got %d years", sim.Years)
	}
	if cfg.Field == config.OptimizerFieldContribution && sim.RebalanceMonths <= 0 {
		return nil, fmt.Errorf("optimizer field %s requires a positive rebalance period", cfg.Field)
	}
	if err := simulation.Validate(sim.Assets); err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}

	summary, err := r.optimize(cfg)
	if err != nil {
		return nil, err
	}
	r.setField(cfg.Field, summary.Value)

	r.logger.Info("optimizer adjusted simulation field",
		zap.String("op", "optimizer.Run"),
		zap.String("field", summary.Field),
		zap.Float64("original", summary.Original),
		zap.Float64("optimized", summary.Value),
		zap.Float64("target", summary.Target),
		zap.Float64("achieved", summary.Achieved),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)

	return &Result{Summaries: []optimization.Summary{summary}}, nil
}

func (r *Runner) optimize(cfg *config.OptimizerConfig) (optimization.Summary, error) {
	original := r.field(cfg.Field)
	summary := optimization.Summary{
		Scope:           "simulation",
		Field:           cfg.Field,
		Original:        original,
		OriginalDisplay: formatutil.Currency(original),
		Target:          cfg.TargetValue,
	}

	lower, err := r.evaluate(cfg, *cfg.Min)
	if err != nil {
		return summary, err
	}
	if lower.feasible() {
		return finish(summary, lower, 0, true,
			fmt.Sprintf("target %s is already reached at the minimum bound", formatutil.Currency(cfg.TargetValue))), nil
	}

	upper, err := r.evaluate(cfg, *cfg.Max)
	if err != nil {
		return summary, err
	}
	if !upper.feasible() {
		return finish(summary, upper, 0, false,
			fmt.Sprintf("unable to reach target %s within bounds %s to %s",
				formatutil.Currency(cfg.TargetValue), formatutil.Currency(*cfg.Min), formatutil.Currency(*cfg.Max))), nil
	}

	// The final value is linear in both fields with non-negative coefficients, so
	// feasibility is monotone and bisection keeps upper feasible.
	iterations := 0
	for iterations < cfg.MaxIterations && upper.value-lower.value > cfg.Tolerance {
		iterations++
		mid, err := r.evaluate(cfg, (lower.value+upper.value)/2)
		if err != nil {
			return summary, err
		}
		if mid.feasible() {
			upper = mid
		} else {
			lower = mid
		}
	}
	converged := upper.value-lower.value <= cfg.Tolerance

	rounded := math.Min(math.Ceil(upper.value*constants.DecimalPrecision)/constants.DecimalPrecision, *cfg.Max)
	if rounded != upper.value {
		snapped, err := r.evaluate(cfg, rounded)
		if err != nil {
			return summary, err
		}
		if snapped.feasible() {
			upper = snapped
		}
	}

	return finish(summary, upper, iterations, converged, ""), nil
}

func finish(summary optimization.Summary, eval evaluation, iterations int, converged bool, note string) optimization.Summary {
	summary.Value = eval.value
	summary.ValueDisplay = formatutil.Currency(eval.value)
	summary.Achieved = eval.achieved
	summary.Headroom = eval.headroom()
	summary.Iterations = iterations
	summary.Converged = converged
	if note != "" {
		summary.Notes = append(summary.Notes, note)
	}
	return summary
}

func (r *Runner) evaluate(cfg *config.OptimizerConfig, value float64) (evaluation, error) {
	in := r.conf.ToInput()
	switch cfg.Field {
	case config.OptimizerFieldContribution:
		in.ContributionPerRebalance = value
	case config.OptimizerFieldPrincipal:
		in.Principal = value
	default:
		return evaluation{}, fmt.Errorf("optimizer field %q is not supported", cfg.Field)
	}

	result, err := simulation.Simulate(in)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer evaluation at %.2f failed: %w", value, err)
	}
	_, final, _ := result.Final()

	r.logger.Debug("optimizer evaluated candidate",
		zap.String("op", "optimizer.evaluate"),
		zap.String("field", cfg.Field),
		zap.Float64("value", value),
		zap.Float64("final", final),
	)
	return evaluation{value: value, achieved: final, target: cfg.TargetValue}, nil
}

func (r *Runner) field(field string) float64 {
	if field == config.OptimizerFieldPrincipal {
		return r.conf.Simulation.Principal
	}
	return r.conf.Simulation.Contribution
}

func (r *Runner) setField(field string, value float64) {
	if field == config.OptimizerFieldPrincipal {
		r.conf.Simulation.Principal = value
		return
	}
	r.conf.Simulation.Contribution = value
}
