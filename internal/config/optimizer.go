package config

import (
	"fmt"
	"strings"
)

const (
	OptimizerFieldContribution = "contribution"
	OptimizerFieldPrincipal    = "principal"

	OptimizerKindTargetValue = "target_value"

	defaultToleranceAmount = 0.01
	defaultMaxIterations   = 60
)

// OptimizerConfig defines a single-parameter search for the smallest amount
// that lets the projection reach a target final value.
type OptimizerConfig struct {
	Field         string   `yaml:"field,omitempty" mapstructure:"field"`
	Kind          string   `yaml:"kind,omitempty" mapstructure:"kind"`
	TargetValue   float64  `yaml:"targetValue" mapstructure:"targetValue"`
	Min           *float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldContribution
	}
	switch strings.ToLower(trimmed) {
	case "contribution", "contributionperrebalance", "contribution_per_rebalance":
		return OptimizerFieldContribution
	case "principal", "initial", "initialprincipal", "initial_principal":
		return OptimizerFieldPrincipal
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)

	o.Kind = strings.ToLower(strings.TrimSpace(o.Kind))
	if o.Kind == "" {
		o.Kind = OptimizerKindTargetValue
	}

	if o.Min == nil {
		lower := 0.0
		o.Min = &lower
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultToleranceAmount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	switch o.Field {
	case OptimizerFieldContribution, OptimizerFieldPrincipal:
	default:
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}
	if o.Kind != OptimizerKindTargetValue {
		return fmt.Errorf("optimizer kind %q is not supported", o.Kind)
	}
	if o.TargetValue <= 0 {
		return fmt.Errorf("optimizer target value %.2f must be positive", o.TargetValue)
	}
	if *o.Min < 0 {
		return fmt.Errorf("optimizer minimum %.2f must not be negative", *o.Min)
	}
	if o.Max == nil {
		return fmt.Errorf("optimizer requires a maximum bound")
	}
	if *o.Min >= *o.Max {
		return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", *o.Min, *o.Max)
	}

	return nil
}
