package integration

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/rebalance-simulator/internal/chart"
	"github.com/iwvelando/rebalance-simulator/internal/config"
	"github.com/iwvelando/rebalance-simulator/internal/forecast"
	"github.com/iwvelando/rebalance-simulator/internal/optimizer"
	"github.com/iwvelando/rebalance-simulator/pkg/output"
	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	"go.uber.org/zap"
)

func loadTestConfig(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return conf
}

// TestMainIntegration runs the configuration exactly as the simulate command does.
func TestMainIntegration(t *testing.T) {
	logger := zap.NewNop()
	conf := loadTestConfig(t)

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	if results.Name != "Balanced growth" {
		t.Errorf("expected name Balanced growth, got %q", results.Name)
	}
	if results.Result.Len() != 20*12+1 {
		t.Fatalf("expected %d samples, got %d", 20*12+1, results.Result.Len())
	}
	if len(results.Dates) != results.Result.Len() || results.Dates[0] != "2025-01" || results.Dates[240] != "2045-01" {
		t.Errorf("unexpected calendar labels: first %v", results.Dates[:1])
	}

	// 40 half-yearly contributions on top of the principal
	wantContributed := 25000.0 + 40*1500
	if math.Abs(results.Metrics.TotalContributed-wantContributed) > 1e-6 {
		t.Errorf("expected %.2f contributed, got %.2f", wantContributed, results.Metrics.TotalContributed)
	}
	if results.Metrics.FinalValue <= wantContributed {
		t.Errorf("expected growth above contributions, got %.2f", results.Metrics.FinalValue)
	}

	// Contributions only grow and only at rebalance months
	for i := 1; i < results.Result.Len(); i++ {
		delta := results.Result.CumulativeContribution[i] - results.Result.CumulativeContribution[i-1]
		if i%6 == 0 {
			if delta != 1500 {
				t.Fatalf("month %d: expected contribution 1500, got %.2f", i, delta)
			}
		} else if delta != 0 {
			t.Fatalf("month %d: unexpected contribution %.2f", i, delta)
		}
	}
}

// TestOptimizerIntegration solves the configured target and re-runs the projection.
func TestOptimizerIntegration(t *testing.T) {
	logger := zap.NewNop()
	conf := loadTestConfig(t)

	runner, err := optimizer.NewRunner(logger, conf)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	optimized, err := runner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(optimized.Summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(optimized.Summaries))
	}
	summary := optimized.Summaries[0]
	if !summary.Converged || !summary.Reached() {
		t.Fatalf("expected the target to be reached, got %+v", summary)
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if results.Metrics.FinalValue < 250000 {
		t.Errorf("expected final value of at least 250000, got %.2f", results.Metrics.FinalValue)
	}

	if summary.Value <= 0 || summary.Value >= *conf.Optimizer.Max {
		t.Errorf("expected a contribution strictly inside the bounds, got %.2f", summary.Value)
	}
	if summary.Headroom < 0 {
		t.Errorf("expected non-negative headroom, got %.2f", summary.Headroom)
	}
}

// TestCSVOutputFormat checks the CSV layout against the yearly stride.
func TestCSVOutputFormat(t *testing.T) {
	results, err := forecast.GetForecast(zap.NewNop(), *loadTestConfig(t))
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	var buf bytes.Buffer
	output.CsvFormat(&buf, results, 12)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if lines[0] != `"month","years","date","contributed","total"` {
		t.Fatalf("unexpected CSV header: %s", lines[0])
	}
	if len(lines) != 1+21 {
		t.Fatalf("expected 21 yearly rows, got %d", len(lines)-1)
	}
	for _, line := range lines[1:] {
		if parts := strings.Split(line, ","); len(parts) != 5 {
			t.Errorf("CSV line should have 5 parts, got %d: %s", len(parts), line)
		}
	}
	if !strings.HasPrefix(lines[len(lines)-1], `"240","20.0000","2045-01"`) {
		t.Errorf("unexpected final row: %s", lines[len(lines)-1])
	}
}

// TestPrettyOutputFormat tests the pretty print output
func TestPrettyOutputFormat(t *testing.T) {
	results, err := forecast.GetForecast(zap.NewNop(), *loadTestConfig(t))
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	var buf bytes.Buffer
	output.PrettyFormat(&buf, results, 12)
	if !strings.Contains(buf.String(), "--- Results for Balanced growth ---") {
		t.Fatalf("expected result header, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "2045-01") {
		t.Errorf("expected the final date in pretty output")
	}
}

// TestChartProbeSweep moves the pointer across the whole plot and checks that the
// probe tracks samples in order and always picks the least overflowing placement.
func TestChartProbeSweep(t *testing.T) {
	results, err := forecast.GetForecast(zap.NewNop(), *loadTestConfig(t))
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	geometry, err := chart.Render(io.Discard, results.Series, chart.Options{Width: 800, Height: 480})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	plot, ok := geometry.PlotRect()
	if !ok {
		t.Fatal("expected geometry after render")
	}

	p := probe.NewProbe(results.Series, geometry, zap.NewNop())
	lastIndex := -1
	for px := plot.Left; px <= plot.Right; px += 3 {
		for _, py := range []float64{plot.Top + 1, (plot.Top + plot.Bottom) / 2, plot.Bottom - 1} {
			state := p.Move(geometry.Pointer(px, py))
			if !state.Visible {
				t.Fatalf("pointer (%.1f, %.1f) inside the plot hid the overlay", px, py)
			}
			if state.Index < lastIndex {
				t.Fatalf("index went backwards from %d to %d at x=%.1f", lastIndex, state.Index, px)
			}
			lastIndex = state.Index

			anchor, _ := geometry.DataToPixel(state.Point)
			best := math.Inf(1)
			for _, candidate := range probe.Candidates {
				box, _ := geometry.OverlayRect(anchor, candidate, state.Label)
				best = math.Min(best, probe.Overflow(box, plot))
			}
			if got := probe.Overflow(state.Box, plot); got > best+1e-9 {
				t.Fatalf("placement %+v overflows by %.2f, best candidate overflows by %.2f", state.Placement, got, best)
			}
		}
	}

	if lastIndex != results.Series.Len()-1 {
		t.Errorf("expected the sweep to end on the last sample, got %d", lastIndex)
	}

	if state := p.Move(geometry.Pointer(plot.Right+20, plot.Top+1)); state.Visible {
		t.Errorf("expected the overlay to hide outside the plot, got %+v", state)
	}
}

// TestConfigurationValidation tests validation of different configuration scenarios
func TestConfigurationValidation(t *testing.T) {
	tests := []struct {
		name         string
		setupConfig  func() *config.Configuration
		expectError  bool
		wantWarnings bool
	}{
		{
			name:        "Valid default configuration",
			setupConfig: config.Default,
		},
		{
			name: "Weights below 100%",
			setupConfig: func() *config.Configuration {
				conf := config.Default()
				conf.Simulation.Assets[1].TargetWeightPercent = 10
				return conf
			},
			expectError: true,
		},
		{
			name: "Negative contribution is clamped",
			setupConfig: func() *config.Configuration {
				conf := config.Default()
				conf.Simulation.Contribution = -100
				return conf
			},
			wantWarnings: true,
		},
	}

	logger := zap.NewNop()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := tt.setupConfig()

			warnings := conf.ValidateConfiguration()
			if tt.wantWarnings && len(warnings) == 0 {
				t.Errorf("expected warnings")
			}

			results, err := forecast.GetForecast(logger, *conf)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error from GetForecast")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error from GetForecast: %v", err)
			}
			if results.Metrics.TotalContributed != conf.Simulation.Principal {
				t.Errorf("expected no contributions, got %.2f", results.Metrics.TotalContributed)
			}
		})
	}
}
