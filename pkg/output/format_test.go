package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/rebalance-simulator/internal/config"
	"github.com/iwvelando/rebalance-simulator/internal/forecast"
	"github.com/iwvelando/rebalance-simulator/pkg/optimization"
	"go.uber.org/zap"
)

func testForecast(t *testing.T) forecast.Forecast {
	t.Helper()
	conf := config.Default()
	conf.Simulation.Name = "Test Projection"
	conf.Simulation.Principal = 100000
	conf.Simulation.Years = 2
	conf.Simulation.Contribution = 1000
	conf.Simulation.StartDate = "2025-01"

	fc, err := forecast.GetForecast(zap.NewNop(), *conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	return fc
}

func TestPrettyFormat(t *testing.T) {
	fc := testForecast(t)
	fc.Metrics.Optimizations = []optimization.Summary{{
		Field:           "contribution",
		OriginalDisplay: "$0.00",
		ValueDisplay:    "$250.00",
		Target:          150000,
		Achieved:        150001,
		Converged:       true,
		Notes:           []string{"Test note"},
	}}

	var buf bytes.Buffer
	PrettyFormat(&buf, fc, 12)
	output := buf.String()

	for _, want := range []string{
		"--- Results for Test Projection ---",
		"Date    | Contributed      | Total Asset",
		"2025-01 | $100,000.00 | $100,000.00",
		"2026-01",
		"2027-01",
		"Total contributed: $102,000.00",
		"Optimized contribution: $0.00 -> $250.00",
		"note: Test note",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "2025-06") {
		t.Errorf("PrettyFormat should only print yearly rows")
	}
}

func TestCsvString(t *testing.T) {
	fc := testForecast(t)
	csv := CsvString(fc, 12)
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d:\n%s", len(lines), csv)
	}
	if lines[0] != `"month","years","date","contributed","total"` {
		t.Errorf("unexpected header %s", lines[0])
	}
	if lines[1] != `"0","0.0000","2025-01","100000.00","100000.00"` {
		t.Errorf("unexpected first row %s", lines[1])
	}
	if !strings.HasPrefix(lines[3], `"24","2.0000","2027-01","102000.00",`) {
		t.Errorf("unexpected last row %s", lines[3])
	}

	var buf bytes.Buffer
	CsvFormat(&buf, fc, 12)
	if buf.String() != csv {
		t.Error("CsvFormat should write CsvString")
	}
}

func TestMarkdownString(t *testing.T) {
	md := MarkdownString(testForecast(t), 12)
	for _, want := range []string{
		"# Test Projection",
		"| Stock | 7.00% | 60.00% |",
		"| Bond | 3.00% | 40.00% |",
		"## Summary",
		"- Total contributed: $102,000.00",
		"| 2025-01 | $100,000.00 | $100,000.00 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := MarkdownFormat(&buf, testForecast(t), 12, "notty"); err != nil {
		t.Fatalf("MarkdownFormat() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Test Projection") {
		t.Errorf("rendered markdown missing title:\n%s", buf.String())
	}
}
