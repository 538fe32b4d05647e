package probe_test

import (
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
	"github.com/iwvelando/rebalance-simulator/pkg/testutil"
	"go.uber.org/zap"
)

func TestNearest(t *testing.T) {
	xs := []float64{0, 1, 2}

	tests := []struct {
		name     string
		x        float64
		expected int
	}{
		{"Closer to middle sample", 1.4, 1},
		{"Tie resolves to lower index", 1.5, 1},
		{"Tie between first two", 0.5, 0},
		{"Exact match", 2, 2},
		{"Left of the series", -3, 0},
		{"Right of the series", 42, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := probe.Nearest(xs, tt.x); got != tt.expected {
				t.Errorf("Nearest(%v, %v) = %d, expected %d", xs, tt.x, got, tt.expected)
			}
		})
	}

	if got := probe.Nearest(nil, 1); got != -1 {
		t.Errorf("Nearest(nil) = %d, expected -1", got)
	}
}

func TestLocateHidden(t *testing.T) {
	series := &probe.ChartSeries{X: []float64{0, 1, 2}, Total: []float64{100, 110, 121}, Contributed: []float64{100, 100, 100}}
	g := testutil.PixelGeometry(probe.Rect{Right: 400, Bottom: 300}, 80, 40)
	visible := probe.Locate(probe.Clear(), probe.Pointer{X: 1, Defined: true, InPlot: true}, series, g)
	if !visible.Visible {
		t.Fatal("expected a visible overlay for an in-plot pointer")
	}

	tests := []struct {
		name    string
		pointer probe.Pointer
		series  *probe.ChartSeries
	}{
		{"Pointer outside the plot", probe.Pointer{X: 1, Defined: true, InPlot: false}, series},
		{"Undefined x", probe.Pointer{X: 1, Defined: false, InPlot: true}, series},
		{"No series", probe.Pointer{X: 1, Defined: true, InPlot: true}, nil},
		{"Empty series", probe.Pointer{X: 1, Defined: true, InPlot: true}, &probe.ChartSeries{}},
		{"Positive infinite x", probe.Pointer{X: math.Inf(1), Defined: true, InPlot: true}, series},
		{"Negative infinite x", probe.Pointer{X: math.Inf(-1), Defined: true, InPlot: true}, series},
		{"NaN x", probe.Pointer{X: math.NaN(), Defined: true, InPlot: true}, series},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := probe.Locate(visible, tt.pointer, tt.series, g)
			if state.Visible {
				t.Fatalf("expected hidden overlay, got %+v", state)
			}
			if state.Index != -1 {
				t.Errorf("expected index -1, got %d", state.Index)
			}
			if state.Placement != visible.Placement {
				t.Errorf("hidden overlay lost its placement: %+v", state.Placement)
			}
		})
	}
}

func TestLocateVisible(t *testing.T) {
	result, err := simulation.Simulate(simulation.Input{
		Principal:                1000,
		Years:                    2,
		RebalanceMonths:          12,
		ContributionPerRebalance: 100,
		Assets:                   testutil.SingleAsset(0),
	})
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	series := probe.NewChartSeries(result)

	g := testutil.FixedGeometry{
		Plot:      probe.Rect{Left: 40, Top: 20, Right: 440, Bottom: 320},
		XMin:      0,
		XMax:      2,
		YMin:      0,
		YMax:      1500,
		BoxWidth:  90,
		BoxHeight: 48,
		Ready:     true,
	}

	state := probe.Locate(probe.Clear(), probe.Pointer{X: 1.02, Defined: true, InPlot: true}, series, g)
	if !state.Visible {
		t.Fatal("expected visible overlay")
	}
	if state.Index != 12 {
		t.Fatalf("expected index 12, got %d", state.Index)
	}
	if state.Point.X != 1 || state.Point.Y != 1100 {
		t.Errorf("unexpected anchor %+v", state.Point)
	}
	if !state.Placed {
		t.Error("expected the overlay box to be measured")
	}
	for _, want := range []string{"Year: 1.00", "Contributed: $1,100.00", "Total: $1,100.00"} {
		if !strings.Contains(state.Label, want) {
			t.Errorf("label %q missing %q", state.Label, want)
		}
	}
	if state.Placement != probe.Candidates[0] {
		t.Errorf("expected up-right placement in open space, got %+v", state.Placement)
	}
}

func TestLocateDivergedSeries(t *testing.T) {
	result, err := simulation.Simulate(simulation.Input{
		Principal:       5000,
		Years:           100,
		RebalanceMonths: 12,
		Assets:          testutil.SingleAsset(1e6),
	})
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	series := probe.NewChartSeries(result)
	last := series.Len() - 1
	if !math.IsInf(series.Total[last], 1) {
		t.Fatalf("expected the projection to diverge, final total %v", series.Total[last])
	}

	g := testutil.FixedGeometry{
		Plot:      probe.Rect{Left: 40, Top: 20, Right: 440, Bottom: 320},
		XMax:      100,
		YMax:      1e300,
		BoxWidth:  90,
		BoxHeight: 48,
		Ready:     true,
	}
	prev := probe.Clear()
	prev.Placement = probe.Candidates[2]

	state := probe.Locate(prev, probe.Pointer{X: 100, Defined: true, InPlot: true}, series, g)
	if !state.Visible || state.Index != last {
		t.Fatalf("expected visible overlay at index %d, got %+v", last, state)
	}
	if !strings.Contains(state.Label, "Total: +Inf") {
		t.Errorf("label %q missing the infinite total", state.Label)
	}
	if state.Placed || state.Placement != probe.Candidates[2] {
		t.Errorf("expected the previous placement without a measured box, got %+v", state)
	}
}

func TestLocateKeepsPlacementWhenGeometryNotReady(t *testing.T) {
	series := &probe.ChartSeries{X: []float64{0, 1}, Total: []float64{10, 20}, Contributed: []float64{10, 10}}
	prev := probe.Clear()
	prev.Placement = probe.Candidates[3]

	state := probe.Locate(prev, probe.Pointer{X: 0.9, Defined: true, InPlot: true}, series, testutil.FixedGeometry{})
	if !state.Visible {
		t.Fatal("expected visible overlay even without geometry")
	}
	if state.Index != 1 {
		t.Errorf("expected index 1, got %d", state.Index)
	}
	if state.Placement != probe.Candidates[3] {
		t.Errorf("expected previous placement to be kept, got %+v", state.Placement)
	}
	if state.Placed {
		t.Error("expected Placed=false without geometry")
	}
}

func TestProbeTransitions(t *testing.T) {
	series := &probe.ChartSeries{X: []float64{0, 0.5, 1}, Total: []float64{10, 15, 20}, Contributed: []float64{10, 10, 10}}
	g := testutil.FixedGeometry{
		Plot:      probe.Rect{Left: 0, Top: 0, Right: 300, Bottom: 200},
		XMax:      1,
		YMax:      20,
		BoxWidth:  60,
		BoxHeight: 30,
		Ready:     true,
	}
	p := probe.NewProbe(series, g, zap.NewNop())

	if p.State().Visible {
		t.Fatal("new probe should start hidden")
	}

	state := p.Move(probe.Pointer{X: 0.1, Defined: true, InPlot: true})
	if !state.Visible || state.Index != 0 {
		t.Fatalf("expected visible overlay at index 0, got %+v", state)
	}

	state = p.Move(probe.Pointer{X: 0.95, Defined: true, InPlot: true})
	if !state.Visible || state.Index != 2 {
		t.Fatalf("expected visible overlay at index 2, got %+v", state)
	}
	// The last sample sits in the top-right corner, so the box must open down-left.
	if state.Placement != probe.Candidates[3] {
		t.Errorf("expected down-left placement in the corner, got %+v", state.Placement)
	}

	if state := p.Leave(); state.Visible {
		t.Fatal("expected hidden overlay after leaving the plot")
	}

	p.Move(probe.Pointer{X: 0.5, Defined: true, InPlot: true})
	replaced := &probe.ChartSeries{X: []float64{0}, Total: []float64{1}, Contributed: []float64{1}}
	if state := p.Replace(replaced, g); state.Visible || state.Placement != probe.DefaultPlacement {
		t.Fatalf("expected cleared overlay after replacing the series, got %+v", state)
	}
	if state := p.Move(probe.Pointer{X: 0.9, Defined: true, InPlot: true}); !state.Visible || state.Index != 0 {
		t.Errorf("expected the overlay to follow the replaced single-sample series, got %+v", state)
	}
}

func TestChartSeriesLen(t *testing.T) {
	var nilSeries *probe.ChartSeries
	if nilSeries.Len() != 0 {
		t.Error("nil series should have length 0")
	}
	uneven := &probe.ChartSeries{X: []float64{0, 1, 2}, Total: []float64{1, 2}}
	if uneven.Len() != 2 {
		t.Errorf("expected length 2, got %d", uneven.Len())
	}
}
