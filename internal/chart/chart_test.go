package chart

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
)

func testSeries(t *testing.T) *probe.ChartSeries {
	t.Helper()
	result, err := simulation.Simulate(simulation.Input{
		Principal:                10000,
		Years:                    5,
		RebalanceMonths:          12,
		ContributionPerRebalance: 1000,
		Assets:                   simulation.DefaultAssets(),
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return probe.NewChartSeries(result)
}

func TestGeometryNotReadyBeforeRender(t *testing.T) {
	g := NewGeometry(0, 10, 0, 100)
	if _, ok := g.PlotRect(); ok {
		t.Error("expected PlotRect to report not ready")
	}
	if _, ok := g.DataToPixel(probe.Point{X: 1, Y: 1}); ok {
		t.Error("expected DataToPixel to report not ready")
	}
	if _, ok := g.OverlayRect(probe.Point{}, probe.DefaultPlacement, "label"); ok {
		t.Error("expected OverlayRect to report not ready")
	}
	if ev := g.Pointer(10, 10); ev.Defined {
		t.Error("expected an undefined pointer before render")
	}

	var nilGeometry *Geometry
	if _, ok := nilGeometry.PlotRect(); ok {
		t.Error("expected nil geometry to be not ready")
	}
}

func TestRenderPNG(t *testing.T) {
	series := testSeries(t)
	var buf bytes.Buffer
	g, err := Render(&buf, series, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatal("expected PNG output")
	}
	if _, ok := g.PlotRect(); !ok {
		t.Fatal("expected geometry to be ready after render")
	}

	plot, _ := g.PlotRect()
	if plot.Width() <= 0 || plot.Height() <= 0 {
		t.Fatalf("expected a non-empty plot area, got %+v", plot)
	}
	if plot.Right > 900 || plot.Bottom > 540 {
		t.Errorf("plot area %+v exceeds the default canvas", plot)
	}
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Render(&buf, testSeries(t), Options{Format: "SVG", Width: 640, Height: 480}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatal("expected SVG output")
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Render(&buf, &probe.ChartSeries{}, Options{}); err == nil {
		t.Error("expected an error for an empty series")
	}
	if _, err := Render(&buf, testSeries(t), Options{Format: "gif"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestPointerMapping(t *testing.T) {
	series := testSeries(t)
	var buf bytes.Buffer
	g, err := Render(&buf, series, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, i := range []int{0, 3, series.Len() - 1} {
		pixel, ok := g.DataToPixel(probe.Point{X: series.X[i], Y: series.Total[i]})
		if !ok {
			t.Fatalf("expected sample %d to map to pixels", i)
		}
		ev := g.Pointer(pixel.X, pixel.Y)
		if !ev.Defined || !ev.InPlot {
			t.Fatalf("expected sample %d to be inside the plot, got %+v", i, ev)
		}
		if got := probe.Nearest(series.X, ev.X); got != i {
			t.Errorf("pointer over sample %d resolved to %d", i, got)
		}
	}

	if ev := g.Pointer(-5, -5); ev.InPlot {
		t.Error("expected a pointer outside the canvas to be out of plot")
	}
}

func TestRenderWithOverlay(t *testing.T) {
	series := testSeries(t)
	var buf bytes.Buffer
	g, err := Render(&buf, series, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	plot, _ := g.PlotRect()
	ev := g.Pointer(plot.Right-1, plot.Top+1)
	state := probe.Locate(probe.Clear(), ev, series, g)
	if !state.Visible || state.Index != series.Len()-1 {
		t.Fatalf("expected the last sample to be probed, got %+v", state)
	}
	if !state.Placed || state.Box.Width() <= 0 {
		t.Fatalf("expected a measured overlay box, got %+v", state.Box)
	}

	var overlaid bytes.Buffer
	if _, err := RenderWithOverlay(&overlaid, series, Options{}, state); err != nil {
		t.Fatalf("render with overlay: %v", err)
	}
	if bytes.Equal(buf.Bytes(), overlaid.Bytes()) {
		t.Error("expected the overlay to change the rendered image")
	}
}

func TestRenderAllocation(t *testing.T) {
	png, err := RenderAllocation(simulation.DefaultAssets(), 0, 0)
	if err != nil {
		t.Fatalf("render allocation: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}

	if _, err := RenderAllocation([]simulation.Asset{{Name: "Cash", TargetWeightPercent: 0}}, 0, 0); err == nil {
		t.Error("expected an error when no asset carries weight")
	}
}

func TestRangesSkipDivergedSamples(t *testing.T) {
	series := &probe.ChartSeries{
		X:           []float64{0, 1, 2},
		Total:       []float64{100, math.Inf(1), math.NaN()},
		Contributed: []float64{100, 100, 100},
	}
	_, _, yMin, yMax := ranges(series)
	if yMin != 95 || yMax != 105 {
		t.Errorf("expected finite range [95, 105], got [%v, %v]", yMin, yMax)
	}

	diverged := &probe.ChartSeries{X: []float64{0}, Total: []float64{math.Inf(1)}}
	if _, _, yMin, yMax := ranges(diverged); yMin != 0 || math.Abs(yMax-1.05) > 1e-9 {
		t.Errorf("expected fallback range [0, 1.05], got [%v, %v]", yMin, yMax)
	}
}
