// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
)

// FixedGeometry is a probe.Geometry with a linear data-to-pixel mapping and a
// constant overlay box size. Ready=false simulates a surface that has not
// completed a render pass.
type FixedGeometry struct {
	Plot       probe.Rect
	XMin, XMax float64
	YMin, YMax float64
	BoxWidth   float64
	BoxHeight  float64
	Ready      bool
}

// PlotRect implements probe.Geometry.
func (g FixedGeometry) PlotRect() (probe.Rect, bool) {
	return g.Plot, g.Ready
}

// DataToPixel implements probe.Geometry.
func (g FixedGeometry) DataToPixel(p probe.Point) (probe.Point, bool) {
	if !g.Ready || g.XMax == g.XMin || g.YMax == g.YMin {
		return probe.Point{}, false
	}
	x := g.Plot.Left + (p.X-g.XMin)/(g.XMax-g.XMin)*g.Plot.Width()
	y := g.Plot.Bottom - (p.Y-g.YMin)/(g.YMax-g.YMin)*g.Plot.Height()
	return probe.Point{X: x, Y: y}, true
}

// OverlayRect implements probe.Geometry.
func (g FixedGeometry) OverlayRect(anchor probe.Point, placement probe.Placement, _ string) (probe.Rect, bool) {
	if !g.Ready {
		return probe.Rect{}, false
	}
	return probe.BoxAt(anchor, placement, g.BoxWidth, g.BoxHeight), true
}

// PixelGeometry maps data x one-to-one onto pixel x and data y onto the negated
// pixel y, which lets tests place anchors at exact pixel positions.
func PixelGeometry(plot probe.Rect, boxWidth, boxHeight float64) FixedGeometry {
	return FixedGeometry{
		Plot:      plot,
		XMin:      plot.Left,
		XMax:      plot.Right,
		YMin:      -plot.Bottom,
		YMax:      -plot.Top,
		BoxWidth:  boxWidth,
		BoxHeight: boxHeight,
		Ready:     true,
	}
}

// SingleAsset returns an asset list holding one asset at full weight.
func SingleAsset(annualReturn float64) []simulation.Asset {
	return []simulation.Asset{{Name: "Single", AnnualReturnPercent: annualReturn, TargetWeightPercent: 100}}
}

// AssertClose fails the test when actual differs from expected by more than tolerance.
func AssertClose(t testing.TB, description string, expected, actual, tolerance float64) {
	t.Helper()
	if math.Abs(expected-actual) > tolerance {
		t.Errorf("%s: expected %.6f, got %.6f (diff: %.6f)", description, expected, actual, actual-expected)
	}
}
