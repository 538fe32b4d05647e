// Package probe follows the pointer over a rendered projection chart: it finds the
// nearest simulated sample and places an information overlay next to it so that
// the overlay overflows the plot area as little as possible.
package probe

import (
	"fmt"
	"math"

	"github.com/iwvelando/rebalance-simulator/pkg/format"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
	"go.uber.org/zap"
)

// ChartSeries is the data of one displayed chart: the x-axis in years and the
// plotted y-series. The probe anchors its overlay on Total.
type ChartSeries struct {
	X           []float64 `json:"x"`
	Total       []float64 `json:"total"`
	Contributed []float64 `json:"contributed"`
}

// NewChartSeries builds the chart series of a simulation result.
func NewChartSeries(result simulation.Result) *ChartSeries {
	return &ChartSeries{
		X:           result.Years(),
		Total:       append([]float64(nil), result.TotalValue...),
		Contributed: append([]float64(nil), result.CumulativeContribution...),
	}
}

// Len returns the number of samples that can be probed.
func (s *ChartSeries) Len() int {
	if s == nil {
		return 0
	}
	n := len(s.X)
	if len(s.Total) < n {
		n = len(s.Total)
	}
	return n
}

// Label returns the overlay text for sample i.
func (s *ChartSeries) Label(i int) string {
	contributed := 0.0
	if i < len(s.Contributed) {
		contributed = s.Contributed[i]
	}
	return fmt.Sprintf("Year: %.2f\nContributed: %s\nTotal: %s",
		s.X[i], format.Currency(contributed), format.Currency(s.Total[i]))
}

// Pointer is a pointer event expressed in plot-data coordinates.
type Pointer struct {
	// X is the pointer position on the x-axis, in years.
	X float64 `json:"x"`
	// Defined is false when the surface could not map the pointer to data.
	Defined bool `json:"defined"`
	// InPlot is false when the pointer is outside the plot area.
	InPlot bool `json:"inPlot"`
}

// OverlayState is everything the rendering layer needs to draw the tooltip and
// the highlighted point.
type OverlayState struct {
	Index     int       `json:"index"`
	Visible   bool      `json:"visible"`
	Placement Placement `json:"placement"`
	Label     string    `json:"label,omitempty"`
	Point     Point     `json:"point"`
	// Box is the overlay rectangle in pixels; Placed is false when it could not be
	// measured on this event.
	Box    Rect `json:"box"`
	Placed bool `json:"placed"`
}

// Clear returns the hidden overlay state.
func Clear() OverlayState {
	return OverlayState{Index: -1, Placement: DefaultPlacement}
}

// Nearest returns the index of the sample closest to x. Equal distances resolve to
// the lowest index. It returns -1 for an empty series.
func Nearest(xs []float64, x float64) int {
	best := -1
	bestDistance := math.Inf(1)
	for i, v := range xs {
		distance := math.Abs(v - x)
		if distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}
	return best
}

// Locate computes the overlay state that follows prev for the pointer event ev.
// It is a pure transition: the same inputs always produce the same state.
func Locate(prev OverlayState, ev Pointer, s *ChartSeries, g Geometry) OverlayState {
	if s.Len() == 0 || !ev.Defined || !ev.InPlot || math.IsNaN(ev.X) || math.IsInf(ev.X, 0) {
		return hide(prev)
	}

	idx := Nearest(s.X[:s.Len()], ev.X)
	if idx < 0 {
		return hide(prev)
	}
	next := OverlayState{
		Index:     idx,
		Visible:   true,
		Placement: prev.Placement,
		Label:     s.Label(idx),
		Point:     Point{X: s.X[idx], Y: s.Total[idx]},
	}
	if next.Placement.Align == "" {
		next.Placement = DefaultPlacement
	}

	// A diverged sample has no pixel anchor; keep the previous placement.
	if !finite(next.Point) {
		return next
	}

	placement, ok := Place(g, next.Point, next.Label, next.Placement)
	if !ok {
		return next
	}
	next.Placement = placement

	if pixel, ok := g.DataToPixel(next.Point); ok {
		if box, ok := g.OverlayRect(pixel, placement, next.Label); ok {
			next.Box = box
			next.Placed = true
		}
	}
	return next
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func hide(prev OverlayState) OverlayState {
	hidden := Clear()
	if prev.Placement.Align != "" {
		hidden.Placement = prev.Placement
	}
	return hidden
}

// Probe owns the overlay state of one displayed chart. It is not safe for
// concurrent use; hosts that receive events from several goroutines serialise
// access themselves.
type Probe struct {
	logger   *zap.Logger
	series   *ChartSeries
	geometry Geometry
	state    OverlayState
}

// NewProbe creates a hidden probe for the given series and geometry.
func NewProbe(series *ChartSeries, geometry Geometry, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{logger: logger, series: series, geometry: geometry, state: Clear()}
}

// Move handles a pointer-move event and returns the new overlay state.
func (p *Probe) Move(ev Pointer) OverlayState {
	p.state = Locate(p.state, ev, p.series, p.geometry)
	if p.state.Visible && !p.state.Placed {
		p.logger.Debug("chart geometry not ready, keeping previous overlay placement",
			zap.String("op", "probe.Move"),
			zap.Int("index", p.state.Index),
		)
	}
	return p.state
}

// Leave hides the overlay because the pointer left the plot area.
func (p *Probe) Leave() OverlayState {
	p.state = hide(p.state)
	return p.state
}

// Replace swaps in a newly plotted series and its geometry and hides the overlay.
func (p *Probe) Replace(series *ChartSeries, geometry Geometry) OverlayState {
	p.series = series
	p.geometry = geometry
	p.state = Clear()
	return p.state
}

// State returns the current overlay state.
func (p *Probe) State() OverlayState {
	return p.state
}
