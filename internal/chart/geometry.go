package chart

import (
	"strings"
	"sync"

	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	gochart "github.com/wcharczuk/go-chart/v2"
)

const (
	overlayFontSize    = 10.0
	overlayPadding     = 6.0
	overlayLineSpacing = 4.0
)

// Geometry records the pixel layout of a rendered projection chart. It
// implements probe.Geometry and reports "not ready" until Render has completed a
// pass; it is safe for concurrent use.
type Geometry struct {
	mu      sync.RWMutex
	ready   bool
	plot    probe.Rect
	xMin    float64
	xMax    float64
	yMin    float64
	yMax    float64
	measure func(text string) (width, height float64)
	sizes   map[string][2]float64
}

// NewGeometry returns a geometry for the given axis ranges that is not ready yet.
func NewGeometry(xMin, xMax, yMin, yMax float64) *Geometry {
	return &Geometry{xMin: xMin, xMax: xMax, yMin: yMin, yMax: yMax, sizes: make(map[string][2]float64)}
}

// record stores the plot box of a completed render pass along with a text
// measurer bound to the renderer that drew it.
func (g *Geometry) record(canvas gochart.Box, r gochart.Renderer, defaults gochart.Style) {
	font := defaults.Font
	measure := func(text string) (float64, float64) {
		r.SetFont(font)
		r.SetFontSize(overlayFontSize)
		box := r.MeasureText(text)
		return float64(box.Width()), float64(box.Height())
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.plot = probe.Rect{
		Left:   float64(canvas.Left),
		Top:    float64(canvas.Top),
		Right:  float64(canvas.Right),
		Bottom: float64(canvas.Bottom),
	}
	g.measure = measure
	g.sizes = make(map[string][2]float64)
	g.ready = true
}

// PlotRect implements probe.Geometry.
func (g *Geometry) PlotRect() (probe.Rect, bool) {
	if g == nil {
		return probe.Rect{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.plot, g.ready
}

// DataToPixel implements probe.Geometry.
func (g *Geometry) DataToPixel(p probe.Point) (probe.Point, bool) {
	if g == nil {
		return probe.Point{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.ready || g.xMax == g.xMin || g.yMax == g.yMin {
		return probe.Point{}, false
	}
	x := g.plot.Left + (p.X-g.xMin)/(g.xMax-g.xMin)*g.plot.Width()
	y := g.plot.Bottom - (p.Y-g.yMin)/(g.yMax-g.yMin)*g.plot.Height()
	return probe.Point{X: x, Y: y}, true
}

// PixelToData maps a pixel position back to data coordinates.
func (g *Geometry) PixelToData(p probe.Point) (probe.Point, bool) {
	if g == nil {
		return probe.Point{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.ready || g.plot.Width() <= 0 || g.plot.Height() <= 0 {
		return probe.Point{}, false
	}
	x := g.xMin + (p.X-g.plot.Left)/g.plot.Width()*(g.xMax-g.xMin)
	y := g.yMin + (g.plot.Bottom-p.Y)/g.plot.Height()*(g.yMax-g.yMin)
	return probe.Point{X: x, Y: y}, true
}

// Pointer converts a pixel pointer position on the chart image into a probe
// event. Positions outside the plot area yield an out-of-plot event.
func (g *Geometry) Pointer(px, py float64) probe.Pointer {
	pixel := probe.Point{X: px, Y: py}
	plot, ok := g.PlotRect()
	if !ok {
		return probe.Pointer{}
	}
	data, ok := g.PixelToData(pixel)
	if !ok {
		return probe.Pointer{}
	}
	return probe.Pointer{X: data.X, Defined: true, InPlot: plot.Contains(pixel)}
}

// OverlayRect implements probe.Geometry by measuring every label line with the
// chart font.
func (g *Geometry) OverlayRect(anchor probe.Point, placement probe.Placement, label string) (probe.Rect, bool) {
	width, height, ok := g.labelSize(label)
	if !ok {
		return probe.Rect{}, false
	}
	return probe.BoxAt(anchor, placement, width, height), true
}

// measureLine returns the size of a single label line; it must be called while
// the render pass that recorded the geometry is still drawing.
func (g *Geometry) measureLine(line string) (float64, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.measure == nil {
		return 0, 0
	}
	return g.measure(line)
}

func (g *Geometry) labelSize(label string) (float64, float64, bool) {
	if g == nil {
		return 0, 0, false
	}

	g.mu.RLock()
	ready, measure := g.ready, g.measure
	size, cached := g.sizes[label]
	g.mu.RUnlock()
	if !ready || measure == nil {
		return 0, 0, false
	}
	if cached {
		return size[0], size[1], true
	}

	lines := strings.Split(label, "\n")

	// The measurer shares the renderer's font state, so measuring is serialised.
	g.mu.Lock()
	defer g.mu.Unlock()
	width, lineHeight := 0.0, 0.0
	for _, line := range lines {
		w, h := measure(line)
		if w > width {
			width = w
		}
		if h > lineHeight {
			lineHeight = h
		}
	}
	n := float64(len(lines))
	width += 2 * overlayPadding
	height := n*lineHeight + (n-1)*overlayLineSpacing + 2*overlayPadding
	g.sizes[label] = [2]float64{width, height}
	return width, height, true
}
