// Package chart renders projection charts and exposes the pixel geometry of the
// last render pass so pointer events can be probed against it.
package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"github.com/iwvelando/rebalance-simulator/pkg/format"
	"github.com/iwvelando/rebalance-simulator/pkg/probe"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	totalColor       = drawing.ColorFromHex("1f77b4")
	contributedColor = drawing.ColorFromHex("ff7f0e")
	overlayFill      = drawing.ColorFromHex("1f2a35").WithAlpha(230)
	overlayStroke    = drawing.ColorFromHex("4a4a4a")
	overlayText      = drawing.ColorFromHex("f2f2f2")
)

// Options controls the size and encoding of a rendered chart.
type Options struct {
	Width  int
	Height int
	// Format is constants.ChartFormatPNG or constants.ChartFormatSVG.
	Format string
	Title  string
}

func (o Options) normalized() (Options, error) {
	if o.Width <= 0 {
		o.Width = constants.DefaultChartWidth
	}
	if o.Height <= 0 {
		o.Height = constants.DefaultChartHeight
	}
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	if o.Format == "" {
		o.Format = constants.ChartFormatPNG
	}
	if o.Format != constants.ChartFormatPNG && o.Format != constants.ChartFormatSVG {
		return o, fmt.Errorf("expected chart format of %s or %s, got %s",
			constants.ChartFormatPNG, constants.ChartFormatSVG, o.Format)
	}
	return o, nil
}

// ContentType returns the MIME type of the chart encoding.
func (o Options) ContentType() string {
	if strings.EqualFold(o.Format, constants.ChartFormatSVG) {
		return "image/svg+xml"
	}
	return "image/png"
}

// Render draws the projection and returns its geometry, which becomes ready once
// the render pass has completed.
func Render(w io.Writer, series *probe.ChartSeries, opts Options) (*Geometry, error) {
	return RenderWithOverlay(w, series, opts, probe.Clear())
}

// RenderWithOverlay draws the projection and, when overlay is visible, the
// highlighted sample and its tooltip box at the overlay's placement.
func RenderWithOverlay(w io.Writer, series *probe.ChartSeries, opts Options, overlay probe.OverlayState) (*Geometry, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("cannot render an empty series")
	}
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	xMin, xMax, yMin, yMax := ranges(series)
	geometry := NewGeometry(xMin, xMax, yMin, yMax)

	n := series.Len()
	ch := gochart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:           "Year",
			Range:          &gochart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", toFloat(v)) },
			GridMajorStyle: gridStyle(),
		},
		YAxis: gochart.YAxis{
			Name:           "Total Asset",
			Range:          &gochart.ContinuousRange{Min: yMin, Max: yMax},
			ValueFormatter: func(v interface{}) string { return format.Currency(toFloat(v)) },
			GridMajorStyle: gridStyle(),
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "Total",
				XValues: series.X[:n],
				YValues: series.Total[:n],
				Style:   gochart.Style{StrokeColor: totalColor, StrokeWidth: 2},
			},
		},
	}
	if len(series.Contributed) >= n {
		ch.Series = append(ch.Series, gochart.ContinuousSeries{
			Name:    "Contributed",
			XValues: series.X[:n],
			YValues: series.Contributed[:n],
			Style:   gochart.Style{StrokeColor: contributedColor, StrokeWidth: 1.5, StrokeDashArray: []float64{6, 4}},
		})
	}

	ch.Elements = []gochart.Renderable{
		gochart.Legend(&ch),
		func(r gochart.Renderer, canvas gochart.Box, defaults gochart.Style) {
			geometry.record(canvas, r, defaults)
			if overlay.Visible {
				drawOverlay(r, geometry, overlay, defaults)
			}
		},
	}

	provider := gochart.PNG
	if opts.Format == constants.ChartFormatSVG {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return geometry, nil
}

// drawOverlay draws the highlighted marker and the tooltip at the overlay's
// placement. The overlay must have been located against geometry's ranges.
func drawOverlay(r gochart.Renderer, g *Geometry, overlay probe.OverlayState, defaults gochart.Style) {
	anchor, ok := g.DataToPixel(overlay.Point)
	if !ok {
		return
	}

	r.SetFillColor(totalColor)
	r.SetStrokeColor(totalColor)
	r.SetStrokeWidth(1)
	r.Circle(5, int(math.Round(anchor.X)), int(math.Round(anchor.Y)))
	r.FillStroke()

	box, ok := g.OverlayRect(anchor, overlay.Placement, overlay.Label)
	if !ok {
		return
	}
	gochart.Draw.Box(r, gochart.Box{
		Top:    int(math.Round(box.Top)),
		Left:   int(math.Round(box.Left)),
		Right:  int(math.Round(box.Right)),
		Bottom: int(math.Round(box.Bottom)),
	}, gochart.Style{FillColor: overlayFill, StrokeColor: overlayStroke, StrokeWidth: 1})

	r.SetFont(defaults.Font)
	r.SetFontSize(overlayFontSize)
	r.SetFontColor(overlayText)
	y := box.Top + overlayPadding
	for _, line := range strings.Split(overlay.Label, "\n") {
		_, h := g.measureLine(line)
		y += h
		r.Text(line, int(math.Round(box.Left+overlayPadding)), int(math.Round(y)))
		y += overlayLineSpacing
	}
}

// ranges returns the axis ranges of the series with a small vertical margin so
// the lines never sit on the plot border. Samples that diverged to infinity are
// left out of the vertical range.
func ranges(series *probe.ChartSeries) (xMin, xMax, yMin, yMax float64) {
	n := series.Len()
	xMin, xMax = series.X[0], series.X[n-1]
	if xMax == xMin {
		xMax = xMin + 1
	}

	yMin, yMax = math.Inf(1), math.Inf(-1)
	extend := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		yMin = math.Min(yMin, v)
		yMax = math.Max(yMax, v)
	}
	for i := 0; i < n; i++ {
		extend(series.Total[i])
		if i < len(series.Contributed) {
			extend(series.Contributed[i])
		}
	}
	if yMin > yMax {
		yMin, yMax = 0, 1
	}

	padding := (yMax - yMin) * 0.05
	if padding == 0 {
		padding = math.Max(math.Abs(yMax)*0.05, 1)
	}
	yMin = math.Max(0, yMin-padding)
	yMax += padding
	return xMin, xMax, yMin, yMax
}

func gridStyle() gochart.Style {
	return gochart.Style{StrokeColor: drawing.ColorFromHex("d0d0d0"), StrokeWidth: 1, StrokeDashArray: []float64{4, 4}}
}

func toFloat(v interface{}) float64 {
	switch typed := v.(type) {
	case float64:
		return typed
	case int:
		return float64(typed)
	default:
		return 0
	}
}
