package probe

import "github.com/iwvelando/rebalance-simulator/pkg/constants"

// Align is the horizontal text alignment of the overlay relative to its anchor.
type Align string

const (
	// AlignLeft anchors the left edge of the text, so the box grows rightward.
	AlignLeft Align = "left"
	// AlignRight anchors the right edge of the text, so the box grows leftward.
	AlignRight Align = "right"
)

// Pad is the pixel distance of every candidate offset from the probed point.
const Pad = constants.OverlayPad

// Placement is a pixel offset from the probed point plus the text alignment.
// Positive DY points up.
type Placement struct {
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	Align Align   `json:"align"`
}

// DefaultPlacement is used before any placement has been computed.
var DefaultPlacement = Placement{DX: 12, DY: 12, Align: AlignLeft}

// Candidates are tried in this order on every placement: up-right, up-left,
// down-right, down-left.
var Candidates = [4]Placement{
	{DX: Pad, DY: Pad, Align: AlignLeft},
	{DX: -Pad, DY: Pad, Align: AlignRight},
	{DX: Pad, DY: -Pad, Align: AlignLeft},
	{DX: -Pad, DY: -Pad, Align: AlignRight},
}

// Place picks the candidate whose overlay box overflows the plot rectangle the
// least. Ties keep the earliest candidate. When the geometry cannot report pixel
// extents yet, prev is returned unchanged together with false.
func Place(g Geometry, anchor Point, label string, prev Placement) (Placement, bool) {
	if g == nil {
		return prev, false
	}
	plot, ok := g.PlotRect()
	if !ok {
		return prev, false
	}
	pixel, ok := g.DataToPixel(anchor)
	if !ok {
		return prev, false
	}

	best := prev
	bestOverflow := 0.0
	found := false
	for _, candidate := range Candidates {
		box, ok := g.OverlayRect(pixel, candidate, label)
		if !ok {
			return prev, false
		}
		overflow := Overflow(box, plot)
		if !found || overflow < bestOverflow {
			best = candidate
			bestOverflow = overflow
			found = true
		}
	}
	return best, true
}
