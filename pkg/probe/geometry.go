package probe

import "math"

// Point is a position either in plot-data coordinates or in pixels, depending on
// the call it is passed to.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in pixel space. Y grows downward, so Top is
// numerically smaller than Bottom.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Contains reports whether the pixel point lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Geometry is the rendering surface's view of a displayed chart. Every method
// reports ok=false until the surface has completed a render pass; callers treat
// that as "retry on the next pointer event".
type Geometry interface {
	// PlotRect returns the drawable plot rectangle.
	PlotRect() (Rect, bool)
	// DataToPixel maps a point in data coordinates to pixel space.
	DataToPixel(p Point) (Point, bool)
	// OverlayRect returns the rectangle the overlay box covers when anchored at
	// the pixel point with the given placement and label.
	OverlayRect(anchor Point, placement Placement, label string) (Rect, bool)
}

// BoxAt lays out a box of the given size relative to a pixel anchor so that it
// grows away from the anchor: right-aligned boxes extend left of the offset,
// downward offsets extend below it.
func BoxAt(anchor Point, placement Placement, width, height float64) Rect {
	x := anchor.X + placement.DX
	left := x
	if placement.Align == AlignRight {
		left = x - width
	}

	var top float64
	if placement.DY >= 0 {
		bottom := anchor.Y - placement.DY
		top = bottom - height
	} else {
		top = anchor.Y - placement.DY
	}

	return Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Overflow returns how far box extends past plot, summed over the four sides.
// Sides that stay within bounds contribute zero.
func Overflow(box, plot Rect) float64 {
	left := math.Max(0, plot.Left-box.Left)
	right := math.Max(0, box.Right-plot.Right)
	bottom := math.Max(0, box.Bottom-plot.Bottom)
	top := math.Max(0, plot.Top-box.Top)
	return left + right + bottom + top
}
