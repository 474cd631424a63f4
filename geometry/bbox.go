// Package geometry implements axis-aligned bounding box algebra shared by every stage of
// the parsing pipeline: native text spans, detected layout regions, OCR lines, and the
// elements/blocks assembled from them all carry a BBox.
package geometry

// BBox is an axis-aligned box with y growing downward, matching PDF raster coordinates.
// It is a pure value: no lifetime, no pointer identity matters for equality of behavior.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// New returns a box normalized so X0<=X1 and Y0<=Y1.
func New(x0, y0, x1, y1 float64) BBox {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns X1-X0.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns Y1-Y0.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Area returns Width*Height.
func (b BBox) Area() float64 { return b.Width() * b.Height() }

// Center returns the box's centroid.
func (b BBox) Center() (float64, float64) {
	return b.X0 + b.Width()/2, b.Y0 + b.Height()/2
}

// Contains reports whether other lies entirely within b, non-strict on edges.
func (b BBox) Contains(other BBox) bool {
	return other.X0 >= b.X0 && other.Y0 >= b.Y0 && other.X1 <= b.X1 && other.Y1 <= b.Y1
}

func overlap1D(aMin, aMax, bMin, bMax float64) float64 {
	lo := aMin
	if bMin > lo {
		lo = bMin
	}
	hi := aMax
	if bMax < hi {
		hi = bMax
	}
	if hi-lo < 0 {
		return 0
	}
	return hi - lo
}

// Intersection returns the intersection area of b and other. Adjacent (edge-sharing)
// boxes have zero intersection.
func (b BBox) Intersection(other BBox) float64 {
	ox := overlap1D(b.X0, b.X1, other.X0, other.X1)
	oy := overlap1D(b.Y0, b.Y1, other.Y0, other.Y1)
	return ox * oy
}

// Union returns the area of the union of b and other (not the union box, the summed area).
func (b BBox) Union(other BBox) float64 {
	return b.Area() + other.Area() - b.Intersection(other)
}

// IoU returns intersection over union, in [0,1]. iou(a,a) = 1; disjoint boxes = 0.
func (b BBox) IoU(other BBox) float64 {
	u := b.Union(other)
	if u == 0 {
		return 0
	}
	return b.Intersection(other) / u
}

// RelaxedIoU returns intersection divided by the smaller of the two areas. Used by NMS to
// suppress a box that is (near-)fully contained in a larger one, harsher on containment
// than plain IoU.
func (b BBox) RelaxedIoU(other BBox) float64 {
	minArea := b.Area()
	if other.Area() < minArea {
		minArea = other.Area()
	}
	if minArea == 0 {
		return 0
	}
	return b.Intersection(other) / minArea
}

// Distance returns the axis-weighted squared centroid distance between b and other.
func (b BBox) Distance(other BBox, xWeight, yWeight float64) float64 {
	bx, by := b.Center()
	ox, oy := other.Center()
	dx := bx - ox
	dy := by - oy
	return dx*dx*xWeight + dy*dy*yWeight
}

// Merge returns the union (bounding) box of b and other. Monotone: neither input
// dimension ever shrinks.
func (b BBox) Merge(other BBox) BBox {
	return BBox{
		X0: minF(b.X0, other.X0),
		Y0: minF(b.Y0, other.Y0),
		X1: maxF(b.X1, other.X1),
		Y1: maxF(b.Y1, other.Y1),
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
