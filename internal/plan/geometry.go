package plan

import "math"

// Point is a 2D point in the shared drawing coordinate frame.
// Units follow the source drawing (typically millimetres).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Hypot(dx, dy)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Segment is a directed 2D line segment.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.Start.DistanceTo(s.End)
}

// AngleDeg returns the segment angle in degrees, normalised to [0, 360).
func (s Segment) AngleDeg() float64 {
	deg := math.Atan2(s.End.Y-s.Start.Y, s.End.X-s.Start.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Orientation classifies an axis-aligned element as horizontal
// (constant Y) or vertical (constant X).
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// orthogonalDeviation returns the angular deviation of deg from the
// nearest axis direction (0/90/180/270) and the orientation that axis
// implies. An exact tie between the two axes (a 45° segment) resolves
// to horizontal; such segments exceed any valid angle tolerance and
// are rejected downstream either way.
func orthogonalDeviation(deg float64) (dev float64, o Orientation) {
	devH := axisDeviation(deg, 0)
	devV := axisDeviation(deg, 90)
	if devV < devH {
		return devV, Vertical
	}
	return devH, Horizontal
}

// axisDeviation returns the angular distance from deg to the nearest
// direction of the axis (axis or axis+180).
func axisDeviation(deg, axis float64) float64 {
	d := math.Mod(math.Abs(deg-axis), 180)
	if d > 90 {
		d = 180 - d
	}
	return d
}

// BoundingBox is an axis-aligned 2D bounding box.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Expand grows the box by d on every side.
func (b BoundingBox) Expand(d float64) BoundingBox {
	return BoundingBox{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// AddPoint grows the box to include p.
func (b BoundingBox) AddPoint(p Point) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, p.X),
		MinY: math.Min(b.MinY, p.Y),
		MaxX: math.Max(b.MaxX, p.X),
		MaxY: math.Max(b.MaxY, p.Y),
	}
}

func emptyBox() BoundingBox {
	return BoundingBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// segmentsIntersect reports whether the open interiors of two segments
// cross. Shared endpoints do not count as an intersection; the check is
// used for self-intersection screening of candidate centerlines.
func segmentsIntersect(a, b Segment) bool {
	d1 := cross(b.Start, b.End, a.Start)
	d2 := cross(b.Start, b.End, a.End)
	d3 := cross(a.Start, a.End, b.Start)
	d4 := cross(a.Start, a.End, b.End)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
