// Package geometry provides the small set of 2D primitives used for stroke
// hit-testing: points, axis-aligned rectangles and point-to-segment distance.
package geometry

import "math"

// Point is a coordinate in canvas pixel space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between a and b
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// DistancePointToSegment returns the distance from p to the closest point on
// the segment [v, w]. A zero-length segment degrades to Dist(p, v).
func DistancePointToSegment(p, v, w Point) float64 {
	dx := w.X - v.X
	dy := w.Y - v.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Dist(p, v)
	}

	t := ((p.X-v.X)*dx + (p.Y-v.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))

	return Dist(p, Point{X: v.X + t*dx, Y: v.Y + t*dy})
}

// Rect is an axis-aligned bounding box
type Rect struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// BoundingBox returns the bounds of points. ok is false for an empty slice.
func BoundingBox(points []Point) (r Rect, ok bool) {
	if len(points) == 0 {
		return Rect{}, false
	}

	r = Rect{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r, true
}

// Expand grows the rectangle by d on every side
func (r Rect) Expand(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

// MeanY returns the arithmetic mean of the y coordinates, 0 for no points
func MeanY(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range points {
		sum += p.Y
	}
	return sum / float64(len(points))
}
