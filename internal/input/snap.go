package input

import (
	"math"

	"github.com/platinummonkey/inkpad/internal/geometry"
)

// SnapMinDX is the horizontal travel a highlighter gesture needs before it
// snaps to a straight underline
const SnapMinDX = 20.0

// SnapHighlighter straightens a mostly horizontal gesture into a two point
// line at the mean height of every captured point. Any other gesture is
// returned unchanged.
func SnapHighlighter(points []geometry.Point) []geometry.Point {
	if len(points) < 2 {
		return points
	}

	start, end := points[0], points[len(points)-1]
	dx := math.Abs(end.X - start.X)
	dy := math.Abs(end.Y - start.Y)
	if dx <= SnapMinDX || dx <= 2*dy {
		return points
	}

	y := geometry.MeanY(points)
	return []geometry.Point{
		{X: math.Min(start.X, end.X), Y: y},
		{X: math.Max(start.X, end.X), Y: y},
	}
}
