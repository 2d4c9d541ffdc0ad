package input

import (
	"github.com/platinummonkey/inkpad/internal/geometry"
	"github.com/platinummonkey/inkpad/internal/ink"
)

// EraserRadius is the hit radius of the eraser in canvas pixels
const EraserRadius = 10.0

// EraseAt removes every stroke passing within r of p, widened by half the
// stroke's own width. kept is a new slice; paths is never modified.
func EraseAt(paths []ink.Stroke, p geometry.Point, r float64) (kept []ink.Stroke, removed int) {
	if r < 0 {
		r = 0
	}

	kept = make([]ink.Stroke, 0, len(paths))
	for _, stroke := range paths {
		if hits(stroke, p, r) {
			removed++
			continue
		}
		kept = append(kept, stroke)
	}
	return kept, removed
}

func hits(stroke ink.Stroke, p geometry.Point, r float64) bool {
	threshold := r + stroke.Width/2

	// Rejecting on bounds expanded by the full threshold gives the same
	// answer as the segment scan below.
	box, ok := stroke.Bounds()
	if !ok || !box.Expand(threshold).Contains(p) {
		return false
	}

	if len(stroke.Points) == 1 {
		return geometry.Dist(p, stroke.Points[0]) <= threshold
	}
	for i := 0; i+1 < len(stroke.Points); i++ {
		if geometry.DistancePointToSegment(p, stroke.Points[i], stroke.Points[i+1]) <= threshold {
			return true
		}
	}
	return false
}
