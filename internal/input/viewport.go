package input

import "github.com/platinummonkey/inkpad/internal/geometry"

// Viewport relates host display coordinates to the surface's pixel buffer.
// A surface displayed at a different size than its backing resolution needs
// the scale correction or drawn positions drift from the pointer.
type Viewport struct {
	BufferWidth   int
	BufferHeight  int
	DisplayWidth  float64
	DisplayHeight float64
	OffsetX       float64
	OffsetY       float64
}

// IdentityViewport maps display coordinates 1:1 onto a width x height buffer
func IdentityViewport(width, height int) Viewport {
	return Viewport{
		BufferWidth:   width,
		BufferHeight:  height,
		DisplayWidth:  float64(width),
		DisplayHeight: float64(height),
	}
}

// ToCanvas converts a client position to canvas pixel space
func (v Viewport) ToCanvas(clientX, clientY float64) geometry.Point {
	return geometry.Point{
		X: (clientX - v.OffsetX) * scale(v.BufferWidth, v.DisplayWidth),
		Y: (clientY - v.OffsetY) * scale(v.BufferHeight, v.DisplayHeight),
	}
}

func scale(buffer int, display float64) float64 {
	if buffer <= 0 || display <= 0 {
		return 1
	}
	return float64(buffer) / display
}
