// Package ink defines the persisted drawing model: strokes, drawing surfaces
// and the active tool configuration captured when a stroke starts.
package ink

import (
	"time"

	"github.com/platinummonkey/inkpad/internal/geometry"
)

// Tool is the drawing tool selected in the host UI
type Tool string

const (
	// ToolPen draws opaque ink
	ToolPen Tool = "pen"

	// ToolHighlighter draws translucent multiply-blended ink
	ToolHighlighter Tool = "highlighter"

	// ToolEraser removes whole strokes it is dragged across
	ToolEraser Tool = "eraser"
)

// String returns the tool name
func (t Tool) String() string {
	return string(t)
}

// Kind returns the stroke kind a drag with this tool commits
func (t Tool) Kind() StrokeKind {
	switch t {
	case ToolHighlighter:
		return KindHighlighter
	case ToolEraser:
		return KindEraser
	default:
		return KindPen
	}
}

// StrokeKind selects how a committed stroke is painted
type StrokeKind string

const (
	// KindPen is painted with the stroke color using source-over
	KindPen StrokeKind = "pen"

	// KindHighlighter is painted at reduced alpha with a multiply blend
	KindHighlighter StrokeKind = "highlighter"

	// KindEraser is painted destination-out at twice its width. Surfaces
	// produced by this package never contain it; older data may.
	KindEraser StrokeKind = "eraser"
)

// String returns the kind name
func (k StrokeKind) String() string {
	return string(k)
}

// Stroke is one continuous ink gesture. Committed strokes are never mutated.
type Stroke struct {
	Points []geometry.Point `json:"points" validate:"min=2"`
	Color  string           `json:"color"`
	Width  float64          `json:"width" validate:"gte=0"`
	Kind   StrokeKind       `json:"tool" validate:"oneof=pen highlighter eraser"`
}

// Bounds returns the stroke's bounding box
func (s Stroke) Bounds() (geometry.Rect, bool) {
	return geometry.BoundingBox(s.Points)
}

// Surface is the persisted unit of drawable content. Width and Height are
// fixed at creation; Paths is replaced wholesale on every change and its
// order is the paint order.
type Surface struct {
	ID              string    `json:"id" validate:"required"`
	Title           string    `json:"title,omitempty"`
	Paths           []Stroke  `json:"paths" validate:"dive"`
	Width           int       `json:"width" validate:"gt=0"`
	Height          int       `json:"height" validate:"gt=0"`
	BackgroundImage string    `json:"backgroundImage,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasBackground reports whether the surface carries an imported image
func (s Surface) HasBackground() bool {
	return s.BackgroundImage != ""
}

// IsBlank reports whether there is nothing to look at
func (s Surface) IsBlank() bool {
	return len(s.Paths) == 0 && !s.HasBackground()
}

// ToolState is the active tool configuration. Sessions copy it when a drag
// starts so later changes in the host never affect an in-flight stroke.
type ToolState struct {
	Tool  Tool    `json:"tool" validate:"oneof=pen highlighter eraser"`
	Color string  `json:"color"`
	Width float64 `json:"width" validate:"gt=0"`
}

// DefaultToolState returns a 3px black pen
func DefaultToolState() ToolState {
	return ToolState{
		Tool:  ToolPen,
		Color: "#000000",
		Width: 3,
	}
}

// PointCount returns the total number of points over all paths
func (s Surface) PointCount() int {
	n := 0
	for _, p := range s.Paths {
		n += len(p.Points)
	}
	return n
}

// KindCounts returns how many strokes of each kind the surface holds
func (s Surface) KindCounts() map[StrokeKind]int {
	counts := make(map[StrokeKind]int)
	for _, p := range s.Paths {
		counts[p.Kind]++
	}
	return counts
}
