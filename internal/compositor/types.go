// Package compositor paints drawing surfaces: a background layer (white fill
// or an imported image) beneath an ink layer holding every committed stroke.
package compositor

const (
	// DefaultHighlighterAlpha is the opacity of the highlighter multiply layer
	DefaultHighlighterAlpha = 0.4

	// DefaultEraserWidthScale widens eraser strokes relative to their nominal width
	DefaultEraserWidthScale = 2.0

	// PointsPerPixel converts surface pixels (96 DPI) to PDF points
	PointsPerPixel = 72.0 / 96.0
)

// Options configures how strokes are painted
type Options struct {
	// HighlighterAlpha is the opacity highlighter strokes multiply with (0-1)
	HighlighterAlpha float64

	// EraserWidthScale multiplies the width of eraser strokes
	EraserWidthScale float64

	// RenderEraserStrokes paints eraser strokes destination-out. When false
	// they are skipped, which is always correct for surfaces whose eraser
	// removed strokes by hit-testing.
	RenderEraserStrokes bool
}

// DefaultOptions returns the browser-compatible painting options
func DefaultOptions() *Options {
	return &Options{
		HighlighterAlpha:    DefaultHighlighterAlpha,
		EraserWidthScale:    DefaultEraserWidthScale,
		RenderEraserStrokes: true,
	}
}

func (o *Options) normalize() *Options {
	if o == nil {
		return DefaultOptions()
	}
	opts := *o
	if opts.HighlighterAlpha <= 0 || opts.HighlighterAlpha > 1 {
		opts.HighlighterAlpha = DefaultHighlighterAlpha
	}
	if opts.EraserWidthScale <= 0 {
		opts.EraserWidthScale = DefaultEraserWidthScale
	}
	return &opts
}
