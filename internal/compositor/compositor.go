package compositor

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gogpu/gg"
	"github.com/platinummonkey/inkpad/internal/geometry"
	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/logger"
)

// Compositor owns the ink layer of one surface. It is not safe for
// concurrent use; all calls for a surface go through the same goroutine.
type Compositor struct {
	options *Options
	logger  *logger.Logger
	dc      *gg.Context
}

// Config holds configuration for a compositor
type Config struct {
	Width   int
	Height  int
	Options *Options
	Logger  *logger.Logger
}

// New creates a compositor with an ink layer of the given size
func New(cfg *Config) *Compositor {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	return &Compositor{
		options: cfg.Options.normalize(),
		logger:  log,
		dc:      gg.NewContext(width, height),
	}
}

// ForSurface creates a compositor sized to s
func ForSurface(s ink.Surface, opts *Options) *Compositor {
	return New(&Config{Width: s.Width, Height: s.Height, Options: opts})
}

// Size returns the ink layer dimensions
func (c *Compositor) Size() (width, height int) {
	return c.dc.Width(), c.dc.Height()
}

// Repaint redraws the ink layer from the surface's committed state
func (c *Compositor) Repaint(s ink.Surface) {
	c.ensureSize(s.Width, s.Height)

	c.dc.Clear()
	if !s.HasBackground() {
		c.dc.ClearWithColor(gg.White)
	}

	for _, stroke := range s.Paths {
		c.paintStroke(stroke.Points, stroke.Color, stroke.Width, stroke.Kind)
	}
}

// DrawSegment paints only the newest segment of an in-progress drag on top
// of the ink layer. Eraser drags paint nothing.
func (c *Compositor) DrawSegment(from, to geometry.Point, tool ink.ToolState) {
	if tool.Tool == ink.ToolEraser {
		return
	}
	c.paintStroke([]geometry.Point{from, to}, tool.Color, tool.Width, tool.Tool.Kind())
}

// Ink returns a copy of the ink layer
func (c *Compositor) Ink() *image.NRGBA {
	return snapshot(c.dc)
}

// snapshot copies a context's pixels. Pixmaps hold straight alpha.
func snapshot(dc *gg.Context) *image.NRGBA {
	_ = dc.FlushGPU()
	img := image.NewNRGBA(image.Rect(0, 0, dc.Width(), dc.Height()))
	copy(img.Pix, dc.ResizeTarget().Data())
	return img
}

// Frame repaints s and returns the background and ink layers composited
func (c *Compositor) Frame(s ink.Surface) image.Image {
	c.Repaint(s)

	out := gg.NewContext(c.dc.Width(), c.dc.Height())
	if s.HasBackground() {
		bg, err := s.DecodeBackground()
		if err != nil {
			c.logger.WithFields("surface_id", s.ID).WithError(err).Warn("Background image unreadable, using white fill")
			out.ClearWithColor(gg.White)
		} else {
			out.DrawImageEx(gg.ImageBufFromImage(bg), gg.DrawImageOptions{
				DstWidth:      float64(out.Width()),
				DstHeight:     float64(out.Height()),
				Interpolation: gg.InterpBilinear,
				Opacity:       1.0,
				BlendMode:     gg.BlendNormal,
			})
		}
	}
	out.DrawImage(gg.ImageBufFromImage(c.Ink()), 0, 0)

	return snapshot(out)
}

// EncodePNG writes the composited frame of s as PNG
func (c *Compositor) EncodePNG(w io.Writer, s ink.Surface) error {
	if err := png.Encode(w, c.Frame(s)); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func (c *Compositor) ensureSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := c.dc.Resize(width, height); err != nil {
		c.logger.WithError(err).Debug("Ink layer resize rejected")
	}
}

// paintStroke paints one polyline with the blend semantics of its kind.
// Layers and state are restored before returning so nothing leaks into the
// next stroke.
func (c *Compositor) paintStroke(points []geometry.Point, color string, width float64, kind ink.StrokeKind) {
	if len(points) == 0 {
		return
	}

	switch kind {
	case ink.KindHighlighter:
		// the layer opacity carries the translucency; the stroke itself is opaque
		c.dc.PushLayer(gg.BlendMultiply, c.options.HighlighterAlpha)
		c.strokePolyline(c.dc, points, width, strokeColor(color, 1.0))
		c.dc.PopLayer()

	case ink.KindEraser:
		if c.options.RenderEraserStrokes {
			c.eraseAlong(points, width*c.options.EraserWidthScale)
		}

	default:
		c.strokePolyline(c.dc, points, width, strokeColor(color, 1.0))
	}
}

func (c *Compositor) strokePolyline(dc *gg.Context, points []geometry.Point, width float64, col gg.RGBA) {
	dc.Push()
	defer dc.Pop()

	dc.SetRGBA(col.R, col.G, col.B, col.A)
	dc.SetLineWidth(width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	dc.ClearPath()
	dc.MoveTo(points[0].X, points[0].Y)
	if len(points) == 1 {
		// a zero-length segment gives a round dot
		dc.LineTo(points[0].X, points[0].Y)
	}
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}

	if err := dc.Stroke(); err != nil {
		c.logger.WithError(err).Debug("Stroke rasterization failed")
	}
}

// eraseAlong applies a destination-out stroke: ink alpha is reduced by the
// coverage of the eraser path.
func (c *Compositor) eraseAlong(points []geometry.Point, width float64) {
	width0, height0 := c.Size()
	mask := gg.NewContext(width0, height0)
	c.strokePolyline(mask, points, width, gg.White)
	_ = mask.FlushGPU()
	_ = c.dc.FlushGPU()

	coverage := mask.ResizeTarget().Data()
	dst := c.dc.ResizeTarget().Data()
	for i := 3; i < len(dst) && i < len(coverage); i += 4 {
		a := coverage[i]
		if a == 0 {
			continue
		}
		// pixmaps hold straight alpha, so only the alpha channel scales
		dst[i] = uint8(uint16(dst[i]) * uint16(255-a) / 255)
	}
}

// strokeColor converts a hex color to a paint color with the given alpha.
// Unparseable colors paint black.
func strokeColor(hex string, alpha float64) gg.RGBA {
	r, g, b, ok := ink.ParseHex(hex)
	if !ok {
		return gg.RGBA{A: alpha}
	}
	return gg.RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: alpha,
	}
}

// EstimateComplexity returns the number of points a full repaint strokes
func EstimateComplexity(s ink.Surface) int {
	return s.PointCount()
}

// ExportMetadata describes a surface without rendering it
func ExportMetadata(s ink.Surface) map[string]interface{} {
	kinds := make(map[string]int)
	for kind, n := range s.KindCounts() {
		kinds[kind.String()] = n
	}

	return map[string]interface{}{
		"id":             s.ID,
		"title":          s.Title,
		"width":          s.Width,
		"height":         s.Height,
		"stroke_count":   len(s.Paths),
		"point_count":    s.PointCount(),
		"kinds":          kinds,
		"has_background": s.HasBackground(),
		"has_summary":    s.Summary != "",
		"complexity":     EstimateComplexity(s),
	}
}
