package compositor

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/signintech/gopdf"

	"github.com/platinummonkey/inkpad/internal/geometry"
	"github.com/platinummonkey/inkpad/internal/ink"
)

// PDFMode selects how surfaces are written into a PDF
type PDFMode string

const (
	// PDFRaster embeds each composited frame as an image. Output matches the
	// on-screen canvas exactly.
	PDFRaster PDFMode = "raster"

	// PDFVector writes pen and highlighter strokes as PDF line segments over
	// the background. Highlighter transparency is approximated by mixing the
	// color with white.
	PDFVector PDFMode = "vector"
)

// RenderPDF writes one page per surface, sized to each surface in points
func (c *Compositor) RenderPDF(surfaces []ink.Surface, mode PDFMode) ([]byte, error) {
	if len(surfaces) == 0 {
		return nil, fmt.Errorf("no surfaces to render")
	}

	pdf := gopdf.GoPdf{}
	first := pageRect(surfaces[0])
	pdf.Start(gopdf.Config{PageSize: first})

	for i, s := range surfaces {
		rect := pageRect(s)
		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &rect})

		var err error
		switch mode {
		case PDFVector:
			err = c.renderVectorPage(&pdf, s, rect)
		default:
			err = c.renderRasterPage(&pdf, s, rect)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	c.logger.WithFields("pages", len(surfaces), "mode", string(mode), "bytes", buf.Len()).Debug("Rendered PDF")
	return buf.Bytes(), nil
}

func (c *Compositor) renderRasterPage(pdf *gopdf.GoPdf, s ink.Surface, rect gopdf.Rect) error {
	frame := c.Frame(s)
	if err := pdf.ImageFrom(frame, 0, 0, &rect); err != nil {
		return fmt.Errorf("failed to embed frame: %w", err)
	}
	return nil
}

func (c *Compositor) renderVectorPage(pdf *gopdf.GoPdf, s ink.Surface, rect gopdf.Rect) error {
	pdf.SetFillColor(255, 255, 255)
	pdf.RectFromUpperLeftWithStyle(0, 0, rect.W, rect.H, "F")

	if s.HasBackground() {
		bg, err := s.DecodeBackground()
		if err != nil {
			c.logger.WithFields("surface_id", s.ID).WithError(err).Warn("Background image unreadable, using white fill")
		} else if err := pdf.ImageFrom(bg, 0, 0, &rect); err != nil {
			return fmt.Errorf("failed to embed background: %w", err)
		}
	}

	for _, stroke := range s.Paths {
		switch stroke.Kind {
		case ink.KindEraser:
			// erased ink cannot be expressed as vector output
			continue
		case ink.KindHighlighter:
			r, g, b := mixWithWhite(stroke.Color, c.options.HighlighterAlpha)
			pdf.SetStrokeColor(r, g, b)
		default:
			r, g, b, ok := ink.ParseHex(stroke.Color)
			if !ok {
				r, g, b = 0, 0, 0
			}
			pdf.SetStrokeColor(r, g, b)
		}

		pdf.SetLineWidth(stroke.Width * PointsPerPixel)
		drawPolyline(pdf, stroke.Points)
	}

	return nil
}

func drawPolyline(pdf *gopdf.GoPdf, points []geometry.Point) {
	for i := 0; i+1 < len(points); i++ {
		p1, p2 := points[i], points[i+1]
		pdf.Line(p1.X*PointsPerPixel, p1.Y*PointsPerPixel, p2.X*PointsPerPixel, p2.Y*PointsPerPixel)
	}
}

// mixWithWhite flattens a translucent color over white
func mixWithWhite(hex string, alpha float64) (r, g, b uint8) {
	cr, cg, cb, ok := ink.ParseHex(hex)
	if !ok {
		cr, cg, cb = 0, 0, 0
	}
	mix := func(v uint8) uint8 {
		return uint8(float64(v)*alpha + 255*(1-alpha) + 0.5)
	}
	return mix(cr), mix(cg), mix(cb)
}

func pageRect(s ink.Surface) gopdf.Rect {
	return gopdf.Rect{
		W: float64(s.Width) * PointsPerPixel,
		H: float64(s.Height) * PointsPerPixel,
	}
}

// ValidatePDF checks that data is a readable PDF
func ValidatePDF(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("PDF validation failed: %w", err)
	}
	return nil
}
