// Package slides imports PDF pages and images as drawing surfaces whose
// background is the rasterized page.
package slides

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/unidoc/unipdf/v3/common"
	unipdf "github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/render"
	"golang.org/x/image/draw"

	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/logger"
)

const (
	// DefaultDPI is the rasterization density for PDF pages
	DefaultDPI = 150

	// DefaultMaxWidth caps the pixel width of imported backgrounds
	DefaultMaxWidth = 1600
)

func init() {
	common.SetLogger(common.NewConsoleLogger(common.LogLevelError))
}

// Config holds configuration for an importer
type Config struct {
	DPI      int
	MaxWidth int
	Logger   *logger.Logger
}

// Importer turns documents into background surfaces
type Importer struct {
	dpi      int
	maxWidth int
	logger   *logger.Logger
}

// NewImporter creates an importer, filling unset options with defaults
func NewImporter(cfg *Config) *Importer {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	maxWidth := cfg.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Importer{dpi: dpi, maxWidth: maxWidth, logger: log}
}

// PageCount returns the number of pages in a PDF
func (i *Importer) PageCount(pdfPath string) (int, error) {
	ctx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return ctx.PageCount, nil
}

// Validate checks that a PDF is readable before rendering it
func (i *Importer) Validate(pdfPath string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(pdfPath, conf); err != nil {
		return fmt.Errorf("PDF validation failed: %w", err)
	}
	return nil
}

// ImportPDF creates one surface per page, in page order
func (i *Importer) ImportPDF(pdfPath string) ([]ink.Surface, error) {
	log := i.logger.WithFields("pdf", pdfPath, "dpi", i.dpi)

	if err := i.Validate(pdfPath); err != nil {
		return nil, err
	}
	count, err := i.PageCount(pdfPath)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	surfaces := make([]ink.Surface, 0, count)
	for page := 1; page <= count; page++ {
		img, err := i.RenderPage(pdfPath, page)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page, err)
		}

		s, err := i.surfaceFromImage(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		s.Title = fmt.Sprintf("%s p.%d", base, page)
		surfaces = append(surfaces, s)
		log.WithFields("page", page, "total", count).Debug("Imported page")
	}

	log.WithFields("page_count", count).Info("Imported PDF")
	return surfaces, nil
}

// RenderPage rasterizes one 1-based page at the importer's DPI
func (i *Importer) RenderPage(pdfPath string, pageNum int) (image.Image, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	reader, err := unipdf.NewPdfReaderLazy(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if pageNum < 1 || pageNum > numPages {
		return nil, fmt.Errorf("invalid page number %d (PDF has %d pages)", pageNum, numPages)
	}

	page, err := reader.GetPage(pageNum)
	if err != nil {
		return nil, fmt.Errorf("failed to get page %d: %w", pageNum, err)
	}

	mediaBox, err := page.GetMediaBox()
	if err != nil {
		return nil, fmt.Errorf("failed to get media box: %w", err)
	}

	// points are 1/72 inch
	device := render.NewImageDevice()
	device.OutputWidth = int((mediaBox.Urx - mediaBox.Llx) * float64(i.dpi) / 72.0)

	img, err := device.Render(page)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return img, nil
}

// ImportImage creates a surface whose background is a PNG or JPEG image
func (i *Importer) ImportImage(r io.Reader) (ink.Surface, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return ink.Surface{}, fmt.Errorf("failed to decode image: %w", err)
	}
	i.logger.WithFields("format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy()).Debug("Decoded image")
	return i.surfaceFromImage(img)
}

func (i *Importer) surfaceFromImage(img image.Image) (ink.Surface, error) {
	fitted := Fit(img, i.maxWidth)
	dataURL, err := ink.EncodeDataURL(fitted)
	if err != nil {
		return ink.Surface{}, err
	}
	b := fitted.Bounds()
	return ink.NewSurfaceWithBackground(b.Dx(), b.Dy(), dataURL), nil
}

// Fit scales img down to maxWidth preserving aspect ratio. Images already
// narrow enough are returned as they are.
func Fit(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
