package report

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// DefaultRenderDPI is a 2x zoom of the 72 DPI PDF user space.
const DefaultRenderDPI = 144.0

// FitzRasterizer renders PDF pages through MuPDF.
type FitzRasterizer struct {
	dpi float64
}

// NewFitzRasterizer creates a rasterizer rendering at dpi (DefaultRenderDPI when <= 0).
func NewFitzRasterizer(dpi float64) *FitzRasterizer {
	if dpi <= 0 {
		dpi = DefaultRenderDPI
	}
	return &FitzRasterizer{dpi: dpi}
}

// RenderFirstPage writes the first page of pdfPath as a PNG to pngPath.
func (r *FitzRasterizer) RenderFirstPage(pdfPath, pngPath string) error {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return ErrEmptyDocument
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	if err := imaging.Save(img, pngPath); err != nil {
		return fmt.Errorf("failed to save page image: %w", err)
	}
	return nil
}
