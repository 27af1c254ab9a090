package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"go.uber.org/zap"
)

const (
	galleryTextSize = 8.0
	placeholderLead = 15.0
	placeholderStep = 12.0
	loadErrorText   = "无法加载文件"
	notAvailable    = "N/A"
)

var rasterExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
}

// GalleryResult describes a composed gallery
type GalleryResult struct {
	Pages  int
	Items  int
	Failed []*ItemError
}

type galleryItem struct {
	path   string
	detail *models.InvoiceDetail
}

// Compositor lays the source file of every invoice out on A4 pages, two per
// page. PDFs are rasterized first; when no rasterizer is configured or
// rendering fails, a text summary of the invoice is printed instead.
type Compositor struct {
	font       Font
	resolver   FileResolver
	rasterizer Rasterizer
	tempDir    string
	logger     *zap.Logger
}

// NewCompositor creates a Compositor. rasterizer may be nil. Temporary page
// images are written to tempDir.
func NewCompositor(font Font, resolver FileResolver, rasterizer Rasterizer, tempDir string, logger *zap.Logger) *Compositor {
	return &Compositor{
		font:       font,
		resolver:   resolver,
		rasterizer: rasterizer,
		tempDir:    tempDir,
		logger:     logger,
	}
}

// Compose writes the gallery for details to outputPath. Details without a
// file on disk are left out. When nothing remains an empty file is written.
func (c *Compositor) Compose(details []*models.InvoiceDetail, outputPath string) (*GalleryResult, error) {
	items := c.collect(details)
	result := &GalleryResult{Items: len(items)}

	if len(items) == 0 {
		if err := os.WriteFile(outputPath, nil, 0644); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGalleryFailed, err)
		}
		c.logger.Debug("No invoice files to lay out", zap.String("output_path", outputPath))
		return result, nil
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	c.font.Register(pdf)

	grid := GalleryGrid(pdf.GetPageSize())
	runID := uuid.NewString()[:8]

	for i, item := range items {
		pos := i % grid.PerPage()
		if pos == 0 {
			pdf.AddPage()
			result.Pages++
		}
		cell := grid.Cell(pos)
		drawBorder(pdf, cell)

		if err := c.drawItem(pdf, runID, i, item, cell); err != nil {
			var itemErr *ItemError
			if !errors.As(err, &itemErr) {
				return nil, err
			}
			c.logger.Warn("Failed to lay out invoice file",
				zap.Int("index", itemErr.Index),
				zap.String("path", itemErr.Path),
				zap.Error(itemErr.Err))
			c.drawLoadError(pdf, cell)
			result.Failed = append(result.Failed, itemErr)
		}
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		c.logger.Error("Failed to write invoice gallery",
			zap.String("output_path", outputPath),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGalleryFailed, err)
	}

	c.logger.Debug("Invoice gallery written",
		zap.String("output_path", outputPath),
		zap.Int("items", result.Items),
		zap.Int("pages", result.Pages),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// collect keeps the details whose file resolves to an existing regular file.
func (c *Compositor) collect(details []*models.InvoiceDetail) []galleryItem {
	items := make([]galleryItem, 0, len(details))
	for _, d := range details {
		if d == nil || d.FileURL == "" {
			continue
		}
		path, err := c.resolver.ResolveURL(d.FileURL)
		if err != nil {
			c.logger.Warn("Invoice file URL not resolvable",
				zap.String("file_url", d.FileURL),
				zap.Error(err))
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			c.logger.Debug("Invoice file missing", zap.String("path", path))
			continue
		}
		items = append(items, galleryItem{path: path, detail: d})
	}
	return items
}

func (c *Compositor) drawItem(pdf *fpdf.Fpdf, runID string, idx int, item galleryItem, cell Cell) error {
	ext := strings.ToLower(filepath.Ext(item.path))
	switch {
	case ext == ".pdf":
		return c.drawPDF(pdf, runID, idx, item, cell)
	case rasterExts[ext]:
		return c.drawImage(pdf, idx, item.path, cell)
	default:
		c.logger.Debug("Unsupported invoice file type, border only",
			zap.String("path", item.path))
		return nil
	}
}

func (c *Compositor) drawPDF(pdf *fpdf.Fpdf, runID string, idx int, item galleryItem, cell Cell) error {
	if c.rasterizer == nil {
		c.drawPlaceholder(pdf, item.detail, cell)
		return nil
	}

	tmp := filepath.Join(c.tempDir, fmt.Sprintf("temp_pdf_img_%s_%d.png", runID, idx))
	defer removeQuietly(tmp, c.logger)

	if err := c.rasterizer.RenderFirstPage(item.path, tmp); err != nil {
		c.logger.Warn("PDF rendering failed, printing invoice details instead",
			zap.String("path", item.path),
			zap.Error(err))
		c.drawPlaceholder(pdf, item.detail, cell)
		return nil
	}
	return c.drawImage(pdf, idx, tmp, cell)
}

func (c *Compositor) drawImage(pdf *fpdf.Fpdf, idx int, path string, cell Cell) error {
	img, err := loadOpaqueImage(path)
	if err != nil {
		return &ItemError{Index: idx, Path: path, Err: err}
	}
	buf, err := encodePNG(img)
	if err != nil {
		return &ItemError{Index: idx, Path: path, Err: err}
	}

	b := img.Bounds()
	place := cell.Fit(float64(b.Dx()), float64(b.Dy()), cellPadding)

	name := fmt.Sprintf("invoice_%d", idx)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, buf)
	pdf.ImageOptions(name, place.X, place.Y, place.W, place.H, false, opts, 0, "")
	return nil
}

func (c *Compositor) drawPlaceholder(pdf *fpdf.Fpdf, d *models.InvoiceDetail, cell Cell) {
	c.font.use(pdf, galleryTextSize)
	colorText.text(pdf)
	x := cell.X + cellPadding
	y := cell.Y + placeholderLead
	for _, line := range placeholderLines(d) {
		pdf.Text(x, y, line)
		y += placeholderStep
	}
}

func (c *Compositor) drawLoadError(pdf *fpdf.Fpdf, cell Cell) {
	c.font.use(pdf, galleryTextSize)
	colorError.text(pdf)
	pdf.Text(cell.X+cellPadding, cell.Y+cell.H/2, loadErrorText)
	colorText.text(pdf)
}

func drawBorder(pdf *fpdf.Fpdf, cell Cell) {
	colorGrid.draw(pdf)
	pdf.SetLineWidth(0.5)
	pdf.Rect(cell.X, cell.Y, cell.W, cell.H, "D")
}

// placeholderLines summarizes an invoice whose PDF could not be rendered.
func placeholderLines(d *models.InvoiceDetail) []string {
	amount := "金额: " + notAvailable
	if d.AmountCents != 0 {
		amount = "金额: " + FormatCurrency(d.AmountCents)
	}
	return []string{
		"发票号: " + orNA(d.InvoiceNumber),
		"开票日期: " + orNA(d.InvoiceDateString()),
		amount,
		"类型: " + orNA(d.Category.String()),
		"PDF文件",
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func removeQuietly(path string, logger *zap.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Debug("Failed to remove temporary file",
			zap.String("path", path),
			zap.Error(err))
	}
}
