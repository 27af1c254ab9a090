package report

import "github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"

// SummaryRenderer writes the summary page of an application
type SummaryRenderer interface {
	Build(app *models.Application, outputPath string) error
}

// GalleryComposer lays invoice files out two per page
type GalleryComposer interface {
	Compose(details []*models.InvoiceDetail, outputPath string) (*GalleryResult, error)
}

// DocumentMerger concatenates PDF files in order
type DocumentMerger interface {
	Merge(inputs []string, outputPath string) (*MergeResult, error)
}

// Rasterizer renders the first page of a PDF to a PNG file
type Rasterizer interface {
	RenderFirstPage(pdfPath, pngPath string) error
}

// FileResolver maps a stored file URL to a path on disk
type FileResolver interface {
	ResolveURL(fileURL string) (string, error)
}
