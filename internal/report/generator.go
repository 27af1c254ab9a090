package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"go.uber.org/zap"
)

const (
	tempStampLayout  = "20060102150405.000000"
	finalStampLayout = "20060102150405"

	// TempPrefix marks intermediate artifacts in the reports directory
	TempPrefix = "temp_"
)

// Result describes a generated report
type Result struct {
	Path         string
	GalleryPages int
	GalleryItems int
	FailedItems  int
}

// Generator produces the reimbursement report of an application: a summary
// page followed by the invoice gallery, merged into one PDF.
type Generator struct {
	summary    SummaryRenderer
	gallery    GalleryComposer
	merger     DocumentMerger
	reportsDir string
	now        func() time.Time
	logger     *zap.Logger
}

// NewGenerator creates a Generator writing into reportsDir
func NewGenerator(
	summary SummaryRenderer,
	gallery GalleryComposer,
	merger DocumentMerger,
	reportsDir string,
	logger *zap.Logger,
) *Generator {
	return &Generator{
		summary:    summary,
		gallery:    gallery,
		merger:     merger,
		reportsDir: reportsDir,
		now:        time.Now,
		logger:     logger,
	}
}

// Generate builds the report of app and returns the path of the merged PDF.
// Intermediate files are removed whatever the outcome.
func (g *Generator) Generate(ctx context.Context, app *models.Application) (*Result, error) {
	if app == nil {
		return nil, ErrNilApplication
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := g.now()
	short := uuid.NewString()[:8]
	tag := now.Format(tempStampLayout) + "_" + short
	summaryPath := filepath.Join(g.reportsDir, fmt.Sprintf("%ssummary_%s.pdf", TempPrefix, tag))
	galleryPath := filepath.Join(g.reportsDir, fmt.Sprintf("%sinvoices_%s.pdf", TempPrefix, tag))
	outputPath := filepath.Join(g.reportsDir,
		fmt.Sprintf("%s_%s_%s_报销单.pdf", safeName(app.Name), now.Format(finalStampLayout), short))

	defer g.cleanup(summaryPath, galleryPath)

	g.logger.Info("Starting report generation",
		zap.Int64("application_id", app.ID),
		zap.Int("detail_count", len(app.Details)))

	if err := g.summary.Build(app, summaryPath); err != nil {
		return nil, err
	}

	gallery, err := g.gallery.Compose(app.Details, galleryPath)
	if err != nil {
		return nil, err
	}

	if _, err := g.merger.Merge([]string{summaryPath, galleryPath}, outputPath); err != nil {
		return nil, err
	}

	result := &Result{
		Path:         outputPath,
		GalleryPages: gallery.Pages,
		GalleryItems: gallery.Items,
		FailedItems:  len(gallery.Failed),
	}
	g.logger.Info("Report generated",
		zap.Int64("application_id", app.ID),
		zap.String("path", outputPath),
		zap.Int("gallery_pages", result.GalleryPages),
		zap.Int("failed_items", result.FailedItems))
	return result, nil
}

func (g *Generator) cleanup(paths ...string) {
	for _, p := range paths {
		removeQuietly(p, g.logger)
	}
}

// safeName strips path separators from an application name used as a file name.
func safeName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(strings.TrimSpace(name))
	if name == "" {
		return "report"
	}
	return name
}

// IsTempArtifact reports whether name is an intermediate report file.
func IsTempArtifact(name string) bool {
	return strings.HasPrefix(filepath.Base(name), TempPrefix)
}
