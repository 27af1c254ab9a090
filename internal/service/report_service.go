package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/report"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/repository"
)

// ReportFile is a generated artifact ready for download
type ReportFile struct {
	Path         string
	DownloadName string
	Report       *report.Result // nil for workbooks
}

// ReportService produces downloadable reports for applications
type ReportService struct {
	apps       ApplicationStore
	reports    ReportBuilder
	workbooks  WorkbookWriter
	reportsDir string
	now        func() time.Time
	logger     *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(apps ApplicationStore, reports ReportBuilder, workbooks WorkbookWriter, reportsDir string, logger *zap.Logger) *ReportService {
	return &ReportService{
		apps:       apps,
		reports:    reports,
		workbooks:  workbooks,
		reportsDir: reportsDir,
		now:        time.Now,
		logger:     logger,
	}
}

// GenerateReport builds the summary-plus-gallery PDF for an application
func (s *ReportService) GenerateReport(ctx context.Context, appID int64) (*ReportFile, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}

	result, err := s.reports.Generate(ctx, app)
	if err != nil {
		return nil, err
	}
	if result.FailedItems > 0 {
		s.logger.Warn("Report generated with unreadable attachments",
			zap.Int64("application_id", appID),
			zap.Int("failed", result.FailedItems))
	}

	return &ReportFile{
		Path:         result.Path,
		DownloadName: fmt.Sprintf("%s_报销单.pdf", app.Name),
		Report:       result,
	}, nil
}

// ExportWorkbook writes the category summary and detail sheets as xlsx
func (s *ReportService) ExportWorkbook(ctx context.Context, appID int64) (*ReportFile, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("workbook_%d_%s.xlsx", app.ID, s.now().Format("20060102150405"))
	out := filepath.Join(s.reportsDir, name)
	if err := s.workbooks.Export(app, out); err != nil {
		return nil, err
	}

	return &ReportFile{
		Path:         out,
		DownloadName: fmt.Sprintf("%s_报销明细.xlsx", app.Name),
	}, nil
}

func (s *ReportService) load(ctx context.Context, appID int64) (*models.Application, error) {
	app, err := s.apps.GetWithDetails(ctx, appID)
	if errors.Is(err, repository.ErrApplicationNotFound) {
		return nil, ErrApplicationNotFound
	}
	return app, err
}
