package report

import (
	"fmt"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	summarySheet = "汇总"
	detailSheet  = "明细"
)

var detailHeader = []any{"序号", "发票号码", "开票日期", "开票方", "报销类型", "金额（元）", "文件"}

// WorkbookExporter writes the category summary and the invoice list of an
// application to an xlsx file for the finance team.
type WorkbookExporter struct {
	logger *zap.Logger
}

// NewWorkbookExporter creates a WorkbookExporter
func NewWorkbookExporter(logger *zap.Logger) *WorkbookExporter {
	return &WorkbookExporter{logger: logger}
}

// Export writes the workbook of app to outputPath.
func (w *WorkbookExporter) Export(app *models.Application, outputPath string) error {
	if app == nil {
		return ErrNilApplication
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	w.fillSummary(f, app)
	w.fillDetails(f, app.Details)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	w.logger.Info("Workbook exported",
		zap.Int64("application_id", app.ID),
		zap.String("output_path", outputPath))
	return nil
}

func (w *WorkbookExporter) fillSummary(f *excelize.File, app *models.Application) {
	totals := HeaderTotals(app.Details)
	creator := app.CreatorName
	if creator == "" {
		creator = unknownCreator
	}

	w.setRow(f, summarySheet, 1, []any{app.Name + " - 报销报表"})
	w.setRow(f, summarySheet, 2, []any{"申请编号", orDash(app.SN)})
	w.setRow(f, summarySheet, 3, []any{"申请人", creator, "创建时间", app.CreatedAt.Format("2006-01-02")})
	w.setRow(f, summarySheet, 4, []any{"发票数量", totals.Count, "总金额", FormatYuan(totals.AmountCents)})
	w.setRow(f, summarySheet, 5, []any{"大写金额", ChineseAmount(totals.AmountCents)})

	row := 7
	for _, cells := range summaryTable(Summarize(app.Details)) {
		values := make([]any, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		w.setRow(f, summarySheet, row, values)
		row++
	}
}

func (w *WorkbookExporter) fillDetails(f *excelize.File, details []*models.InvoiceDetail) {
	w.setRow(f, detailSheet, 1, detailHeader)
	n := 0
	for _, d := range details {
		if d == nil {
			continue
		}
		n++
		w.setRow(f, detailSheet, n+1, []any{
			n,
			d.InvoiceNumber,
			d.InvoiceDateString(),
			d.Issuer,
			d.Category.String(),
			FormatYuan(d.AmountCents),
			d.Filename,
		})
	}
}

// setRow writes values starting at column A of row
func (w *WorkbookExporter) setRow(f *excelize.File, sheet string, row int, values []any) {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.logger.Warn("Invalid cell coordinates", zap.Int("row", row), zap.Error(err))
		return
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		w.logger.Warn("Failed to set row values",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
