package report

import (
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"go.uber.org/zap"
)

type rgb struct{ r, g, b int }

var (
	colorTitle      = rgb{0x33, 0x33, 0x33}
	colorMuted      = rgb{0x66, 0x66, 0x66}
	colorText       = rgb{0, 0, 0}
	colorHeaderFill = rgb{0x44, 0x72, 0xC4}
	colorHeaderText = rgb{0xF5, 0xF5, 0xF5}
	colorGrid       = rgb{0x80, 0x80, 0x80}
	colorRowEven    = rgb{0xFF, 0xFF, 0xFF}
	colorRowOdd     = rgb{0xF2, 0xF2, 0xF2}
	colorTotalFill  = rgb{0xE7, 0xE6, 0xE6}
	colorError      = rgb{0xFF, 0, 0}
)

func (c rgb) text(pdf *fpdf.Fpdf) { pdf.SetTextColor(c.r, c.g, c.b) }
func (c rgb) fill(pdf *fpdf.Fpdf) { pdf.SetFillColor(c.r, c.g, c.b) }
func (c rgb) draw(pdf *fpdf.Fpdf) { pdf.SetDrawColor(c.r, c.g, c.b) }

const (
	pageMargin = 72.0

	titleSize   = 18.0
	snSize      = 12.0
	bodySize    = 10.0
	headingSize = 14.0
	totalSize   = 11.0

	infoRowHeight  = 22.0
	tableRowHeight = 20.0
)

var (
	snWidth         = 18 * PointsPerCM
	infoColWidths   = []float64{3 * PointsPerCM, 6 * PointsPerCM, 3 * PointsPerCM, 6 * PointsPerCM}
	summaryColWidth = []float64{8 * PointsPerCM, 4 * PointsPerCM, 4 * PointsPerCM}
)

const unknownCreator = "未知"

// SummaryBuilder renders the first page of a report: application metadata
// followed by the per-category totals table.
type SummaryBuilder struct {
	font   Font
	logger *zap.Logger
}

// NewSummaryBuilder creates a SummaryBuilder
func NewSummaryBuilder(font Font, logger *zap.Logger) *SummaryBuilder {
	return &SummaryBuilder{
		font:   font,
		logger: logger,
	}
}

// Build writes the one-page summary of app to outputPath.
func (b *SummaryBuilder) Build(app *models.Application, outputPath string) error {
	if app == nil {
		return ErrNilApplication
	}

	pdf := b.render(app)
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		b.logger.Error("Failed to write summary page",
			zap.String("output_path", outputPath),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSummaryFailed, err)
	}

	b.logger.Debug("Summary page written",
		zap.Int64("application_id", app.ID),
		zap.String("output_path", outputPath))
	return nil
}

func (b *SummaryBuilder) render(app *models.Application) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, 0)
	b.font.Register(pdf)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	y := pageMargin

	b.font.use(pdf, titleSize)
	colorTitle.text(pdf)
	pdf.SetXY(pageMargin, y)
	pdf.CellFormat(pageW-2*pageMargin, titleSize+4, app.Name+" - 报销报表", "", 0, "C", false, 0, "")
	y += titleSize + 4 + 30

	b.font.use(pdf, snSize)
	colorMuted.text(pdf)
	pdf.SetXY((pageW-snWidth)/2, y)
	pdf.CellFormat(snWidth, snSize+4, "申请编号："+orDash(app.SN), "", 0, "R", false, 0, "")
	y += snSize + 4 + 20 + 0.3*PointsPerCM

	y = b.drawInfo(pdf, pageW, y, infoRows(app))
	y += 1 * PointsPerCM

	b.font.use(pdf, headingSize)
	colorText.text(pdf)
	pdf.SetXY(pageMargin, y)
	pdf.CellFormat(pageW-2*pageMargin, headingSize+4, "报销类型汇总", "", 0, "L", false, 0, "")
	y += headingSize + 4 + 10

	b.drawSummaryTable(pdf, pageW, y, summaryTable(Summarize(app.Details)))
	return pdf
}

func (b *SummaryBuilder) drawInfo(pdf *fpdf.Fpdf, pageW, y float64, rows [][]string) float64 {
	x0 := (pageW - sum(infoColWidths)) / 2
	b.font.use(pdf, bodySize)
	for _, row := range rows {
		x := x0
		for col, text := range row {
			if col%2 == 0 {
				colorMuted.text(pdf)
			} else {
				colorText.text(pdf)
			}
			pdf.SetXY(x, y)
			pdf.CellFormat(infoColWidths[col], infoRowHeight, text, "", 0, "LM", false, 0, "")
			x += infoColWidths[col]
		}
		y += infoRowHeight
	}
	return y
}

func (b *SummaryBuilder) drawSummaryTable(pdf *fpdf.Fpdf, pageW, y float64, rows [][]string) {
	x0 := (pageW - sum(summaryColWidth)) / 2
	pdf.SetLineWidth(1)
	colorGrid.draw(pdf)

	last := len(rows) - 1
	for i, row := range rows {
		switch {
		case i == 0:
			b.font.use(pdf, bodySize)
			colorHeaderFill.fill(pdf)
			colorHeaderText.text(pdf)
		case i == last:
			b.font.use(pdf, totalSize)
			colorTotalFill.fill(pdf)
			colorText.text(pdf)
		default:
			b.font.use(pdf, bodySize)
			if i%2 == 1 {
				colorRowEven.fill(pdf)
			} else {
				colorRowOdd.fill(pdf)
			}
			colorText.text(pdf)
		}

		x := x0
		for col, text := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(summaryColWidth[col], tableRowHeight, text, "1", 0, "CM", true, 0, "")
			x += summaryColWidth[col]
		}
		y += tableRowHeight
	}
}

// infoRows is the metadata block under the title. Count and amount cover
// every invoice of the application, categorized or not.
func infoRows(app *models.Application) [][]string {
	creator := app.CreatorName
	if creator == "" {
		creator = unknownCreator
	}
	created := ""
	if !app.CreatedAt.IsZero() {
		created = app.CreatedAt.Format("2006-01-02")
	}
	totals := HeaderTotals(app.Details)
	return [][]string{
		{"申请人：", creator, "创建时间：", created},
		{"发票数量：", strconv.Itoa(totals.Count), "总金额：", FormatCurrency(totals.AmountCents)},
	}
}

// summaryTable lays out the header, one row per category and the total row.
func summaryTable(s Summary) [][]string {
	rows := make([][]string, 0, len(s.Rows)+2)
	rows = append(rows, []string{"报销类型", "发票数量", "金额合计（元）"})
	for _, r := range s.Rows {
		rows = append(rows, []string{
			r.Category.String(),
			strconv.Itoa(r.Count),
			FormatCurrency(r.AmountCents),
		})
	}
	rows = append(rows, []string{"合计", strconv.Itoa(s.TotalCount), FormatCurrency(s.TotalAmountCents)})
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
