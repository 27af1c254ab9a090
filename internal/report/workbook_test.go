package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestWorkbookExporter_Export(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.xlsx")

	exporter := NewWorkbookExporter(zap.NewNop())
	require.NoError(t, exporter.Export(sampleApplication(), out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"汇总", "明细"}, f.GetSheetList())

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "十一月差旅 - 报销报表", cell("汇总", "A1"))
	assert.Equal(t, "2025110409301", cell("汇总", "B2"))
	assert.Equal(t, "3", cell("汇总", "B4"))
	assert.Equal(t, "133.40", cell("汇总", "D4"))
	assert.Equal(t, "壹佰叁拾叁元肆角", cell("汇总", "B5"))
	assert.Equal(t, "报销类型", cell("汇总", "A7"))
	assert.Equal(t, "差旅费", cell("汇总", "A8"))
	assert.Equal(t, "合计", cell("汇总", "A10"))

	assert.Equal(t, "发票号码", cell("明细", "B1"))
	assert.Equal(t, "1", cell("明细", "B2"))
	assert.Equal(t, "23.40", cell("明细", "F3"))
	assert.Equal(t, "", cell("明细", "E4"))
}

func TestWorkbookExporter_SkipsNilDetails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.xlsx")
	app := sampleApplication()
	app.Details = append([]*models.InvoiceDetail{nil}, app.Details[0], nil, app.Details[1])

	require.NoError(t, NewWorkbookExporter(zap.NewNop()).Export(app, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("明细")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "1"}, rows[1][:2])
	assert.Equal(t, []string{"2", "2"}, rows[2][:2])
}

func TestWorkbookExporter_NilApplication(t *testing.T) {
	err := NewWorkbookExporter(zap.NewNop()).Export(nil, filepath.Join(t.TempDir(), "x.xlsx"))
	assert.ErrorIs(t, err, ErrNilApplication)
}
