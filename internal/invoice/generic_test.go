package invoice

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyword = "标度"

func page(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestExtractPage_VATInvoice(t *testing.T) {
	text := page(
		"电子发票(普通发票)",
		"发票号码: 25112000000012345678",
		"开票日期: 2025年11月4日",
		"购买方信息 名称:北京标度科技有限公司",
		"销售方信息 名称:上海某某餐饮管理有限公司",
		"价税合计(大写) 贰拾叁圆肆角整 (小写)¥23.40",
	)

	f := ExtractPage(text, testKeyword)
	require.NotNil(t, f)

	number, ok := f.InvoiceNumber.Value()
	require.True(t, ok)
	assert.Equal(t, "25112000000012345678", number)

	date, ok := f.InvoiceDate.Value()
	require.True(t, ok)
	assert.Equal(t, "2025-11-04", date.Format(DateLayout))

	issuer, ok := f.Issuer.Value()
	require.True(t, ok)
	assert.Equal(t, "上海某某餐饮管理有限公司", issuer)

	cents, ok := f.AmountCents.Value()
	require.True(t, ok)
	assert.Equal(t, int64(2340), cents)

	assert.Equal(t, map[string]any{
		KeyInvoiceNumber: "25112000000012345678",
		KeyInvoiceDate:   "2025-11-04",
		KeyIssuer:        "上海某某餐饮管理有限公司",
		KeyAmountCents:   int64(2340),
	}, f.Map())
}

func TestExtractPage_SkipsPages(t *testing.T) {
	t.Run("blank page", func(t *testing.T) {
		assert.Nil(t, ExtractPage(" \n\t ", testKeyword))
	})

	t.Run("keyword missing", func(t *testing.T) {
		text := page("发票号码:25112000000012345678", "价税合计¥23.40")
		assert.Nil(t, ExtractPage(text, testKeyword))
	})
}

func TestExtractPage_DegradedFields(t *testing.T) {
	text := page(
		"购买方:标度科技",
		"发票号码:见附件",
		"价税合计¥23.4",
		"开票日期:2025年13月01日",
	)

	f := ExtractPage(text, testKeyword)
	require.NotNil(t, f)

	assert.Equal(t, FieldRaw, f.InvoiceNumber.State())
	assert.Equal(t, FieldRaw, f.AmountCents.State())
	assert.Equal(t, FieldRaw, f.InvoiceDate.State())

	m := f.Map()
	assert.Equal(t, "发票号码:见附件", m[KeyInvoiceNumber])
	assert.Equal(t, "价税合计¥23.4", m[KeyAmountCents])
	assert.Equal(t, "开票日期:2025年13月01日", m[KeyInvoiceDate])
}

func TestExtractPage_LabelPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantAmount bool
		wantNumber bool
		wantDate   bool
	}{
		{"total beats number", "价税合计¥100.00发票号码1234567890", true, false, false},
		{"number beats date", "发票号码:1234567890开票日期:2025年1月2日", false, true, false},
		{"date alone", "开票日期:2025年1月2日", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ExtractPage(page("标度科技", tt.line), testKeyword)
			require.NotNil(t, f)
			assert.Equal(t, tt.wantAmount, f.AmountCents.IsSet())
			assert.Equal(t, tt.wantNumber, f.InvoiceNumber.IsSet())
			assert.Equal(t, tt.wantDate, f.InvoiceDate.IsSet())
		})
	}
}

func TestExtractPage_LaterLabelOverwrites(t *testing.T) {
	text := page(
		"标度科技",
		"发票号码:1111111111",
		"发票号码:2222222222",
	)

	f := ExtractPage(text, testKeyword)
	require.NotNil(t, f)
	number, _ := f.InvoiceNumber.Value()
	assert.Equal(t, "2222222222", number)
}

func TestExtractPage_IssuerSelection(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "short candidate replaced by later long one",
			lines: []string{"购买方:标度", "销:A", "售:ABCDEFGHIJ"},
			want:  "ABCDEFGHIJ",
		},
		{
			name:  "long candidate kept against later short one",
			lines: []string{"购买方:标度", "售:ABCDEFGHIJ", "销:B"},
			want:  "ABCDEFGHIJ",
		},
		{
			name:  "long candidate kept against later long one",
			lines: []string{"购买方:标度", "售:ABCDEFGHIJ", "销:KLMNOPQRST"},
			want:  "ABCDEFGHIJ",
		},
		{
			name:  "short issuer falls back to other company",
			lines: []string{"购买方名称:标度科技", "地址:某某公司", "销:短"},
			want:  "某某公司",
		},
		{
			name:  "fallback with no other company clears issuer",
			lines: []string{"购买方名称:标度科技", "销:短"},
			want:  "",
		},
		{
			name:  "keyword alone does not trigger fallback",
			lines: []string{"标度", "地址:某某公司", "销:短"},
			want:  "短",
		},
		{
			name:  "full-width colon",
			lines: []string{"标度", "销售方名称：某某科技有限公司"},
			want:  "某某科技有限公司",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ExtractPage(page(tt.lines...), testKeyword)
			require.NotNil(t, f)
			issuer, ok := f.Issuer.Value()
			require.True(t, ok)
			assert.Equal(t, tt.want, issuer)
		})
	}
}

func TestExtractPage_NoIssuerLine(t *testing.T) {
	f := ExtractPage(page("标度", "发票号码:1234567890"), testKeyword)
	require.NotNil(t, f)
	assert.False(t, f.Issuer.IsSet())
	assert.NotContains(t, f.Map(), KeyIssuer)
}

func TestExtractPage_AmountCents(t *testing.T) {
	for _, cents := range []int64{0, 1, 10, 99, 100, 2340, 12345, 100001, 987654321} {
		t.Run(fmt.Sprint(cents), func(t *testing.T) {
			line := fmt.Sprintf("价税合计¥%d.%02d", cents/100, cents%100)
			f := ExtractPage(page("标度", line), testKeyword)
			require.NotNil(t, f)
			got, ok := f.AmountCents.Value()
			require.True(t, ok)
			assert.Equal(t, cents, got)
		})
	}
}

func TestExtractPage_AmountOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantCents int64
		wantState FieldState
	}{
		{"largest representable", "价税合计¥92233720368547757.99", 9223372036854775799, FieldParsed},
		{"one yuan past the limit", "价税合计¥92233720368547758.00", 0, FieldRaw},
		{"seventeen zeros", "价税合计¥100000000000000000.00", 0, FieldRaw},
		{"beyond int64", "价税合计¥99999999999999999999.00", 0, FieldRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ExtractPage(page("标度科技", tt.line), testKeyword)
			require.NotNil(t, f)
			assert.Equal(t, tt.wantState, f.AmountCents.State())

			cents, ok := f.AmountCents.Value()
			if tt.wantState == FieldParsed {
				require.True(t, ok)
				assert.Equal(t, tt.wantCents, cents)
				return
			}
			assert.False(t, ok)
			assert.Equal(t, tt.line, f.Map()[KeyAmountCents])
		})
	}
}

func TestExtractPage_DateNormalization(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() == 2024; d = d.AddDate(0, 0, 17) {
		line := fmt.Sprintf("开票日期:%d年%d月%d日", d.Year(), int(d.Month()), d.Day())
		f := ExtractPage(page("标度", line), testKeyword)
		require.NotNil(t, f)
		got, ok := f.InvoiceDate.Value()
		require.True(t, ok, line)
		assert.Equal(t, d.Format(DateLayout), got.Format(DateLayout))
	}
}
