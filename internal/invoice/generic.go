package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	labelInvoiceNumber = "发票号码"
	labelTotalAmount   = "价税合计"
	labelIssueDate     = "开票日期"
	companyWord        = "公司"

	// An issuer shorter than this is treated as noise and may be replaced.
	minIssuerRunes = 8

	// Largest yuan value whose cents still fit in an int64.
	maxYuan = (math.MaxInt64 - 99) / 100
)

var (
	invoiceNumberPattern = regexp.MustCompile(`\d{10,}`)
	totalAmountPattern   = regexp.MustCompile(`¥(\d+)\.(\d{2})`)
)

// extractGeneric scans the lines of a VAT invoice page. Labelled lines are
// matched with the precedence total > number > date > company line, and a
// later labelled line replaces an earlier value of the same field.
func extractGeneric(lines []string, keyword string) *ExtractedFields {
	var (
		f            ExtractedFields
		issuer       string
		issuerSet    bool
		ownCompany   bool
		otherCompany string
	)

	for _, line := range lines {
		if strings.Contains(line, companyWord) && !strings.Contains(line, keyword) {
			otherCompany = line
		}

		switch {
		case strings.Contains(line, labelTotalAmount):
			f.AmountCents = totalAmount(line)
		case strings.Contains(line, labelInvoiceNumber):
			if m := invoiceNumberPattern.FindString(line); m != "" {
				f.InvoiceNumber = Parsed(m)
			} else {
				f.InvoiceNumber = Raw[string](line)
			}
		case strings.Contains(line, labelIssueDate):
			if d, ok := parseDate(line); ok {
				f.InvoiceDate = Parsed(d)
			} else {
				f.InvoiceDate = Raw[time.Time](line)
			}
		case strings.Contains(line, keyword) && line != keyword:
			ownCompany = true
		}

		if isSellerLine(line) && utf8.RuneCountInString(issuer) < minIssuerRunes {
			issuer = line
			issuerSet = true
		}
	}

	if utf8.RuneCountInString(issuer) < minIssuerRunes && ownCompany {
		issuer = otherCompany
		issuerSet = true
	}
	if issuerSet {
		f.Issuer = Parsed(cleanIssuer(issuer))
	}
	return &f
}

func isSellerLine(line string) bool {
	return strings.Contains(line, "售") || strings.Contains(line, "销")
}

// totalAmount converts "¥123.45" to cents with integer arithmetic.
func totalAmount(line string) Field[int64] {
	m := totalAmountPattern.FindStringSubmatch(line)
	if m == nil {
		return Raw[int64](line)
	}
	yuan, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || yuan > maxYuan {
		return Raw[int64](line)
	}
	fen, _ := strconv.ParseInt(m[2], 10, 64)
	return Parsed(yuan*100 + fen)
}

// cleanIssuer keeps the text after the last colon of a "label:name" line.
func cleanIssuer(s string) string {
	s = strings.ReplaceAll(s, "：", ":")
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}
