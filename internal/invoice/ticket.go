package invoice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	ticketMarker = "电子客票号"

	// RailwayIssuer is the issuer reported for every electronic rail ticket.
	RailwayIssuer = "中国铁路总公司"

	yuanGlyph = "￥"
)

var (
	ticketNumberPattern = regexp.MustCompile(`\d{20,}`)
	leadingNumber       = regexp.MustCompile(`^\d+(?:\.\d+)?`)
)

// extractTicket reads an electronic passenger ticket. Tickets print no
// seller block, so the issuer is fixed and only the number, date and fare
// are taken from the page.
func extractTicket(lines []string) *ExtractedFields {
	f := &ExtractedFields{Issuer: Parsed(RailwayIssuer)}
	fareSeen := false

	for _, line := range lines {
		if !f.InvoiceNumber.IsSet() {
			if idx := strings.Index(line, labelInvoiceNumber); idx >= 0 {
				if m := ticketNumberPattern.FindString(line[idx:]); m != "" {
					f.InvoiceNumber = Parsed(m)
				}
			}
		}
		if !f.InvoiceDate.IsSet() && strings.Contains(line, labelIssueDate) {
			if d, ok := parseDate(line); ok {
				f.InvoiceDate = Parsed(d)
			}
		}
		if !fareSeen {
			if idx := strings.Index(line, yuanGlyph); idx >= 0 {
				fareSeen = true
				if cents, ok := fareCents(line[idx+len(yuanGlyph):]); ok {
					f.AmountCents = Parsed(cents)
				}
			}
		}
	}
	return f
}

// fareCents parses the number at the start of s and rounds it to cents.
func fareCents(s string) (int64, bool) {
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 || v > maxYuan {
		return 0, false
	}
	return int64(math.Round(v * 100)), true
}
