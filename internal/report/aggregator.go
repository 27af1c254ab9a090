package report

import (
	"sort"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
)

// CategoryTotal is one row of the category summary table
type CategoryTotal struct {
	Category    models.Category
	Count       int
	AmountCents int64
}

// Summary groups invoices by reimbursement type. Invoices without a type are
// left out of both the rows and the totals.
type Summary struct {
	Rows             []CategoryTotal
	TotalCount       int
	TotalAmountCents int64
}

// Totals is the invoice count and amount over every detail of an application
type Totals struct {
	Count       int
	AmountCents int64
}

// Summarize buckets details by category, rows sorted by category label.
func Summarize(details []*models.InvoiceDetail) Summary {
	buckets := make(map[models.Category]*CategoryTotal)
	for _, d := range details {
		if d == nil || d.Category == "" {
			continue
		}
		b, ok := buckets[d.Category]
		if !ok {
			b = &CategoryTotal{Category: d.Category}
			buckets[d.Category] = b
		}
		b.Count++
		b.AmountCents += d.AmountCents
	}

	s := Summary{Rows: make([]CategoryTotal, 0, len(buckets))}
	for _, b := range buckets {
		s.Rows = append(s.Rows, *b)
		s.TotalCount += b.Count
		s.TotalAmountCents += b.AmountCents
	}
	sort.Slice(s.Rows, func(i, j int) bool {
		return s.Rows[i].Category < s.Rows[j].Category
	})
	return s
}

// HeaderTotals counts every detail, categorized or not.
func HeaderTotals(details []*models.InvoiceDetail) Totals {
	var t Totals
	for _, d := range details {
		if d == nil {
			continue
		}
		t.Count++
		t.AmountCents += d.AmountCents
	}
	return t
}
