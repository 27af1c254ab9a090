package models

import "time"

// InvoiceDetail is one invoice (发票) attached to a reimbursement application
type InvoiceDetail struct {
	ID            int64      `json:"id"`
	InvoiceNumber string     `json:"invoice_number" validate:"required,max=100"` // 发票号码, unique across all applications
	InvoiceDate   *time.Time `json:"invoice_date"`                               // 开票日期
	Issuer        string     `json:"issuer" validate:"max=200"`                  // 开票方
	AmountCents   int64      `json:"amount_cents" validate:"gte=0"`              // 价税合计 in fen
	FileURL       string     `json:"file_url" validate:"max=500"`                // /uploads/invoices/...
	Filename      string     `json:"filename" validate:"max=255"`
	Category      Category   `json:"reimbursement_type" validate:"omitempty,category"`
	ApplicationID int64      `json:"application_id" validate:"required,gt=0"`
	CreatedAt     time.Time  `json:"created_at"`
}

// InvoiceDateString renders the invoice date as YYYY-MM-DD, or "" when unknown
func (d *InvoiceDetail) InvoiceDateString() string {
	if d.InvoiceDate == nil {
		return ""
	}
	return d.InvoiceDate.Format("2006-01-02")
}
