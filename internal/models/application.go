package models

import "time"

// Application status values
const (
	ApplicationStatusDraft     = "未提交"
	ApplicationStatusSubmitted = "已提交"
	ApplicationStatusPaid      = "已报销"
)

// Application is a reimbursement request (报销申请) grouping several invoices
type Application struct {
	ID                  int64     `json:"id"`
	SN                  string    `json:"sn"` // 申请编号
	Name                string    `json:"name"`
	CreatedAt           time.Time `json:"created_at"`
	TotalAmountCents    int64     `json:"total_amount_cents"`
	InvoiceCount        int       `json:"invoice_count"`
	Status              string    `json:"status"`
	ReimbursementPerson string    `json:"reimbursement_person"`
	IsPaid              bool      `json:"is_paid"`
	Remarks             string    `json:"remarks"`
	UserID              int64     `json:"user_id"`

	// Set when the application is marked paid
	PaidAt          *time.Time `json:"reimbursement_date,omitempty"`
	ReceiptURL      string     `json:"receipt_url,omitempty"` // bank transfer receipt
	ReceiptFilename string     `json:"receipt_filename,omitempty"`

	// Populated by joins, not stored on the row
	CreatorName string           `json:"creator_name,omitempty"`
	Details     []*InvoiceDetail `json:"details,omitempty"`
}

// User is an account owning applications
type User struct {
	ID        int64     `json:"id"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
