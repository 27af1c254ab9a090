package service

import (
	"context"
	"time"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/invoice"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/report"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/storage"
)

// ApplicationStore is the application persistence the services need
type ApplicationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetWithDetails(ctx context.Context, id int64) (*models.Application, error)
	UpdateTotals(ctx context.Context, id int64) error
}

// ApplicationWriter adds the lifecycle writes of an application
type ApplicationWriter interface {
	ApplicationStore
	Create(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkPaid(ctx context.Context, id int64, paidAt time.Time, receiptFilename, receiptURL string) error
}

// UserStore is the user persistence the application service needs
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// InvoiceStore is the invoice detail persistence the services need
type InvoiceStore interface {
	Create(ctx context.Context, detail *models.InvoiceDetail) error
	GetByID(ctx context.Context, id int64) (*models.InvoiceDetail, error)
	GetByInvoiceNumber(ctx context.Context, number string) (*models.InvoiceDetail, error)
	Update(ctx context.Context, detail *models.InvoiceDetail) error
	UpdateFile(ctx context.Context, id int64, filename, fileURL string) error
	UpdateCategory(ctx context.Context, ids []int64, category models.Category) (int64, error)
}

// UploadStore persists uploaded files
type UploadStore interface {
	SaveUpload(kind, originalName string, content []byte) (*storage.StoredFile, error)
}

// FieldExtractor reads invoice fields from a stored PDF
type FieldExtractor interface {
	Extract(path, keyword string) *invoice.ExtractedFields
}

// ReportBuilder produces the reimbursement report PDF
type ReportBuilder interface {
	Generate(ctx context.Context, app *models.Application) (*report.Result, error)
}

// WorkbookWriter produces the reimbursement workbook
type WorkbookWriter interface {
	Export(app *models.Application, outputPath string) error
}
