package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// InvoiceDetailRepository handles invoice detail database operations
type InvoiceDetailRepository struct {
	db       *sql.DB
	validate *validator.Validate
	logger   *zap.Logger
}

// NewInvoiceDetailRepository creates a new invoice detail repository
func NewInvoiceDetailRepository(db *sql.DB, logger *zap.Logger) *InvoiceDetailRepository {
	return &InvoiceDetailRepository{
		db:       db,
		validate: NewValidator(),
		logger:   logger,
	}
}

// Create validates and inserts an invoice detail. A repeated invoice number
// yields ErrDuplicateInvoice.
func (r *InvoiceDetailRepository) Create(ctx context.Context, detail *models.InvoiceDetail) error {
	if err := r.validate.Struct(detail); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDetail, err)
	}
	if detail.CreatedAt.IsZero() {
		detail.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO invoice_details (
			invoice_number, invoice_date, issuer, amount, file_url, filename,
			reimbursement_type, application_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		detail.InvoiceNumber,
		formatDate(detail.InvoiceDate),
		detail.Issuer,
		detail.AmountCents,
		detail.FileURL,
		detail.Filename,
		string(detail.Category),
		detail.ApplicationID,
		detail.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateInvoice, detail.InvoiceNumber)
		}
		r.logger.Error("Failed to create invoice detail",
			zap.String("invoice_number", detail.InvoiceNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice detail: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	detail.ID = id
	return nil
}

// GetByID retrieves a detail by its ID
func (r *InvoiceDetailRepository) GetByID(ctx context.Context, id int64) (*models.InvoiceDetail, error) {
	detail, err := scanDetail(r.db.QueryRowContext(ctx, detailColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice detail: %w", err)
	}
	return detail, nil
}

// GetByInvoiceNumber retrieves a detail by its invoice number
func (r *InvoiceDetailRepository) GetByInvoiceNumber(ctx context.Context, number string) (*models.InvoiceDetail, error) {
	query := detailColumns + ` WHERE invoice_number = ?`

	detail, err := scanDetail(r.db.QueryRowContext(ctx, query, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice detail: %w", err)
	}
	return detail, nil
}

// UpdateFile points an existing detail at a newly uploaded file
func (r *InvoiceDetailRepository) UpdateFile(ctx context.Context, id int64, filename, fileURL string) error {
	query := `UPDATE invoice_details SET filename = ?, file_url = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, filename, fileURL, id)
	if err != nil {
		r.logger.Error("Failed to update invoice file", zap.Int64("detail_id", id), zap.Error(err))
		return fmt.Errorf("failed to update invoice file: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// Update rewrites the editable fields of a detail: number, date, issuer,
// amount and category. Moving the detail to another application or file
// is not done here.
func (r *InvoiceDetailRepository) Update(ctx context.Context, detail *models.InvoiceDetail) error {
	if err := r.validate.Struct(detail); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDetail, err)
	}

	query := `
		UPDATE invoice_details SET
			invoice_number = ?, invoice_date = ?, issuer = ?, amount = ?, reimbursement_type = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		detail.InvoiceNumber,
		formatDate(detail.InvoiceDate),
		detail.Issuer,
		detail.AmountCents,
		string(detail.Category),
		detail.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateInvoice, detail.InvoiceNumber)
		}
		r.logger.Error("Failed to update invoice detail", zap.Int64("detail_id", detail.ID), zap.Error(err))
		return fmt.Errorf("failed to update invoice detail: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// UpdateCategory sets the reimbursement type of every listed detail and
// returns how many rows changed. Unknown IDs are ignored.
func (r *InvoiceDetailRepository) UpdateCategory(ctx context.Context, ids []int64, category models.Category) (int64, error) {
	if err := r.validate.Var(string(category), "required,category"); err != nil {
		return 0, fmt.Errorf("%w: reimbursement type %q", ErrInvalidDetail, category)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `UPDATE invoice_details SET reimbursement_type = ? WHERE id IN (` + placeholders + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(category))
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update invoice categories", zap.Int("count", len(ids)), zap.Error(err))
		return 0, fmt.Errorf("failed to update categories: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count updated rows: %w", err)
	}
	return n, nil
}

// ListByApplication returns the details of an application ordered by id
func (r *InvoiceDetailRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*models.InvoiceDetail, error) {
	query := detailColumns + ` WHERE application_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice details: %w", err)
	}
	defer rows.Close()

	var details []*models.InvoiceDetail
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice detail: %w", err)
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

const detailColumns = `
	SELECT id, invoice_number, COALESCE(invoice_date, ''), issuer, amount, file_url,
		filename, reimbursement_type, application_id, created_at
	FROM invoice_details`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetail(row rowScanner) (*models.InvoiceDetail, error) {
	var d models.InvoiceDetail
	var date, category string
	err := row.Scan(
		&d.ID,
		&d.InvoiceNumber,
		&date,
		&d.Issuer,
		&d.AmountCents,
		&d.FileURL,
		&d.Filename,
		&category,
		&d.ApplicationID,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Category = models.Category(category)
	if date != "" {
		if t, err := time.Parse(dateLayout, date); err == nil {
			d.InvoiceDate = &t
		}
	}
	return &d, nil
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
