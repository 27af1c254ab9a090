package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"go.uber.org/zap"
)

// ApplicationRepository handles reimbursement application operations
type ApplicationRepository struct {
	db      *sql.DB
	details *InvoiceDetailRepository
	logger  *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sql.DB, details *InvoiceDetailRepository, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:      db,
		details: details,
		logger:  logger,
	}
}

// Create inserts an application. Zero CreatedAt and empty Status take the
// column defaults.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusDraft
	}

	query := `
		INSERT INTO invoice_applications (
			sn, name, created_at, total_amount, invoice_count, status,
			reimbursement_person, is_paid, remarks, user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		app.SN,
		app.Name,
		app.CreatedAt,
		app.TotalAmountCents,
		app.InvoiceCount,
		app.Status,
		app.ReimbursementPerson,
		app.IsPaid,
		app.Remarks,
		nullableID(app.UserID),
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	app.ID = id
	return nil
}

// GetByID retrieves an application with its creator name, without details
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	query := `
		SELECT a.id, a.sn, a.name, a.created_at, a.total_amount, a.invoice_count,
			a.status, a.reimbursement_person, a.is_paid, a.remarks,
			COALESCE(a.user_id, 0), a.reimbursement_date, a.receipt_url, a.receipt_filename,
			COALESCE(u.name, '')
		FROM invoice_applications a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.id = ?
	`

	var app models.Application
	var paidAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&app.ID,
		&app.SN,
		&app.Name,
		&app.CreatedAt,
		&app.TotalAmountCents,
		&app.InvoiceCount,
		&app.Status,
		&app.ReimbursementPerson,
		&app.IsPaid,
		&app.Remarks,
		&app.UserID,
		&paidAt,
		&app.ReceiptURL,
		&app.ReceiptFilename,
		&app.CreatorName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.Int64("application_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if paidAt.Valid {
		app.PaidAt = &paidAt.Time
	}
	return &app, nil
}

// GetWithDetails retrieves an application and its invoice details ordered by id
func (r *ApplicationRepository) GetWithDetails(ctx context.Context, id int64) (*models.Application, error) {
	app, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := r.details.ListByApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Details = details
	return app, nil
}

// UpdateTotals recomputes invoice count and total amount over all details
func (r *ApplicationRepository) UpdateTotals(ctx context.Context, id int64) error {
	query := `
		UPDATE invoice_applications SET
			invoice_count = (SELECT COUNT(*) FROM invoice_details WHERE application_id = ?),
			total_amount = (SELECT COALESCE(SUM(amount), 0) FROM invoice_details WHERE application_id = ?)
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, id, id, id)
	if err != nil {
		r.logger.Error("Failed to update application totals", zap.Int64("application_id", id), zap.Error(err))
		return fmt.Errorf("failed to update totals: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// UpdateStatus sets the status and derives the paid flag from it
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE invoice_applications SET status = ?, is_paid = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, status == models.ApplicationStatusPaid, id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// MarkPaid records the payment time and transfer receipt and sets the
// status to paid
func (r *ApplicationRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time, receiptFilename, receiptURL string) error {
	query := `
		UPDATE invoice_applications SET
			status = ?, is_paid = 1, reimbursement_date = ?, receipt_filename = ?, receipt_url = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, models.ApplicationStatusPaid, paidAt, receiptFilename, receiptURL, id)
	if err != nil {
		r.logger.Error("Failed to mark application paid", zap.Int64("application_id", id), zap.Error(err))
		return fmt.Errorf("failed to mark paid: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
