package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/invoice"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/repository"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/storage"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/pkg/utils"
)

// InvoiceService attaches invoices to reimbursement applications
type InvoiceService struct {
	apps      ApplicationStore
	invoices  InvoiceStore
	uploads   UploadStore
	extractor FieldExtractor
	keyword   string
	logger    *zap.Logger
}

// NewInvoiceService creates a new invoice service. keyword is the company
// name fragment that marks a page as addressed to us.
func NewInvoiceService(
	apps ApplicationStore,
	invoices InvoiceStore,
	uploads UploadStore,
	extractor FieldExtractor,
	keyword string,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		apps:      apps,
		invoices:  invoices,
		uploads:   uploads,
		extractor: extractor,
		keyword:   keyword,
		logger:    logger,
	}
}

// UploadResult is a successfully recorded upload
type UploadResult struct {
	Detail *models.InvoiceDetail
	Fields *invoice.ExtractedFields
}

// UploadInvoice stores an invoice file, extracts its fields and records a
// new detail on the application.
//
// The file is kept even when no detail is created: the returned *UploadError
// carries its URL so the caller can fall back to manual entry, or reports
// that an existing detail with the same invoice number now points at it.
func (s *InvoiceService) UploadInvoice(ctx context.Context, appID int64, filename string, content []byte) (*UploadResult, error) {
	if err := s.checkWritable(ctx, appID); err != nil {
		return nil, err
	}

	stored, err := s.uploads.SaveUpload(storage.KindInvoices, filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := s.extract(stored.Path)
	number, ok := fields.InvoiceNumber.Value()
	if !ok || number == "" {
		s.logger.Warn("Invoice number not extracted",
			zap.Int64("application_id", appID),
			zap.String("file_url", stored.URL))
		return nil, &UploadError{
			Err:      ErrExtractionIncomplete,
			FileURL:  stored.URL,
			Filename: stored.Filename,
			Fields:   fields,
		}
	}

	existing, err := s.invoices.GetByInvoiceNumber(ctx, number)
	switch {
	case err == nil:
		if err := s.invoices.UpdateFile(ctx, existing.ID, stored.Filename, stored.URL); err != nil {
			return nil, err
		}
		s.logger.Info("Duplicate invoice, file replaced",
			zap.String("invoice_number", number),
			zap.Int64("detail_id", existing.ID))
		return nil, &UploadError{
			Err:           ErrDuplicateInvoice,
			FileURL:       stored.URL,
			Filename:      stored.Filename,
			InvoiceNumber: number,
			Fields:        fields,
		}
	case !errors.Is(err, repository.ErrInvoiceNotFound):
		return nil, err
	}

	detail := &models.InvoiceDetail{
		InvoiceNumber: number,
		FileURL:       stored.URL,
		Filename:      stored.Filename,
		ApplicationID: appID,
	}
	if d, ok := fields.InvoiceDate.Value(); ok {
		detail.InvoiceDate = &d
	}
	if issuer, ok := fields.Issuer.Value(); ok {
		detail.Issuer = issuer
	}
	if cents, ok := fields.AmountCents.Value(); ok {
		detail.AmountCents = cents
	}

	if err := s.record(ctx, detail); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice uploaded",
		zap.Int64("application_id", appID),
		zap.String("invoice_number", number),
		zap.Int64("amount_cents", detail.AmountCents))
	return &UploadResult{Detail: detail, Fields: fields}, nil
}

// ManualInvoice is an invoice entered by hand, optionally with its file
type ManualInvoice struct {
	ApplicationID int64
	InvoiceNumber string
	InvoiceDate   string // YYYY-MM-DD, optional
	Issuer        string
	Amount        string // yuan, optional
	Category      models.Category
	Filename      string
	Content       []byte
}

// AddManual records an invoice whose fields were typed in by the user
func (s *InvoiceService) AddManual(ctx context.Context, in ManualInvoice) (*models.InvoiceDetail, error) {
	number := strings.TrimSpace(in.InvoiceNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: invoice number is required", ErrInvalidInput)
	}
	if err := checkCategory(in.Category); err != nil {
		return nil, err
	}
	if err := s.checkWritable(ctx, in.ApplicationID); err != nil {
		return nil, err
	}

	if _, err := s.invoices.GetByInvoiceNumber(ctx, number); err == nil {
		return nil, ErrDuplicateInvoice
	} else if !errors.Is(err, repository.ErrInvoiceNotFound) {
		return nil, err
	}

	detail := &models.InvoiceDetail{
		InvoiceNumber: number,
		Issuer:        utils.SanitizeString(in.Issuer),
		Category:      in.Category,
		ApplicationID: in.ApplicationID,
	}

	if in.InvoiceDate != "" {
		d, err := time.Parse(invoice.DateLayout, in.InvoiceDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invoice date %q", ErrInvalidInput, in.InvoiceDate)
		}
		detail.InvoiceDate = &d
	}
	if in.Amount != "" {
		cents, err := utils.ParseYuanToCents(in.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		detail.AmountCents = cents
	}

	if in.Filename != "" && len(in.Content) > 0 {
		stored, err := s.uploads.SaveUpload(storage.KindInvoices, in.Filename, in.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		detail.FileURL = stored.URL
		detail.Filename = stored.Filename
	}

	if err := s.record(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// InvoiceUpdate holds the fields to change on a detail; nil leaves a field
// as it is
type InvoiceUpdate struct {
	InvoiceNumber *string          `json:"invoice_number"`
	InvoiceDate   *string          `json:"invoice_date"` // YYYY-MM-DD, empty clears
	Issuer        *string          `json:"issuer"`
	Amount        *string          `json:"amount"` // yuan
	Category      *models.Category `json:"reimbursement_type"`
}

// UpdateInvoice edits a recorded detail and refreshes the application totals
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id int64, in InvoiceUpdate) (*models.InvoiceDetail, error) {
	detail, err := s.invoices.GetByID(ctx, id)
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.checkWritable(ctx, detail.ApplicationID); err != nil {
		return nil, err
	}

	if in.InvoiceNumber != nil {
		number := strings.TrimSpace(*in.InvoiceNumber)
		if number == "" {
			return nil, fmt.Errorf("%w: invoice number is required", ErrInvalidInput)
		}
		detail.InvoiceNumber = number
	}
	if in.InvoiceDate != nil {
		detail.InvoiceDate = nil
		if *in.InvoiceDate != "" {
			d, err := time.Parse(invoice.DateLayout, *in.InvoiceDate)
			if err != nil {
				return nil, fmt.Errorf("%w: invoice date %q", ErrInvalidInput, *in.InvoiceDate)
			}
			detail.InvoiceDate = &d
		}
	}
	if in.Issuer != nil {
		detail.Issuer = utils.SanitizeString(*in.Issuer)
	}
	if in.Amount != nil {
		cents, err := utils.ParseYuanToCents(*in.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		detail.AmountCents = cents
	}
	if in.Category != nil {
		if err := checkCategory(*in.Category); err != nil {
			return nil, err
		}
		detail.Category = *in.Category
	}

	if err := s.invoices.Update(ctx, detail); err != nil {
		return nil, mapStoreError(err)
	}
	if err := s.apps.UpdateTotals(ctx, detail.ApplicationID); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice updated",
		zap.Int64("detail_id", id),
		zap.String("invoice_number", detail.InvoiceNumber))
	return detail, nil
}

// BatchUpdateCategory gives every listed detail the same reimbursement
// type and returns how many were changed. IDs that do not exist are
// skipped; none existing is ErrInvoiceNotFound.
func (s *InvoiceService) BatchUpdateCategory(ctx context.Context, ids []int64, category models.Category) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no invoices selected", ErrInvalidInput)
	}
	if category == "" {
		return 0, fmt.Errorf("%w: reimbursement type is required", ErrInvalidInput)
	}
	if err := checkCategory(category); err != nil {
		return 0, err
	}

	found := make([]int64, 0, len(ids))
	checked := make(map[int64]bool)
	for _, id := range ids {
		detail, err := s.invoices.GetByID(ctx, id)
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if !checked[detail.ApplicationID] {
			if err := s.checkWritable(ctx, detail.ApplicationID); err != nil {
				return 0, err
			}
			checked[detail.ApplicationID] = true
		}
		found = append(found, id)
	}
	if len(found) == 0 {
		return 0, ErrInvoiceNotFound
	}

	n, err := s.invoices.UpdateCategory(ctx, found, category)
	if err != nil {
		return 0, mapStoreError(err)
	}
	s.logger.Info("Invoice categories updated",
		zap.Int64("updated", n),
		zap.String("reimbursement_type", category.String()))
	return n, nil
}

// ExtractFile runs extraction on an upload without recording anything
func (s *InvoiceService) ExtractFile(filename string, content []byte) (*invoice.ExtractedFields, *storage.StoredFile, error) {
	stored, err := s.uploads.SaveUpload(storage.KindInvoices, filename, content)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.extract(stored.Path), stored, nil
}

func (s *InvoiceService) extract(path string) *invoice.ExtractedFields {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return &invoice.ExtractedFields{}
	}
	return s.extractor.Extract(path, s.keyword)
}

func (s *InvoiceService) checkWritable(ctx context.Context, appID int64) error {
	app, err := s.apps.GetByID(ctx, appID)
	if errors.Is(err, repository.ErrApplicationNotFound) {
		return ErrApplicationNotFound
	}
	if err != nil {
		return err
	}
	if app.IsPaid {
		return ErrApplicationPaid
	}
	return nil
}

func (s *InvoiceService) record(ctx context.Context, detail *models.InvoiceDetail) error {
	if err := s.invoices.Create(ctx, detail); err != nil {
		return mapStoreError(err)
	}
	return s.apps.UpdateTotals(ctx, detail.ApplicationID)
}

// checkCategory accepts the empty category (not yet classified) and the
// closed set
func checkCategory(c models.Category) error {
	if c != "" && !c.IsValid() {
		return fmt.Errorf("%w: unknown reimbursement type %q", ErrInvalidInput, c)
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateInvoice):
		return ErrDuplicateInvoice
	case errors.Is(err, repository.ErrInvalidDetail):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, repository.ErrInvoiceNotFound):
		return ErrInvoiceNotFound
	}
	return err
}
