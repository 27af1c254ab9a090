package service

import (
	"errors"
	"fmt"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/invoice"
)

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrApplicationPaid      = errors.New("application already paid")
	ErrInvoiceNotFound      = errors.New("invoice detail not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrExtractionIncomplete = errors.New("invoice number could not be extracted")
	ErrDuplicateInvoice     = errors.New("invoice number already exists")
	ErrInvalidInput         = errors.New("invalid input")
)

// UploadError reports an upload whose file was stored but which did not
// produce a new invoice detail. It unwraps to ErrExtractionIncomplete or
// ErrDuplicateInvoice.
type UploadError struct {
	Err           error
	FileURL       string
	Filename      string
	InvoiceNumber string
	Fields        *invoice.ExtractedFields
}

func (e *UploadError) Error() string {
	if e.InvoiceNumber != "" {
		return fmt.Sprintf("%v: %s", e.Err, e.InvoiceNumber)
	}
	return e.Err.Error()
}

func (e *UploadError) Unwrap() error { return e.Err }
