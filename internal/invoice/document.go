package invoice

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// Document is the page-level text view of an invoice file.
type Document interface {
	NumPage() int
	Text(page int) (string, error)
	Close() error
}

// Opener opens a document by path.
type Opener func(path string) (Document, error)

// OpenPDF opens a PDF through MuPDF and exposes its text layer.
func OpenPDF(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	return doc, nil
}
