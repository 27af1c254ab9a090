package invoice

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Extractor pulls invoice fields out of text-layer PDFs using label
// heuristics keyed on the company the invoice was issued to.
type Extractor struct {
	open   Opener
	logger *zap.Logger
}

// NewExtractor creates an extractor reading PDFs through MuPDF.
func NewExtractor(logger *zap.Logger) *Extractor {
	return NewExtractorWithOpener(OpenPDF, logger)
}

// NewExtractorWithOpener creates an extractor with a custom document source.
func NewExtractorWithOpener(open Opener, logger *zap.Logger) *Extractor {
	return &Extractor{
		open:   open,
		logger: logger,
	}
}

// Extract scans the file at path and returns the fields of the first page
// mentioning keyword that yields anything. It never fails: an unreadable file
// produces an empty result and the caller decides whether to ask for manual
// entry.
func (e *Extractor) Extract(path, keyword string) *ExtractedFields {
	doc, err := e.open(path)
	if err != nil {
		e.logger.Warn("Failed to open invoice file",
			zap.String("path", path),
			zap.Error(err))
		return &ExtractedFields{}
	}
	defer doc.Close()

	fields := e.ExtractDocument(doc, keyword)
	e.logger.Info("Invoice fields extracted",
		zap.String("path", path),
		zap.Bool("empty", fields.Empty()),
		zap.Any("fields", fields.Map()))
	return fields
}

// ExtractDocument scans an already opened document page by page.
func (e *Extractor) ExtractDocument(doc Document, keyword string) *ExtractedFields {
	for page := 0; page < doc.NumPage(); page++ {
		fields, err := scanPage(doc, page, keyword)
		if err != nil {
			var pageErr *PageError
			if errors.As(err, &pageErr) {
				e.logger.Warn("Skipping unreadable page",
					zap.Int("page", pageErr.Page),
					zap.Error(pageErr.Err))
				continue
			}
			e.logger.Error("Invoice scan aborted", zap.Error(err))
			return &ExtractedFields{}
		}
		if fields != nil && !fields.Empty() {
			return fields
		}
	}
	return &ExtractedFields{}
}

func scanPage(doc Document, page int, keyword string) (*ExtractedFields, error) {
	text, err := doc.Text(page)
	if err != nil {
		return nil, &PageError{Page: page, Err: err}
	}
	return ExtractPage(text, keyword), nil
}

// ExtractPage applies the heuristics to the raw text of one page. It returns
// nil when the page is blank or does not mention keyword.
func ExtractPage(text, keyword string) *ExtractedFields {
	text = Normalize(text)
	keyword = Normalize(keyword)
	if text == "" || !strings.Contains(text, keyword) {
		return nil
	}

	lines := strings.Split(text, "\n")
	if strings.Contains(text, ticketMarker) {
		return extractTicket(lines)
	}
	return extractGeneric(lines, keyword)
}
