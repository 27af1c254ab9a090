package report

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// MergeResult lists the inputs that made it into the merged document
type MergeResult struct {
	Merged  []string
	Skipped []string
}

// Merger concatenates PDF files with pdfcpu. Missing, empty or unreadable
// inputs are skipped; only failing to write the output is an error.
type Merger struct {
	conf   *model.Configuration
	logger *zap.Logger
}

// NewMerger creates a Merger
func NewMerger(logger *zap.Logger) *Merger {
	return &Merger{
		conf:   model.NewDefaultConfiguration(),
		logger: logger,
	}
}

// Merge writes inputs, in order, to outputPath.
func (m *Merger) Merge(inputs []string, outputPath string) (*MergeResult, error) {
	result := &MergeResult{}
	for _, in := range inputs {
		if m.usable(in) {
			result.Merged = append(result.Merged, in)
		} else {
			result.Skipped = append(result.Skipped, in)
		}
	}

	var err error
	switch len(result.Merged) {
	case 0:
		m.logger.Warn("No PDF inputs to merge, writing empty document",
			zap.Strings("inputs", inputs))
		err = os.WriteFile(outputPath, emptyPDF(), 0644)
	case 1:
		err = copyFile(result.Merged[0], outputPath)
	default:
		err = api.MergeCreateFile(result.Merged, outputPath, false, m.conf)
	}
	if err != nil {
		m.logger.Error("Failed to write merged PDF",
			zap.String("output_path", outputPath),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}

	m.logger.Debug("PDF merge complete",
		zap.String("output_path", outputPath),
		zap.Int("merged", len(result.Merged)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

func (m *Merger) usable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return false
	}
	if _, err := PageCount(path); err != nil {
		m.logger.Warn("Skipping unreadable PDF",
			zap.String("path", path),
			zap.Error(err))
		return false
	}
	return true
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return ctx.PageCount, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// emptyPDF is a valid document with a catalog and an empty page tree.
func emptyPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
