package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	builtinFamily = "Helvetica"
	cjkFamily     = "cjk"
)

// Font is the typeface every report page is set in. It is resolved once at
// startup and shared read-only by the page builders.
type Font struct {
	family string
	source string
	data   []byte
}

// BuiltinFont is the core PDF font used when no CJK font could be loaded.
// It cannot render Chinese glyphs.
func BuiltinFont() Font {
	return Font{family: builtinFamily}
}

// Family is the name to pass to SetFont.
func (f Font) Family() string { return f.family }

// Source is the file the font was loaded from, empty for the builtin font.
func (f Font) Source() string { return f.source }

// IsBuiltin reports whether f is the core fallback font.
func (f Font) IsBuiltin() bool { return f.data == nil }

// Register makes the font available on pdf.
func (f Font) Register(pdf *fpdf.Fpdf) {
	if f.IsBuiltin() {
		return
	}
	pdf.AddUTF8FontFromBytes(f.family, "", f.data)
}

// ResolveFont returns the first candidate TrueType file that fpdf accepts,
// or the builtin font when none does. Collections (.ttc) are rejected by
// fpdf and fall through to the next candidate.
func ResolveFont(candidates []string, logger *zap.Logger) Font {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Debug("Font candidate not readable",
				zap.String("path", path),
				zap.Error(err))
			continue
		}

		font := Font{family: cjkFamily, source: path, data: data}
		if err := checkFont(font); err != nil {
			logger.Warn("Font candidate rejected",
				zap.String("path", path),
				zap.Error(err))
			continue
		}

		logger.Info("Report font resolved", zap.String("path", path))
		return font
	}

	logger.Warn("No CJK font available, falling back to builtin font",
		zap.Strings("candidates", candidates))
	return BuiltinFont()
}

// checkFont loads the font into a scratch document. fpdf parses only bare
// TrueType outlines, so collections and CFF fonts are refused up front.
func checkFont(font Font) (err error) {
	if !isTrueType(font.data) {
		return ErrUnsupportedFont
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnsupportedFont, r)
		}
	}()

	pdf := fpdf.New("P", "pt", "A4", "")
	font.Register(pdf)
	if pdf.Err() {
		return pdf.Error()
	}
	return nil
}

func isTrueType(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	magic := data[:4]
	return bytes.Equal(magic, []byte{0x00, 0x01, 0x00, 0x00}) || bytes.Equal(magic, []byte("true"))
}

func (f Font) use(pdf *fpdf.Fpdf, size float64) {
	pdf.SetFont(f.family, "", size)
}
