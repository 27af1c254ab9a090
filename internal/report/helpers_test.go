package report

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func writeImage(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(imaging.New(w, h, c), path))
	return path
}

// dirResolver maps every file URL to the file of the same name in root
type dirResolver struct {
	root string
}

func (r dirResolver) ResolveURL(fileURL string) (string, error) {
	return filepath.Join(r.root, filepath.Base(fileURL)), nil
}

// stubRasterizer records render requests and writes a blank page image
type stubRasterizer struct {
	err     error
	outputs []string
}

func (s *stubRasterizer) RenderFirstPage(pdfPath, pngPath string) error {
	s.outputs = append(s.outputs, pngPath)
	if s.err != nil {
		return s.err
	}
	return imaging.Save(imaging.New(60, 80, color.White), pngPath)
}

func transparentImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	return img
}
