package report

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/models"
	"go.uber.org/zap"
)

// fakeSummary writes a marker file and records its output path
type fakeSummary struct {
	err  error
	path string
}

func (f *fakeSummary) Build(app *models.Application, outputPath string) error {
	f.path = outputPath
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("summary"), 0644)
}

type fakeGallery struct {
	err  error
	path string
}

func (f *fakeGallery) Compose(details []*models.InvoiceDetail, outputPath string) (*GalleryResult, error) {
	f.path = outputPath
	if f.err != nil {
		return nil, f.err
	}
	return &GalleryResult{Items: len(details), Pages: 1}, os.WriteFile(outputPath, []byte("gallery"), 0644)
}

type fakeMerger struct {
	err    error
	inputs []string
}

func (f *fakeMerger) Merge(inputs []string, outputPath string) (*MergeResult, error) {
	f.inputs = inputs
	if f.err != nil {
		return nil, f.err
	}
	return &MergeResult{Merged: inputs}, os.WriteFile(outputPath, []byte("merged"), 0644)
}

func newTestGenerator(dir string, s *fakeSummary, g *fakeGallery, m *fakeMerger) *Generator {
	gen := NewGenerator(s, g, m, dir, zap.NewNop())
	gen.now = func() time.Time { return time.Date(2025, 11, 4, 9, 30, 15, 123456000, time.Local) }
	return gen
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	s, g, m := &fakeSummary{}, &fakeGallery{}, &fakeMerger{}

	result, err := newTestGenerator(dir, s, g, m).Generate(context.Background(), sampleApplication())
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(result.Path))
	assert.Regexp(t, `^十一月差旅_20251104093015_[0-9a-f]{8}_报销单\.pdf$`, filepath.Base(result.Path))
	assert.FileExists(t, result.Path)

	assert.Equal(t, []string{s.path, g.path}, m.inputs)
	assert.True(t, strings.HasPrefix(filepath.Base(s.path), "temp_summary_20251104093015.123456_"))
	assert.True(t, strings.HasPrefix(filepath.Base(g.path), "temp_invoices_20251104093015.123456_"))
	assert.NoFileExists(t, s.path)
	assert.NoFileExists(t, g.path)
}

func TestGenerator_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	s1, s2 := &fakeSummary{}, &fakeSummary{}

	// same application name in the same second
	r1, err := newTestGenerator(dir, s1, &fakeGallery{}, &fakeMerger{}).Generate(context.Background(), sampleApplication())
	require.NoError(t, err)
	r2, err := newTestGenerator(dir, s2, &fakeGallery{}, &fakeMerger{}).Generate(context.Background(), sampleApplication())
	require.NoError(t, err)

	assert.NotEqual(t, s1.path, s2.path)
	assert.NotEqual(t, r1.Path, r2.Path)
	assert.FileExists(t, r1.Path)
	assert.FileExists(t, r2.Path)
}

func TestGenerator_Failures(t *testing.T) {
	boom := errors.New("disk full")

	tests := []struct {
		name    string
		summary *fakeSummary
		gallery *fakeGallery
		merger  *fakeMerger
	}{
		{"summary", &fakeSummary{err: boom}, &fakeGallery{}, &fakeMerger{}},
		{"gallery", &fakeSummary{}, &fakeGallery{err: boom}, &fakeMerger{}},
		{"merge", &fakeSummary{}, &fakeGallery{}, &fakeMerger{err: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := newTestGenerator(dir, tt.summary, tt.gallery, tt.merger).
				Generate(context.Background(), sampleApplication())
			assert.ErrorIs(t, err, boom)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			for _, e := range entries {
				assert.False(t, IsTempArtifact(e.Name()), e.Name())
			}
		})
	}
}

func TestGenerator_NilApplication(t *testing.T) {
	_, err := newTestGenerator(t.TempDir(), &fakeSummary{}, &fakeGallery{}, &fakeMerger{}).
		Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilApplication)
}

func TestGenerator_EndToEnd(t *testing.T) {
	srcDir := t.TempDir()
	reportsDir := t.TempDir()
	logger := zap.NewNop()

	writeImage(t, srcDir, "a.png", 300, 200, color.White)
	writeImage(t, srcDir, "b.png", 200, 300, color.Transparent)

	app := sampleApplication()
	app.Details = []*models.InvoiceDetail{
		fileDetail("1", "/uploads/invoices/a.png"),
		fileDetail("2", "/uploads/invoices/b.png"),
		fileDetail("3", "/uploads/invoices/a.png"),
		fileDetail("4", "/uploads/invoices/gone.png"),
	}

	gen := NewGenerator(
		NewSummaryBuilder(BuiltinFont(), logger),
		NewCompositor(BuiltinFont(), dirResolver{srcDir}, nil, reportsDir, logger),
		NewMerger(logger),
		reportsDir,
		logger,
	)

	result, err := gen.Generate(context.Background(), app)
	require.NoError(t, err)

	// one summary page plus ceil(3/2) gallery pages
	pages, err := PageCount(result.Path)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, result.GalleryItems)

	entries, err := os.ReadDir(reportsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "a_b", safeName("a/b"))
	assert.Equal(t, "__etc", safeName("../etc"))
	assert.Equal(t, "report", safeName("  "))
	assert.Equal(t, "十一月差旅", safeName("十一月差旅"))
}
