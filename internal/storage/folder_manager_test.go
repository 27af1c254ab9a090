package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) (*FolderManager, string) {
	t.Helper()
	base := t.TempDir()
	logger := zap.NewNop()
	fm := NewFolderManager(base, NewLocalFileStorage(base, logger), logger)
	fm.now = func() time.Time { return time.Date(2025, 11, 4, 9, 30, 1, 0, time.Local) }
	return fm, base
}

func TestFolderManager_EnsureLayout(t *testing.T) {
	fm, base := newTestManager(t)

	require.NoError(t, fm.EnsureLayout())
	for _, kind := range []string{KindInvoices, KindReceipts, KindReports} {
		assert.DirExists(t, filepath.Join(base, kind))
	}
	assert.Equal(t, filepath.Join(base, KindReports), fm.ReportsDir())

	// idempotent
	assert.NoError(t, fm.EnsureLayout())
}

func TestFolderManager_SaveUpload(t *testing.T) {
	fm, base := newTestManager(t)

	t.Run("stores under a stamped name", func(t *testing.T) {
		stored, err := fm.SaveUpload(KindInvoices, "发票.pdf", []byte("%PDF-1.4"))
		require.NoError(t, err)

		assert.Equal(t, "发票.pdf", stored.Filename)
		assert.True(t, strings.HasPrefix(filepath.Base(stored.Path), "20251104093001_"))
		assert.True(t, strings.HasSuffix(stored.Path, "_发票.pdf"))
		assert.Equal(t, filepath.Join(base, KindInvoices), filepath.Dir(stored.Path))
		assert.Equal(t, URLPrefix+KindInvoices+"/"+filepath.Base(stored.Path), stored.URL)
		assert.FileExists(t, stored.Path)
	})

	t.Run("same name twice does not collide", func(t *testing.T) {
		a, err := fm.SaveUpload(KindInvoices, "same.pdf", []byte("a"))
		require.NoError(t, err)
		b, err := fm.SaveUpload(KindInvoices, "same.pdf", []byte("b"))
		require.NoError(t, err)
		assert.NotEqual(t, a.Path, b.Path)
	})

	t.Run("sanitizes traversal in the name", func(t *testing.T) {
		stored, err := fm.SaveUpload(KindInvoices, "../../etc/evil.png", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "etcevil.png", stored.Filename)
		assert.Equal(t, filepath.Join(base, KindInvoices), filepath.Dir(stored.Path))
	})

	t.Run("rejections", func(t *testing.T) {
		_, err := fm.SaveUpload(KindInvoices, "notes.txt", []byte("x"))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)

		_, err = fm.SaveUpload(KindInvoices, "../", []byte("x"))
		assert.ErrorIs(t, err, ErrEmptyFileName)

		fm.SetMaxUploadSize(4)
		defer fm.SetMaxUploadSize(DefaultMaxUploadSize)
		_, err = fm.SaveUpload(KindInvoices, "big.pdf", []byte("12345"))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}

func TestFolderManager_ResolveURL(t *testing.T) {
	fm, base := newTestManager(t)
	require.NoError(t, fm.EnsureLayout())

	stored, err := fm.SaveUpload(KindReceipts, "r.jpg", []byte("x"))
	require.NoError(t, err)

	t.Run("round trips a stored URL", func(t *testing.T) {
		resolved, err := fm.ResolveURL(stored.URL)
		require.NoError(t, err)
		assert.Equal(t, stored.Path, resolved)
	})

	t.Run("missing file still resolves", func(t *testing.T) {
		resolved, err := fm.ResolveURL("/uploads/invoices/gone.pdf")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "invoices", "gone.pdf"), resolved)
		_, statErr := os.Stat(resolved)
		assert.True(t, os.IsNotExist(statErr))
	})

	bad := []string{
		"",
		"/uploads/",
		"/static/invoices/a.pdf",
		"/uploads/../../etc/passwd",
	}
	for _, u := range bad {
		t.Run("rejects "+u, func(t *testing.T) {
			_, err := fm.ResolveURL(u)
			assert.ErrorIs(t, err, ErrInvalidFileURL)
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"invoice.pdf", "invoice.pdf"},
		{"../../../etc/passwd", "etcpasswd"},
		{"a\\b.pdf", "ab.pdf"},
		{"<script>.png", "script.png"},
		{"  发票 1.pdf ", "发票 1.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFileName(tt.input))
		})
	}
}

func TestIsAllowedUpload(t *testing.T) {
	assert.True(t, IsAllowedUpload("a.PDF"))
	assert.True(t, IsAllowedUpload("a.jpeg"))
	assert.True(t, IsAllowedUpload("a.png"))
	assert.False(t, IsAllowedUpload("a.gif"))
	assert.False(t, IsAllowedUpload("pdf"))
}
