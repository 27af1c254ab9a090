package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sub-directories of the upload tree
const (
	KindInvoices = "invoices"
	KindReceipts = "receipts"
	KindReports  = "reports"
)

// URLPrefix is the public prefix under which stored files are served
const URLPrefix = "/uploads/"

// DefaultMaxUploadSize caps a single uploaded file
const DefaultMaxUploadSize = 50 << 20

var allowedUploadExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// StoredFile is an upload written into the tree
type StoredFile struct {
	Path     string // absolute location on disk
	URL      string // /uploads/<kind>/<stored name>
	Filename string // sanitized original name
}

// FolderManager owns the upload tree: invoices/, receipts/ and reports/
// under one root directory.
type FolderManager struct {
	baseDir string
	storage FileStorage
	maxSize int64
	now     func() time.Time
	logger  *zap.Logger
}

// NewFolderManager creates a new FolderManager rooted at baseDir
func NewFolderManager(baseDir string, storage FileStorage, logger *zap.Logger) *FolderManager {
	return &FolderManager{
		baseDir: baseDir,
		storage: storage,
		maxSize: DefaultMaxUploadSize,
		now:     time.Now,
		logger:  logger,
	}
}

// SetMaxUploadSize overrides the per-file upload limit
func (m *FolderManager) SetMaxUploadSize(n int64) {
	if n > 0 {
		m.maxSize = n
	}
}

// EnsureLayout creates the upload sub-directories when missing
func (m *FolderManager) EnsureLayout() error {
	for _, kind := range []string{KindInvoices, KindReceipts, KindReports} {
		dir := m.Dir(kind)
		if err := os.MkdirAll(dir, 0755); err != nil {
			m.logger.Error("Failed to create upload folder",
				zap.String("folder_path", dir),
				zap.Error(err))
			return fmt.Errorf("failed to create folder %s: %w", kind, err)
		}
	}
	return nil
}

// Dir returns the directory holding files of kind
func (m *FolderManager) Dir(kind string) string {
	return filepath.Join(m.baseDir, kind)
}

// ReportsDir is where generated reports and their temporary parts live
func (m *FolderManager) ReportsDir() string {
	return m.Dir(KindReports)
}

// SaveUpload stores content under kind with a time-stamped unique name.
func (m *FolderManager) SaveUpload(kind, originalName string, content []byte) (*StoredFile, error) {
	name := SanitizeFileName(originalName)
	if name == "" {
		return nil, ErrEmptyFileName
	}
	if !IsAllowedUpload(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(name))
	}
	if int64(len(content)) > m.maxSize {
		return nil, ErrFileTooLarge
	}

	stored := fmt.Sprintf("%s_%s_%s", m.now().Format("20060102150405"), uuid.NewString()[:8], name)
	fullPath := filepath.Join(m.Dir(kind), stored)
	if err := m.storage.SaveFile(fullPath, content); err != nil {
		return nil, err
	}

	m.logger.Info("Upload stored",
		zap.String("kind", kind),
		zap.String("filename", name),
		zap.String("path", fullPath))

	return &StoredFile{
		Path:     fullPath,
		URL:      m.URLFor(kind, stored),
		Filename: name,
	}, nil
}

// URLFor builds the public URL of a stored file
func (m *FolderManager) URLFor(kind, storedName string) string {
	return URLPrefix + path.Join(kind, storedName)
}

// ResolveURL maps a /uploads/... URL back to its file on disk
func (m *FolderManager) ResolveURL(fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, URLPrefix) {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileURL, fileURL)
	}
	rel := strings.TrimPrefix(fileURL, URLPrefix)
	if rel == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidFileURL, fileURL)
	}

	fullPath := filepath.Join(m.baseDir, filepath.FromSlash(rel))
	if err := m.storage.ValidatePath(fullPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFileURL, err)
	}
	return fullPath, nil
}

// SanitizeFileName strips path separators, parent references and angle
// brackets from an uploaded file name.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	name = strings.ReplaceAll(name, "<", "")
	name = strings.ReplaceAll(name, ">", "")
	return strings.TrimSpace(name)
}

// IsAllowedUpload reports whether name has an accepted invoice extension
func IsAllowedUpload(name string) bool {
	return allowedUploadExts[strings.ToLower(filepath.Ext(name))]
}
