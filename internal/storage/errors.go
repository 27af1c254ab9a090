package storage

import "errors"

var (
	ErrEmptyFileName       = errors.New("file name is empty")
	ErrUnsupportedFileType = errors.New("file type not allowed")
	ErrFileTooLarge        = errors.New("file exceeds upload size limit")
	ErrInvalidFileURL      = errors.New("file URL is outside the upload tree")
	ErrPathEscapesBase     = errors.New("path escapes base directory")
)
