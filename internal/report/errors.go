package report

import (
	"errors"
	"fmt"
)

var (
	// Output errors
	ErrSummaryFailed = errors.New("failed to write summary page")
	ErrGalleryFailed = errors.New("failed to write invoice gallery")
	ErrMergeFailed   = errors.New("failed to write merged report")

	// Input errors
	ErrNilApplication = errors.New("application is nil")
	ErrEmptyDocument  = errors.New("document has no pages")
	ErrEmptyImage     = errors.New("image has zero size")

	ErrUnsupportedFont = errors.New("font is not a TrueType file")
)

// ItemError is a failure confined to one gallery cell. The compositor marks
// the cell as unloadable and carries on with the next invoice.
type ItemError struct {
	Index int
	Path  string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("gallery item %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
