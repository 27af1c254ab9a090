package invoice

import "fmt"

// PageError marks a failure limited to one page. The scanner logs it and
// moves on to the next page instead of giving up on the document.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }
