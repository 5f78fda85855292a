package errors

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"
)

// Kind categorises document-level failures. Every kind causes the document
// to be skipped; none is retried.
type Kind int

const (
	KindUnknown Kind = iota
	// KindOpen means the file could not be parsed as a PDF.
	KindOpen
	// KindLayout means the PDF parsed but the expected page is missing.
	KindLayout
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "DOCUMENT_OPEN"
	case KindLayout:
		return "DOCUMENT_LAYOUT"
	default:
		return "UNKNOWN"
	}
}

// DocumentError describes why one document produced no record
type DocumentError struct {
	Kind       Kind   `json:"kind"`
	Path       string `json:"path"`
	Pages      int    `json:"pages,omitempty"`
	Want       int    `json:"want,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *DocumentError) Error() string {
	switch {
	case e.Kind == KindLayout:
		return fmt.Sprintf("[%s] %s: document has %d page(s), need at least %d", e.Kind, e.Path, e.Pages, e.Want)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Path, e.Err)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Path)
	}
}

// Unwrap returns the underlying cause
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// NewOpenError wraps a parse or I/O failure for path
func NewOpenError(path string, err error) *DocumentError {
	return &DocumentError{Kind: KindOpen, Path: path, Err: err}
}

// NewLayoutError reports that path has pages pages where want are required
func NewLayoutError(path string, pages, want int) *DocumentError {
	return &DocumentError{Kind: KindLayout, Path: path, Pages: pages, Want: want}
}

// KindOf returns the Kind of the first DocumentError in err's chain
func KindOf(err error) Kind {
	var docErr *DocumentError
	if stderrors.As(err, &docErr) {
		return docErr.Kind
	}
	return KindUnknown
}

// RecoverOpen converts a panic raised by the PDF parser into an open error
// stored in *errp. It must be called directly by a deferred statement.
func RecoverOpen(path string, errp *error) {
	if r := recover(); r != nil {
		*errp = &DocumentError{
			Kind:       KindOpen,
			Path:       path,
			Err:        fmt.Errorf("parser panic: %v", r),
			StackTrace: string(debug.Stack()),
		}
	}
}
