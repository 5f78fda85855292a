package wrapper

import (
	"fmt"

	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
	"go.uber.org/zap"
)

// LibraryType identifies the PDF library behind an operation
type LibraryType string

const (
	LibraryLedongthuc LibraryType = "ledongthuc"
	LibraryPDFCPU     LibraryType = "pdfcpu"
)

// DefaultMaxFileSize is used when OpenerConfig.MaxFileSize is zero
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// OpenerConfig holds opener settings
type OpenerConfig struct {
	// TableDetector is shared by every page the opener produces.
	TableDetector layout.TableDetector
	// Preflight runs a pdfcpu structural read before parsing text.
	Preflight   bool
	MaxFileSize int64
	Logger      *zap.Logger
}

// Error types for wrapper operations
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = &WrapperError{Library: LibraryLedongthuc, Op: "document", Err: fmt.Errorf("document is closed")}
	ErrInvalidPage    = &WrapperError{Library: LibraryLedongthuc, Op: "page", Err: fmt.Errorf("invalid page index")}
)
