package wrapper

import (
	"fmt"
	"os"

	pdferrors "github.com/a3tai/invoice-extractor/internal/pdf/errors"
	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Opener opens PDF files as layout documents using ledongthuc/pdf
type Opener struct {
	detector    layout.TableDetector
	preflight   bool
	maxFileSize int64
	logger      *zap.Logger
}

// NewOpener creates an Opener. Zero values in cfg fall back to defaults.
func NewOpener(cfg OpenerConfig) *Opener {
	o := &Opener{
		detector:    cfg.TableDetector,
		preflight:   cfg.Preflight,
		maxFileSize: cfg.MaxFileSize,
		logger:      cfg.Logger,
	}
	if o.detector == nil {
		o.detector = layout.NewRowDetector()
	}
	if o.maxFileSize <= 0 {
		o.maxFileSize = DefaultMaxFileSize
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Open parses path. Any failure, including a parser panic, is reported as a
// document open error.
func (o *Opener) Open(path string) (doc layout.Document, err error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, pdferrors.NewOpenError(path, err)
	}
	if err := o.validateFile(path, fileInfo); err != nil {
		return nil, pdferrors.NewOpenError(path, err)
	}

	if o.preflight {
		pages, err := Preflight(path)
		if err != nil {
			return nil, pdferrors.NewOpenError(path, err)
		}
		o.logger.Debug("preflight passed", zap.String("file", path), zap.Int("pages", pages))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pdferrors.NewOpenError(path, err)
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()
	defer pdferrors.RecoverOpen(path, &err)

	reader, err := pdf.NewReader(f, fileInfo.Size())
	if err != nil {
		return nil, pdferrors.NewOpenError(path, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		})
	}

	return &Document{
		path:     path,
		file:     f,
		reader:   reader,
		pages:    reader.NumPage(),
		detector: o.detector,
		logger:   o.logger,
	}, nil
}

func (o *Opener) validateFile(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > o.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), o.maxFileSize)
	}
	return nil
}

// Document is an open PDF backed by ledongthuc/pdf
type Document struct {
	path     string
	file     *os.File
	reader   *pdf.Reader
	pages    int
	detector layout.TableDetector
	logger   *zap.Logger
	closed   bool
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return d.pages
}

// Page returns the page at the zero-based index
func (d *Document) Page(index int) (page layout.Page, err error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if index < 0 || index >= d.pages {
		return nil, fmt.Errorf("%w: %d (document has %d pages)", ErrInvalidPage, index, d.pages)
	}

	defer pdferrors.RecoverOpen(d.path, &err)

	p := d.reader.Page(index + 1)
	if p.V.IsNull() {
		return nil, pdferrors.NewOpenError(d.path, fmt.Errorf("page %d has no page object", index+1))
	}

	box := pageBox(p, d.logger)
	content := p.Content()

	glyphs := make([]layout.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, layout.Glyph{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
		})
	}

	segments := make([]layout.Segment, 0, len(content.Rect))
	for _, r := range content.Rect {
		segments = append(segments, layout.Segment{
			X0:     r.Min.X,
			Y0:     r.Min.Y,
			X1:     r.Max.X,
			Y1:     r.Max.Y,
			IsRect: true,
		})
	}

	d.logger.Debug("page parsed",
		zap.String("file", d.path),
		zap.Int("page", index+1),
		zap.Int("glyphs", len(glyphs)),
		zap.Int("rects", len(segments)),
	)

	return layout.NewTextPage(box, glyphs,
		layout.WithSegments(segments),
		layout.WithTableDetector(d.detector),
	), nil
}

// Close releases the underlying file
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}
