package invoice

import (
	"fmt"

	pdferrors "github.com/a3tai/invoice-extractor/internal/pdf/errors"
	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
	"go.uber.org/zap"
)

// Opener opens a document for reading.
type Opener interface {
	Open(path string) (layout.Document, error)
}

// Extractor runs the field extractors against the data page of a document.
type Extractor struct {
	opener   Opener
	template Template
	logger   *zap.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithTemplate replaces the default export invoice template
func WithTemplate(t Template) Option {
	return func(e *Extractor) {
		e.template = t
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor reading documents through opener.
func NewExtractor(opener Opener, opts ...Option) *Extractor {
	e := &Extractor{
		opener:   opener,
		template: DefaultTemplate(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Template returns the layout template in use
func (e *Extractor) Template() Template {
	return e.template
}

// ExtractFile opens path, reads its data page and closes it again on every
// path. A document without the data page fails with a layout error.
func (e *Extractor) ExtractFile(path string) (result Result, err error) {
	doc, err := e.opener.Open(path)
	if err != nil {
		if pdferrors.KindOf(err) == pdferrors.KindUnknown {
			err = pdferrors.NewOpenError(path, err)
		}
		return Result{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("failed to close document", zap.String("file", path), zap.Error(cerr))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			result, err = Result{}, fmt.Errorf("extract %s: panic: %v", path, r)
		}
	}()

	idx := e.template.PageIndex
	if pages := doc.PageCount(); pages <= idx {
		return Result{}, pdferrors.NewLayoutError(path, pages, idx+1)
	}

	page, err := doc.Page(idx)
	if err != nil {
		if pdferrors.KindOf(err) == pdferrors.KindUnknown {
			err = pdferrors.NewOpenError(path, err)
		}
		return Result{}, err
	}

	result = e.ExtractPage(page)
	e.logger.Debug("fields extracted",
		zap.String("file", path),
		zap.String("invoice", result.InvoiceNumberAndDate),
		zap.Bool("buyer_found", result.BuyerAddress != ""),
		zap.Bool("value_found", result.InvoiceValue != ""),
		zap.Bool("rate_found", result.ExchangeRate != ""),
	)
	return result, nil
}

// ExtractPage runs the four field extractors against page.
func (e *Extractor) ExtractPage(page layout.Page) Result {
	flat := FlatText(page.Text())
	tables := page.Tables()
	region := e.template.BuyerCrop.Region(page.Width(), page.Height())

	return Result{
		InvoiceNumberAndDate: InvoiceIdentifier(flat),
		BuyerAddress:         BuyerAddress(page.CropText(region), e.template),
		InvoiceValue:         InvoiceValue(tables),
		ExchangeRate:         ExchangeRate(tables, flat),
	}
}
