package batch

import (
	"fmt"

	"github.com/a3tai/invoice-extractor/internal/invoice"
)

// Shaping selects the output columns around the invoice fields.
type Shaping string

const (
	ShapingNumbered       Shaping = "numbered"
	ShapingNumberedSource Shaping = "numbered-source"
	ShapingPlain          Shaping = "plain"
	ShapingPlainSource    Shaping = "plain-source"
)

// Column labels around the invoice fields
const (
	SerialLabel = "SN"
	SourceLabel = "Source File"
)

// ParseShaping validates a shaping name.
func ParseShaping(s string) (Shaping, error) {
	switch sh := Shaping(s); sh {
	case ShapingNumbered, ShapingNumberedSource, ShapingPlain, ShapingPlainSource:
		return sh, nil
	default:
		return "", fmt.Errorf("invalid shaping %q (must be one of numbered, numbered-source, plain, plain-source)", s)
	}
}

// Numbered reports whether rows start with a serial number.
func (s Shaping) Numbered() bool {
	return s == ShapingNumbered || s == ShapingNumberedSource
}

// WithSource reports whether rows end with the source file name.
func (s Shaping) WithSource() bool {
	return s == ShapingNumberedSource || s == ShapingPlainSource
}

// Header returns the column labels for the shaping.
func (s Shaping) Header() []string {
	header := make([]string, 0, len(invoice.FieldLabels)+2)
	if s.Numbered() {
		header = append(header, SerialLabel)
	}
	header = append(header, invoice.FieldLabels...)
	if s.WithSource() {
		header = append(header, SourceLabel)
	}
	return header
}

// Row lays out one record. serial is ignored for unnumbered shapings.
func (s Shaping) Row(serial int, rec Record) []any {
	row := make([]any, 0, len(invoice.FieldLabels)+2)
	if s.Numbered() {
		row = append(row, serial)
	}
	for _, v := range rec.Result.Values() {
		row = append(row, v)
	}
	if s.WithSource() {
		row = append(row, rec.Source)
	}
	return row
}
