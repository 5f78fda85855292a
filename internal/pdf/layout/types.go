// Package layout turns positioned glyphs into the three views the invoice
// extractors read from a page: flat text, text inside a region, and tables.
package layout

import "strings"

// Rect is an axis-aligned rectangle in PDF user space (origin bottom-left).
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the rectangle
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Region is a rectangle measured from the top-left corner of the page, the
// way layout tools describe crop boxes: Top is smaller than Bottom.
type Region struct {
	X0     float64 `json:"x0"`
	Top    float64 `json:"top"`
	X1     float64 `json:"x1"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether the point (x, top) lies inside the region.
func (r Region) Contains(x, top float64) bool {
	return x >= r.X0 && x <= r.X1 && top >= r.Top && top <= r.Bottom
}

// Glyph is one run of shown text with its baseline origin and advance width.
type Glyph struct {
	Text     string
	X        float64
	Y        float64
	W        float64
	FontSize float64
}

// Center returns the approximate visual centre of the glyph in PDF space.
func (g Glyph) Center() (x, y float64) {
	return g.X + g.W/2, g.Y + g.FontSize*0.3
}

// Segment is a drawn rule or rectangle edge, used to spot ruled tables.
type Segment struct {
	X0, Y0, X1, Y1 float64
	IsRect         bool
}

// Word is a run of glyphs without a visible gap.
type Word struct {
	Text     string
	X0       float64
	X1       float64
	FontSize float64
}

// Line is a set of words sharing a baseline, ordered left to right.
type Line struct {
	Y     float64
	Words []Word
}

// Text joins the words of the line with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// Row is an ordered sequence of cells. An absent cell is the empty string.
type Row []string

// Joined returns the cells joined by single spaces.
func (r Row) Joined() string {
	return strings.Join(r, " ")
}

// Table is an ordered sequence of rows.
type Table []Row

// Page is the read-only view of one PDF page.
type Page interface {
	// Width and Height are the page dimensions in points.
	Width() float64
	Height() float64

	// Text returns all extractable text, one line per visual line.
	Text() string

	// CropText returns the text whose glyphs fall inside the region.
	CropText(region Region) string

	// Tables returns the tables detected on the page.
	Tables() []Table
}

// Document is an opened PDF. Close must be called on every path.
type Document interface {
	PageCount() int
	// Page returns the page at a zero-based index.
	Page(index int) (Page, error)
	Close() error
}
