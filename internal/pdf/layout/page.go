package layout

import "sync"

// TextPage implements Page over a fixed set of glyphs and drawn segments.
type TextPage struct {
	box      Rect
	glyphs   []Glyph
	rules    []Segment
	detector TableDetector

	once   sync.Once
	lines  []Line
	tables []Table
}

// PageOption customises a TextPage.
type PageOption func(*TextPage)

// WithSegments attaches drawn rules and rectangle edges to the page.
func WithSegments(segments []Segment) PageOption {
	return func(p *TextPage) {
		p.rules = segments
	}
}

// WithTableDetector selects the table detection strategy.
func WithTableDetector(d TableDetector) PageOption {
	return func(p *TextPage) {
		if d != nil {
			p.detector = d
		}
	}
}

// NewTextPage builds a page whose media box is box.
func NewTextPage(box Rect, glyphs []Glyph, opts ...PageOption) *TextPage {
	p := &TextPage{
		box:      box,
		glyphs:   NormalizeGlyphs(glyphs),
		detector: NewRowDetector(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Width returns the media box width
func (p *TextPage) Width() float64 { return p.box.Width() }

// Height returns the media box height
func (p *TextPage) Height() float64 { return p.box.Height() }

func (p *TextPage) assemble() {
	p.once.Do(func() {
		p.lines = AssembleLines(p.glyphs)
		p.tables = p.detector.DetectTables(Content{
			Box:    p.box,
			Glyphs: p.glyphs,
			Lines:  p.lines,
			Rules:  p.rules,
		})
	})
}

// Lines returns the visual lines of the page, top first.
func (p *TextPage) Lines() []Line {
	p.assemble()
	return p.lines
}

// Text returns all page text, one visual line per row.
func (p *TextPage) Text() string {
	return JoinLines(p.Lines())
}

// CropText returns the text of glyphs whose centre lies inside region.
func (p *TextPage) CropText(region Region) string {
	var inside []Glyph
	for _, g := range p.glyphs {
		x, y := g.Center()
		if region.Contains(x-p.box.X0, p.box.Y1-y) {
			inside = append(inside, g)
		}
	}
	return JoinLines(AssembleLines(inside))
}

// Tables returns the tables found by the page's detector.
func (p *TextPage) Tables() []Table {
	p.assemble()
	return p.tables
}
