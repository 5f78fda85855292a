package layout

import (
	"fmt"
	"math"
	"strings"
)

// Table detector names accepted by NewTableDetector
const (
	DetectorRows      = "rows"
	DetectorGeometric = "geometric"
)

// Content is everything a detector may look at on one page.
type Content struct {
	Box    Rect
	Glyphs []Glyph
	Lines  []Line
	Rules  []Segment
}

// TableDetector finds tables in page content.
type TableDetector interface {
	Name() string
	DetectTables(c Content) []Table
}

// NewTableDetector returns the detector registered under name.
func NewTableDetector(name string) (TableDetector, error) {
	switch name {
	case "", DetectorRows:
		return NewRowDetector(), nil
	case DetectorGeometric:
		return NewGeometricDetector(), nil
	default:
		return nil, fmt.Errorf("unknown table detector: %s", name)
	}
}

// RowDetector treats each vertically contiguous block of lines as a table.
// Lines are split into cells at wide horizontal gaps.
type RowDetector struct {
	// CellGapRatio is the word gap, in font sizes, that separates two cells.
	CellGapRatio float64
	// BlockGapRatio is the baseline distance, in font sizes, that ends a table.
	BlockGapRatio float64
	// MinRows is the smallest block reported as a table.
	MinRows int
}

// NewRowDetector returns a RowDetector with defaults tuned for invoice forms.
func NewRowDetector() *RowDetector {
	return &RowDetector{
		CellGapRatio:  1.5,
		BlockGapRatio: 2.5,
		MinRows:       2,
	}
}

// Name returns "rows"
func (d *RowDetector) Name() string { return DetectorRows }

// DetectTables implements TableDetector.
func (d *RowDetector) DetectTables(c Content) []Table {
	var tables []Table
	var block Table
	var prev Line

	flush := func() {
		if len(block) >= d.MinRows {
			tables = append(tables, block)
		}
		block = nil
	}

	for i, line := range c.Lines {
		if i > 0 && !d.sameBlock(prev, line, c.Rules) {
			flush()
		}
		if row := d.splitCells(line); len(row) > 0 {
			block = append(block, row)
		}
		prev = line
	}
	flush()

	return tables
}

func (d *RowDetector) sameBlock(upper, lower Line, rules []Segment) bool {
	fs := math.Max(lineFontSize(upper), lineFontSize(lower))
	if upper.Y-lower.Y <= fs*d.BlockGapRatio {
		return true
	}

	// A vertical rule spanning both baselines means the lines sit in one ruled table.
	for _, s := range rules {
		if math.Abs(s.X1-s.X0) > 1 {
			continue
		}
		top, bottom := math.Max(s.Y0, s.Y1), math.Min(s.Y0, s.Y1)
		if top >= upper.Y && bottom <= lower.Y {
			return true
		}
	}
	return false
}

func (d *RowDetector) splitCells(line Line) Row {
	cells := splitLine(line, d.CellGapRatio)
	if len(cells) == 0 {
		return nil
	}
	row := make(Row, len(cells))
	for i, c := range cells {
		row[i] = c.text
	}
	return row
}

// cell is a run of words on one line with no column gap between them.
type cell struct {
	text     string
	x0, x1   float64
	fontSize float64
}

// splitLine groups the words of line into cells, breaking wherever the gap
// between two words exceeds gapRatio font sizes.
func splitLine(line Line, gapRatio float64) []cell {
	var cells []cell
	var words []string
	var cur cell

	for i, w := range line.Words {
		if i > 0 && w.X0-cur.x1 > w.FontSize*gapRatio {
			cur.text = strings.Join(words, " ")
			cells = append(cells, cur)
			words = nil
		}
		if len(words) == 0 {
			cur = cell{x0: w.X0}
		}
		words = append(words, w.Text)
		cur.x1 = w.X1
		cur.fontSize = math.Max(cur.fontSize, w.FontSize)
	}
	if len(words) > 0 {
		cur.text = strings.Join(words, " ")
		cells = append(cells, cur)
	}
	return cells
}

func lineFontSize(l Line) float64 {
	size := 0.0
	for _, w := range l.Words {
		size = math.Max(size, w.FontSize)
	}
	if size == 0 {
		return defaultFontSize
	}
	return size
}

// Compact trims cells and drops rows whose cells are all empty, so that the
// row after a label row is the next populated row.
func Compact(t Table) Table {
	out := make(Table, 0, len(t))
	for _, row := range t {
		trimmed := make(Row, len(row))
		empty := true
		for i, cell := range row {
			trimmed[i] = strings.TrimSpace(cell)
			if trimmed[i] != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, trimmed)
		}
	}
	return out
}
