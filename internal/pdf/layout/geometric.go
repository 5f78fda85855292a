package layout

import (
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/tables"
)

// GeometricDetector delegates to tabula's grid-based detector, feeding it
// cell phrases as text fragments and drawn segments as lines. Column
// boundaries come from fragment edges, so each fragment spans a whole cell.
type GeometricDetector struct {
	config tables.Config
	// CellGapRatio splits a line into cells, as in RowDetector.
	CellGapRatio float64
}

// NewGeometricDetector returns a detector that accepts single-column tables,
// since label/value pairs on invoices are often stacked vertically.
func NewGeometricDetector() *GeometricDetector {
	cfg := tables.DefaultConfig()
	cfg.MinCols = 1
	return &GeometricDetector{
		config:       cfg,
		CellGapRatio: NewRowDetector().CellGapRatio,
	}
}

// Name returns "geometric"
func (d *GeometricDetector) Name() string { return DetectorGeometric }

// DetectTables implements TableDetector.
func (d *GeometricDetector) DetectTables(c Content) []Table {
	page := &model.Page{
		Width:    c.Box.Width(),
		Height:   c.Box.Height(),
		RawText:  fragments(c.Lines, d.CellGapRatio),
		RawLines: ruleLines(c.Rules),
	}

	detector := tables.NewGeometricDetector()
	if err := detector.Configure(d.config); err != nil {
		return nil
	}

	found, err := detector.Detect(page)
	if err != nil {
		return nil
	}

	out := make([]Table, 0, len(found))
	for _, t := range found {
		table := make(Table, 0, t.RowCount())
		for _, cells := range t.Rows {
			row := make(Row, len(cells))
			for i, cell := range cells {
				row[i] = cell.Text
			}
			table = append(table, row)
		}
		if compacted := Compact(table); len(compacted) > 0 {
			out = append(out, compacted)
		}
	}
	return out
}

func fragments(lines []Line, gapRatio float64) []model.TextFragment {
	var frags []model.TextFragment
	for _, l := range lines {
		for _, c := range splitLine(l, gapRatio) {
			frags = append(frags, model.TextFragment{
				Text: c.text,
				BBox: model.BBox{
					X:      c.x0,
					Y:      l.Y - c.fontSize*0.2,
					Width:  c.x1 - c.x0,
					Height: c.fontSize,
				},
				FontSize: c.fontSize,
			})
		}
	}
	return frags
}

func ruleLines(segments []Segment) []model.Line {
	lines := make([]model.Line, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, model.Line{
			Start:  model.Point{X: s.X0, Y: s.Y0},
			End:    model.Point{X: s.X1, Y: s.Y1},
			IsRect: s.IsRect,
		})
	}
	return lines
}
