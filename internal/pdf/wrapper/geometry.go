package wrapper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// letterBox is used when no page in the tree declares a usable MediaBox.
var letterBox = layout.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}

// maxTreeDepth bounds the Parent walk so cyclic page trees terminate.
const maxTreeDepth = 10

// pageBox resolves the page MediaBox, walking up the page tree for
// inherited values.
func pageBox(page pdf.Page, logger *zap.Logger) layout.Rect {
	current := page.V
	for depth := 0; depth < maxTreeDepth && !current.IsNull(); depth++ {
		if v := current.Key("MediaBox"); !v.IsNull() {
			box, err := parseBox(v)
			if err == nil {
				if depth > 0 {
					logger.Debug("using inherited MediaBox",
						zap.Float64("width", box.Width()),
						zap.Float64("height", box.Height()))
				}
				return box
			}
			logger.Warn("ignoring invalid MediaBox", zap.Int("depth", depth), zap.Error(err))
		}
		current = current.Key("Parent")
	}

	logger.Debug("no MediaBox found, using US Letter")
	return letterBox
}

// parseBox parses a four-number rectangle array, repairing inverted corners.
func parseBox(v pdf.Value) (box layout.Rect, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt MediaBox: %v", r)
		}
	}()

	if v.Kind() != pdf.Array {
		return layout.Rect{}, fmt.Errorf("MediaBox is not an array: %v", v.Kind())
	}
	if v.Len() != 4 {
		return layout.Rect{}, fmt.Errorf("invalid MediaBox array length: %d, expected 4", v.Len())
	}

	var coords [4]float64
	for i := range coords {
		n, err := number(v.Index(i))
		if err != nil {
			return layout.Rect{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		coords[i] = n
	}

	llx, lly, urx, ury := coords[0], coords[1], coords[2], coords[3]
	if llx > urx {
		llx, urx = urx, llx
	}
	if lly > ury {
		lly, ury = ury, lly
	}
	if urx == llx || ury == lly {
		return layout.Rect{}, fmt.Errorf("degenerate MediaBox: [%.2f %.2f %.2f %.2f]", llx, lly, urx, ury)
	}

	return layout.Rect{X0: llx, Y0: lly, X1: urx, Y1: ury}, nil
}

func number(v pdf.Value) (float64, error) {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64()), nil
	case pdf.Real:
		return v.Float64(), nil
	}

	s := strings.TrimSpace(v.Text())
	s = strings.TrimSuffix(strings.TrimSuffix(s, "f"), "F")
	if s == "" {
		return 0, fmt.Errorf("not a number: %v", v.Kind())
	}
	return strconv.ParseFloat(s, 64)
}
