package invoice

import (
	"errors"
	"fmt"
	"os"

	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
	"github.com/pelletier/go-toml/v2"
)

// Crop is a rectangle expressed as fractions of the page size, measured from
// the top-left corner.
type Crop struct {
	Left   float64 `toml:"left"`
	Top    float64 `toml:"top"`
	Right  float64 `toml:"right"`
	Bottom float64 `toml:"bottom"`
}

// Region scales the crop to a page of width w and height h.
func (c Crop) Region(w, h float64) layout.Region {
	return layout.Region{
		X0:     c.Left * w,
		Top:    c.Top * h,
		X1:     c.Right * w,
		Bottom: c.Bottom * h,
	}
}

// Replacement rewrites a known misread token.
type Replacement struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Template describes where the fields sit on one invoice layout.
type Template struct {
	Name string `toml:"name"`
	// PageIndex is the zero-based index of the data page.
	PageIndex int  `toml:"page_index"`
	BuyerCrop Crop `toml:"buyer_crop"`
	// NoiseMarkers drop any buyer line containing one of them, case-insensitively.
	NoiseMarkers []string      `toml:"noise_markers"`
	Replacements []Replacement `toml:"replacements"`
}

// Default buyer crop ratios for the export invoice layout
const (
	DefaultCropLeft   = 0.48
	DefaultCropTop    = 0.24
	DefaultCropRight  = 0.98
	DefaultCropBottom = 0.34

	DefaultPageIndex = 1
)

// DefaultTemplate returns the export invoice layout.
func DefaultTemplate() Template {
	return Template{
		Name:      "export-invoice",
		PageIndex: DefaultPageIndex,
		BuyerCrop: Crop{
			Left:   DefaultCropLeft,
			Top:    DefaultCropTop,
			Right:  DefaultCropRight,
			Bottom: DefaultCropBottom,
		},
		NoiseMarkers: []string{"BUYER", "AEO"},
		Replacements: []Replacement{{From: "OFPFICE", To: "OFFICE"}},
	}
}

// LoadTemplate reads a TOML profile from path. Keys absent from the file keep
// their DefaultTemplate values.
func LoadTemplate(path string) (Template, error) {
	tmpl := DefaultTemplate()

	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read template: %w", err)
	}
	if err := toml.Unmarshal(data, &tmpl); err != nil {
		return Template{}, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	if err := tmpl.Validate(); err != nil {
		return Template{}, fmt.Errorf("invalid template %s: %w", path, err)
	}
	return tmpl, nil
}

// Validate checks that the crop lies within the page and is not empty.
func (t Template) Validate() error {
	c := t.BuyerCrop
	if c.Left < 0 || c.Right > 1 || c.Left >= c.Right {
		return fmt.Errorf("buyer crop needs 0 <= left < right <= 1, got left=%g right=%g", c.Left, c.Right)
	}
	if c.Top < 0 || c.Bottom > 1 || c.Top >= c.Bottom {
		return fmt.Errorf("buyer crop needs 0 <= top < bottom <= 1, got top=%g bottom=%g", c.Top, c.Bottom)
	}
	if t.PageIndex < 0 {
		return errors.New("page index cannot be negative")
	}
	for _, r := range t.Replacements {
		if r.From == "" {
			return errors.New("replacement with empty 'from'")
		}
	}
	return nil
}
