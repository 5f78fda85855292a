package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	defaultFontSize = 10.0

	// Glyphs whose baselines differ by less than this share of the font size
	// belong to the same line.
	lineToleranceRatio = 0.35
	minLineTolerance   = 1.5

	// A horizontal gap wider than this share of the font size starts a new word.
	wordGapRatio = 0.2
)

// NormalizeGlyphs applies NFKC to glyph text (ligatures, full-width digits)
// and splits glyphs that carry embedded whitespace into separate glyphs.
func NormalizeGlyphs(glyphs []Glyph) []Glyph {
	out := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		g.Text = norm.NFKC.String(g.Text)
		if g.Text == "" {
			continue
		}
		out = append(out, explode(g)...)
	}
	return out
}

// explode splits a multi-character glyph on whitespace, spreading its advance
// width evenly over its runes.
func explode(g Glyph) []Glyph {
	if !strings.ContainsFunc(g.Text, unicode.IsSpace) || utf8.RuneCountInString(g.Text) < 2 {
		return []Glyph{g}
	}

	perRune := g.W / float64(utf8.RuneCountInString(g.Text))
	var parts []Glyph
	var b strings.Builder
	start := 0
	idx := 0
	flush := func() {
		if b.Len() == 0 {
			return
		}
		n := utf8.RuneCountInString(b.String())
		parts = append(parts, Glyph{
			Text:     b.String(),
			X:        g.X + float64(start)*perRune,
			Y:        g.Y,
			W:        float64(n) * perRune,
			FontSize: g.FontSize,
		})
		b.Reset()
	}
	for _, r := range g.Text {
		if unicode.IsSpace(r) {
			flush()
			parts = append(parts, Glyph{Text: " ", X: g.X + float64(idx)*perRune, Y: g.Y, W: perRune, FontSize: g.FontSize})
		} else {
			if b.Len() == 0 {
				start = idx
			}
			b.WriteRune(r)
		}
		idx++
	}
	flush()
	return parts
}

func fontSize(g Glyph) float64 {
	fs := math.Abs(g.FontSize)
	if fs == 0 {
		return defaultFontSize
	}
	return fs
}

// AssembleLines groups glyphs into visual lines, top of the page first, and
// splits each line into words on whitespace glyphs or visible gaps.
func AssembleLines(glyphs []Glyph) []Line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := make([]Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var lines []Line
	group := []Glyph{sorted[0]}
	baseline := sorted[0].Y

	flush := func() {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].X < group[j].X
		})
		if words := splitWords(group); len(words) > 0 {
			lines = append(lines, Line{Y: baseline, Words: words})
		}
	}

	for _, g := range sorted[1:] {
		tolerance := math.Max(fontSize(g)*lineToleranceRatio, minLineTolerance)
		if math.Abs(g.Y-baseline) <= tolerance {
			group = append(group, g)
			continue
		}
		flush()
		group = []Glyph{g}
		baseline = g.Y
	}
	flush()

	return lines
}

func splitWords(glyphs []Glyph) []Word {
	var words []Word
	var b strings.Builder
	var current Word
	open := false

	closeWord := func() {
		if open {
			current.Text = b.String()
			words = append(words, current)
		}
		b.Reset()
		open = false
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.Text) == "" {
			closeWord()
			continue
		}
		fs := fontSize(g)
		if open && g.X-current.X1 > fs*wordGapRatio {
			closeWord()
		}
		if !open {
			current = Word{X0: g.X, X1: g.X, FontSize: fs}
			open = true
		}
		b.WriteString(g.Text)
		current.X1 = math.Max(current.X1, g.X+g.W)
	}
	closeWord()

	return words
}

// JoinLines renders lines as text, one line per row.
func JoinLines(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, l.Text())
	}
	return strings.Join(parts, "\n")
}
