// Package pdftest writes small, valid PDF files for tests. Text is set in
// Courier with explicit widths, so every character advances 0.6 em.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Text is one string drawn with its baseline origin at (X, Y).
type Text struct {
	X, Y float64
	Size float64
	S    string
}

// Box is a filled rectangle, typically a table rule.
type Box struct {
	X, Y, W, H float64
}

// Page describes one page. A zero MediaBox inherits the document default.
type Page struct {
	MediaBox [4]float64
	Texts    []Text
	Boxes    []Box
}

// DefaultMediaBox is declared on the page tree root (A4).
var DefaultMediaBox = [4]float64{0, 0, 595, 842}

// Build renders pages into a PDF document.
func Build(pages ...Page) []byte {
	var objects []string

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox %s >>",
			strings.Join(kids, " "), len(pages), formatBox(DefaultMediaBox)),
		courier(),
	)

	for i, p := range pages {
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R", 5+2*i)
		if p.MediaBox != [4]float64{} {
			page += " /MediaBox " + formatBox(p.MediaBox)
		}
		page += " >>"

		stream := contentStream(p)
		objects = append(objects,
			page,
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// Write builds pages into dir/name and returns the file path.
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteBytes writes raw content, for corrupt-file cases.
func WriteBytes(t testing.TB, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func courier() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = "600"
	}
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " "))
}

func contentStream(p Page) string {
	var sb strings.Builder
	for _, b := range p.Boxes {
		fmt.Fprintf(&sb, "%s %s %s %s re f\n", num(b.X), num(b.Y), num(b.W), num(b.H))
	}
	for _, t := range p.Texts {
		size := t.Size
		if size == 0 {
			size = 10
		}
		fmt.Fprintf(&sb, "BT /F1 %s Tf 1 0 0 1 %s %s Tm (%s) Tj ET\n", num(size), num(t.X), num(t.Y), escape(t.S))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func formatBox(b [4]float64) string {
	return fmt.Sprintf("[%s %s %s %s]", num(b[0]), num(b[1]), num(b[2]), num(b[3]))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
