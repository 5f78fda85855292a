package wrapper

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	pdferrors "github.com/a3tai/invoice-extractor/internal/pdf/errors"
	"github.com/a3tai/invoice-extractor/internal/pdf/layout"
	"github.com/a3tai/invoice-extractor/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPageInvoice(t *testing.T, dir string) string {
	return pdftest.Write(t, dir, "invoice.pdf",
		pdftest.Page{Texts: []pdftest.Text{{X: 50, Y: 800, S: "COMMERCIAL INVOICE"}}},
		pdftest.Page{
			MediaBox: [4]float64{0, 0, 612, 792},
			Texts: []pdftest.Text{
				{X: 50, Y: 700, S: "EXP-0042 12/03/2024"},
				{X: 50, Y: 688, S: "Port of loading"},
			},
		},
	)
}

func TestOpener_Open(t *testing.T) {
	dir := t.TempDir()
	path := twoPageInvoice(t, dir)

	doc, err := NewOpener(OpenerConfig{}).Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 2, doc.PageCount())

	first, err := doc.Page(0)
	require.NoError(t, err)
	assert.Equal(t, 595.0, first.Width(), "inherited from the page tree")
	assert.Equal(t, 842.0, first.Height())
	assert.Equal(t, "COMMERCIAL INVOICE", first.Text())

	second, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 612.0, second.Width(), "page MediaBox overrides the tree")
	assert.Equal(t, 792.0, second.Height())
	assert.Equal(t, "EXP-0042 12/03/2024\nPort of loading", second.Text())
}

func TestOpener_OpenWithPreflight(t *testing.T) {
	dir := t.TempDir()
	path := twoPageInvoice(t, dir)

	doc, err := NewOpener(OpenerConfig{Preflight: true}).Open(path)
	require.NoError(t, err)
	defer doc.Close()
	assert.Equal(t, 2, doc.PageCount())
}

func TestOpener_OpenFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := pdftest.WriteBytes(t, dir, "corrupt.pdf", []byte("this is not a pdf file at all"))
	empty := pdftest.WriteBytes(t, dir, "empty.pdf", nil)
	large := twoPageInvoice(t, dir)
	sub := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name   string
		path   string
		config OpenerConfig
	}{
		{name: "missing", path: filepath.Join(dir, "nope.pdf")},
		{name: "corrupt", path: corrupt},
		{name: "corrupt_preflight", path: corrupt, config: OpenerConfig{Preflight: true}},
		{name: "empty", path: empty},
		{name: "directory", path: sub},
		{name: "too_large", path: large, config: OpenerConfig{MaxFileSize: 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewOpener(tt.config).Open(tt.path)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Equal(t, pdferrors.KindOpen, pdferrors.KindOf(err), "got %v", err)
		})
	}
}

func TestDocument_PageBounds(t *testing.T) {
	dir := t.TempDir()
	doc, err := NewOpener(OpenerConfig{}).Open(twoPageInvoice(t, dir))
	require.NoError(t, err)

	_, err = doc.Page(2)
	assert.True(t, stderrors.Is(err, ErrInvalidPage))

	_, err = doc.Page(-1)
	assert.True(t, stderrors.Is(err, ErrInvalidPage))

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close(), "close is idempotent")

	_, err = doc.Page(0)
	assert.Equal(t, ErrDocumentClosed, err)
}

func TestDocument_RulesReachDetector(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "ruled.pdf",
		pdftest.Page{},
		pdftest.Page{
			Texts: []pdftest.Text{
				{X: 50, Y: 500, S: "EXCHANGE RATE"},
				{X: 50, Y: 440, S: "1 EUR INR 90.25"},
			},
			Boxes: []pdftest.Box{{X: 40, Y: 430, W: 0.5, H: 90}},
		},
	)

	doc, err := NewOpener(OpenerConfig{TableDetector: layout.NewRowDetector()}).Open(path)
	require.NoError(t, err)
	defer doc.Close()

	page, err := doc.Page(1)
	require.NoError(t, err)

	tables := page.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, layout.Table{{"EXCHANGE RATE"}, {"1 EUR INR 90.25"}}, tables[0])
}

func TestWrapperError(t *testing.T) {
	cause := stderrors.New("bad xref")
	err := &WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: cause}

	assert.Equal(t, "PDF pdfcpu library error in preflight: bad xref", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}
