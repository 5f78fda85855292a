// Package sheet stores batch records in an XLSX workbook.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// DefaultSheet is the worksheet records are written to
	DefaultSheet = "Invoices"

	// DefaultDirPerm is used when creating the output directory
	DefaultDirPerm = 0o750
)

// Workbook appends rows to one sheet of an XLSX file. The header row is
// written only when the sheet is created.
type Workbook struct {
	path    string
	sheet   string
	replace bool
	logger  *zap.Logger
}

// Option configures a Workbook
type Option func(*Workbook)

// WithSheet selects the worksheet name
func WithSheet(name string) Option {
	return func(w *Workbook) {
		if name != "" {
			w.sheet = name
		}
	}
}

// WithReplace makes Write start a new workbook instead of appending to an
// existing file
func WithReplace() Option {
	return func(w *Workbook) {
		w.replace = true
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(w *Workbook) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorkbook returns a sink writing to path
func NewWorkbook(path string, opts ...Option) *Workbook {
	w := &Workbook{
		path:   path,
		sheet:  DefaultSheet,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the output file path
func (w *Workbook) Path() string {
	return w.path
}

// ExistingRecords counts the data rows already in the sheet, excluding the
// header. A missing file or sheet has none.
func (w *Workbook) ExistingRecords() (int, error) {
	if w.replace {
		return 0, nil
	}
	rows, err := w.Rows()
	if err != nil {
		return 0, err
	}

	nonEmpty := 0
	for _, row := range rows {
		if !isBlank(row) {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return 0, nil
	}
	return nonEmpty - 1, nil
}

// Rows returns every row of the sheet, header included.
func (w *Workbook) Rows() ([][]string, error) {
	if _, err := os.Stat(w.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", w.path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(w.sheet); err != nil || idx == -1 {
		return nil, nil
	}

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", w.sheet, err)
	}
	return rows, nil
}

// Write appends rows below the existing content, adding header first when
// the sheet is new. The file is replaced atomically.
func (w *Workbook) Write(header []string, rows [][]any) error {
	f, created, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	existing, err := f.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", w.sheet, err)
	}

	next := len(existing) + 1
	if created || len(existing) == 0 {
		if err := setRow(f, w.sheet, next, &header); err != nil {
			return err
		}
		next++
	}

	for _, row := range rows {
		if err := setRow(f, w.sheet, next, &row); err != nil {
			return err
		}
		next++
	}

	if err := w.save(f); err != nil {
		return err
	}

	w.logger.Debug("workbook saved",
		zap.String("file", w.path),
		zap.String("sheet", w.sheet),
		zap.Int("appended", len(rows)),
		zap.Bool("created", created),
	)
	return nil
}

func (w *Workbook) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(w.path); w.replace || errors.Is(err, os.ErrNotExist) {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to name sheet: %w", err)
		}
		return f, true, nil
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open workbook %s: %w", w.path, err)
	}

	idx, err := f.GetSheetIndex(w.sheet)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("failed to look up sheet %s: %w", w.sheet, err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(w.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to add sheet %s: %w", w.sheet, err)
		}
		return f, true, nil
	}
	return f, false, nil
}

func (w *Workbook) save(f *excelize.File) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".invoices-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary workbook: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", w.path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
