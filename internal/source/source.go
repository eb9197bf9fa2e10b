// Package source reads tabular input as raw 2-D cell matrices from
// spreadsheet workbooks or directories of CSV files.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSheetNotFound is returned when a named sheet is absent from the
// workbook. Callers treat a missing required sheet as fatal.
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook exposes named sheets as raw cell matrices. Cells are
// returned untrimmed; downstream resolvers own whitespace handling.
type Workbook interface {
	// Sheet returns the full cell matrix for the named sheet.
	// Rows may be ragged; short rows are not padded.
	Sheet(name string) ([][]string, error)

	// Sheets lists the sheet names present, in workbook order.
	Sheets() []string

	// Close releases resources.
	Close() error
}

// Open creates a Workbook for the given path. An .xlsx file opens as a
// spreadsheet workbook; a directory opens as a set of CSV sheets, one
// file per sheet.
func Open(path string) (Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input %s: %w", path, err)
	}

	if info.IsDir() {
		return NewCSVDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return NewXLSXWorkbook(path)
	}
	return nil, fmt.Errorf("unsupported input %s: want an .xlsx file or a directory of CSVs", path)
}

// ReadMatrix reads a single cell matrix from path: the first sheet of
// an .xlsx workbook, or the contents of one .csv file. Field exports
// ship as one workbook per source, with the data always on the first
// sheet.
func ReadMatrix(path string) ([][]string, error) {
	switch {
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		return readCSVFile(path)
	case strings.EqualFold(filepath.Ext(path), ".xlsx"):
		wb, err := NewXLSXWorkbook(path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return wb.FirstSheet()
	default:
		return nil, fmt.Errorf("unsupported input %s: want .xlsx or .csv", path)
	}
}
