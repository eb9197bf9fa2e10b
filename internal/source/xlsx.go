package source

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXWorkbook reads sheets from an Excel workbook.
type XLSXWorkbook struct {
	file *excelize.File
	path string
}

// NewXLSXWorkbook opens the workbook at path.
func NewXLSXWorkbook(path string) (*XLSXWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &XLSXWorkbook{file: f, path: path}, nil
}

// Sheet returns the cell matrix for the named sheet. Sheet name
// matching is case-insensitive since exports vary in casing.
func (w *XLSXWorkbook) Sheet(name string) ([][]string, error) {
	actual := ""
	for _, s := range w.file.GetSheetList() {
		if strings.EqualFold(s, name) {
			actual = s
			break
		}
	}
	if actual == "" {
		return nil, fmt.Errorf("%w: %q in %s (have %s)",
			ErrSheetNotFound, name, w.path, strings.Join(w.file.GetSheetList(), ", "))
	}

	rows, err := w.file.GetRows(actual)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", actual, err)
	}
	return rows, nil
}

// FirstSheet returns the cell matrix of the workbook's first sheet.
func (w *XLSXWorkbook) FirstSheet() ([][]string, error) {
	list := w.file.GetSheetList()
	if len(list) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", w.path)
	}
	return w.Sheet(list[0])
}

// Sheets lists sheet names in workbook order.
func (w *XLSXWorkbook) Sheets() []string {
	return w.file.GetSheetList()
}

// Close releases the workbook.
func (w *XLSXWorkbook) Close() error {
	return w.file.Close()
}
