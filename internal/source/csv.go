package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CSVDir treats a directory as a workbook with one CSV file per sheet.
// The sheet name is the file name without the .csv extension.
type CSVDir struct {
	dir    string
	sheets map[string]string // sheet name -> file path
	names  []string
}

// NewCSVDir indexes the CSV files in dir.
func NewCSVDir(dir string) (*CSVDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %s: %w", dir, err)
	}

	sheets := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		sheets[name] = filepath.Join(dir, e.Name())
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}

	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)

	return &CSVDir{dir: dir, sheets: sheets, names: names}, nil
}

// Sheet parses the named CSV file into a cell matrix. Rows may carry
// varying field counts; no padding or validation happens here.
func (d *CSVDir) Sheet(name string) ([][]string, error) {
	path, ok := d.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, name, strings.Join(d.names, ", "))
	}
	return readCSVFile(path)
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// Sheets lists sheet names in sorted order.
func (d *CSVDir) Sheets() []string {
	return d.names
}

// Close is a no-op; files are opened per Sheet call.
func (d *CSVDir) Close() error {
	return nil
}
