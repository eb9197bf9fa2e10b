package sheets

import "strings"

// HeaderRowIndex returns the index of the first row containing any non-blank
// cell. Roster exports sometimes lead with blank spacer rows. Returns -1 when
// every row is blank.
func HeaderRowIndex(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return -1
}

// TrimHeaders returns the header row with every cell whitespace-trimmed.
func TrimHeaders(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// Row wraps one data row with its headers for by-name cell access.
type Row struct {
	headers []string
	cells   []string
}

// NewRow pairs a data row with its (trimmed) header row.
func NewRow(headers, cells []string) Row {
	return Row{headers: headers, cells: cells}
}

// Cell returns the trimmed cell value under the given header, or "" when the
// header is absent or the row is shorter than the header row.
func (r Row) Cell(header string) string {
	for i, h := range r.headers {
		if h == header {
			if i < len(r.cells) {
				return strings.TrimSpace(r.cells[i])
			}
			return ""
		}
	}
	return ""
}
