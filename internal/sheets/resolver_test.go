package sheets

import (
	"testing"
)

func TestResolveHeaders(t *testing.T) {
	headers := []string{"UDISE Code", "School"}
	aliases := map[string][]string{
		"udise":      {"UDISE", "UDISE Code"},
		"schoolName": {"School"},
	}

	resolved, missing := ResolveHeaders(headers, aliases)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	if resolved["udise"] != "UDISE Code" {
		t.Errorf("udise resolved to %q, want %q", resolved["udise"], "UDISE Code")
	}
	if resolved["schoolName"] != "School" {
		t.Errorf("schoolName resolved to %q, want %q", resolved["schoolName"], "School")
	}
}

func TestResolveHeadersAliasPriority(t *testing.T) {
	// Both aliases are present; the first alias in the list must win.
	headers := []string{"Udise Code", "UDISE"}
	aliases := map[string][]string{
		"udise": {"UDISE", "Udise Code"},
	}

	resolved, _ := ResolveHeaders(headers, aliases)
	if resolved["udise"] != "UDISE" {
		t.Errorf("udise resolved to %q, want first-alias match %q", resolved["udise"], "UDISE")
	}
}

func TestResolveHeadersTrimsWhitespace(t *testing.T) {
	headers := []string{"  Block Name  "}
	aliases := map[string][]string{
		"block": {"Block", "Block Name"},
	}

	resolved, missing := ResolveHeaders(headers, aliases)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	// The original (untrimmed) header string is returned for row lookup.
	if resolved["block"] != "  Block Name  " {
		t.Errorf("block resolved to %q, want original header", resolved["block"])
	}
}

func TestResolveHeadersReportsMissing(t *testing.T) {
	headers := []string{"Something Else"}
	aliases := map[string][]string{
		"udise":      {"UDISE"},
		"schoolName": {"School"},
	}

	resolved, missing := ResolveHeaders(headers, aliases)
	if len(resolved) != 0 {
		t.Errorf("unexpected resolutions: %v", resolved)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want 2 fields", missing)
	}
	// Sorted for determinism.
	if missing[0] != "schoolName" || missing[1] != "udise" {
		t.Errorf("missing = %v, want [schoolName udise]", missing)
	}
}

func TestHeaderRowIndex(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want int
	}{
		{"header first", [][]string{{"UDISE", "School"}}, 0},
		{"leading blanks", [][]string{{"", ""}, {}, {"UDISE", "School"}}, 2},
		{"whitespace only", [][]string{{"   "}, {"UDISE"}}, 1},
		{"all blank", [][]string{{""}, {"  "}}, -1},
		{"empty", nil, -1},
	}

	for _, tt := range tests {
		if got := HeaderRowIndex(tt.rows); got != tt.want {
			t.Errorf("%s: HeaderRowIndex = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRowCell(t *testing.T) {
	headers := TrimHeaders([]string{"UDISE", "School Name"})
	row := NewRow(headers, []string{" 21180100101 ", "UP School"})

	if got := row.Cell("UDISE"); got != "21180100101" {
		t.Errorf("Cell(UDISE) = %q, want trimmed value", got)
	}
	if got := row.Cell("School Name"); got != "UP School" {
		t.Errorf("Cell(School Name) = %q", got)
	}
	if got := row.Cell("Missing"); got != "" {
		t.Errorf("Cell(Missing) = %q, want empty", got)
	}

	// Short row: header beyond row length yields empty.
	short := NewRow(headers, []string{"21180100101"})
	if got := short.Cell("School Name"); got != "" {
		t.Errorf("Cell on short row = %q, want empty", got)
	}
}
