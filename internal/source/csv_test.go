package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCSVDirSheets(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Schools.csv", "UDISE,School Name\n123,Test UPS\n")
	writeCSV(t, dir, "Answer Keys.csv", "Grade,Subject\n5,Odia\n")
	writeCSV(t, dir, "notes.txt", "not a sheet")

	wb, err := NewCSVDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer wb.Close()

	names := wb.Sheets()
	if len(names) != 2 {
		t.Fatalf("got sheets %v, want 2", names)
	}
	if names[0] != "Answer Keys" || names[1] != "Schools" {
		t.Errorf("sheets = %v", names)
	}
}

func TestCSVDirSheet(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Schools.csv", "UDISE,School Name,Block\n123,Test UPS,Angul\n456,Other UPS\n")

	wb, err := NewCSVDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	rows, err := wb.Sheet("Schools")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][1] != "Test UPS" {
		t.Errorf("cell = %q", rows[1][1])
	}
	// Ragged rows come through unpadded.
	if len(rows[2]) != 2 {
		t.Errorf("ragged row has %d cells, want 2", len(rows[2]))
	}
}

func TestCSVDirMissingSheet(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Schools.csv", "UDISE\n")

	wb, err := NewCSVDir(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = wb.Sheet("Responses")
	if !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("err = %v, want ErrSheetNotFound", err)
	}
	if err == nil || !strings.Contains(err.Error(), "Schools") {
		t.Errorf("error should list available sheets: %v", err)
	}
}

func TestCSVDirEmpty(t *testing.T) {
	if _, err := NewCSVDir(t.TempDir()); err == nil {
		t.Error("empty directory should fail to open")
	}
}

func TestOpenRejectsUnknownFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("plain text file should be rejected")
	}
}

func TestReadMatrixCSV(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "responses.csv", "Grade,Day,UDISE\n5,1,123\n")

	rows, err := ReadMatrix(filepath.Join(dir, "responses.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[1][2] != "123" {
		t.Errorf("rows = %v", rows)
	}
}

func TestReadMatrixUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.tsv")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadMatrix(path); err == nil {
		t.Error("unknown extension should be rejected")
	}
}

func TestOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "Schools.csv", "UDISE\n123\n")

	wb, err := Open(dir)
	if err != nil {
		t.Fatalf("open dir: %v", err)
	}
	defer wb.Close()
	if _, ok := wb.(*CSVDir); !ok {
		t.Errorf("got %T, want *CSVDir", wb)
	}
}
