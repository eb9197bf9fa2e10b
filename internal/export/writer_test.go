package export

import (
	"testing"
	"time"

	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

func TestBuildScoreRows(t *testing.T) {
	now := time.Now().UTC()
	scores := []scoring.StudentScore{
		{UDISE: "B", Grade: 5, Day: 1, Subjects: map[string]scoring.SubjectScore{
			"Odia": {Marks: 10, Total: 15},
			"EVS":  {Marks: 8, Total: 15},
		}},
		{UDISE: "A", Grade: 5, Day: 1, Subjects: map[string]scoring.SubjectScore{
			"Odia": {Marks: 12, Total: 15},
		}},
	}

	rows := BuildScoreRows("run-1", scores, now)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Sorted by udise then subject.
	if rows[0].UDISE != "A" || rows[0].Subject != "Odia" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].UDISE != "B" || rows[1].Subject != "EVS" {
		t.Errorf("rows[1] = %+v", rows[1])
	}
	if rows[2].Subject != "Odia" || rows[2].Marks != 10 {
		t.Errorf("rows[2] = %+v", rows[2])
	}
	if rows[0].RunID != "run-1" || rows[0].Grade != 5 {
		t.Errorf("row metadata = %+v", rows[0])
	}
}

func TestWriteScoresRoundTrip(t *testing.T) {
	now := time.UnixMilli(time.Now().UnixMilli()).UTC()
	in := []ScoreRow{
		{RunID: "r", UDISE: "21180100101", Grade: 5, Day: 1, Subject: "Odia", Marks: 10, Total: 15, ScoredAt: now},
		{RunID: "r", UDISE: "21180100102", Grade: 8, Day: 2, Subject: "Mathematics", Marks: 17, Total: 20, ScoredAt: now},
	}

	data, err := WriteScores(in)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty parquet output")
	}

	out, err := ReadScores(data)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].UDISE != "21180100101" || out[0].Marks != 10 {
		t.Errorf("row 0 = %+v", out[0])
	}
	if out[1].Subject != "Mathematics" || out[1].Total != 20 {
		t.Errorf("row 1 = %+v", out[1])
	}
}

func TestWriteScoresEmpty(t *testing.T) {
	data, err := WriteScores(nil)
	if err != nil {
		t.Fatalf("write empty: %v", err)
	}
	out, err := ReadScores(data)
	if err != nil {
		t.Fatalf("read empty: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d rows from empty file", len(out))
	}
}
