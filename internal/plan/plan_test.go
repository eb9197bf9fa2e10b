package plan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPlan(t *testing.T) {
	p := Default()

	tests := []struct {
		grade, day int
		expected   int
		subjects   []string
	}{
		{5, 1, 30, []string{"Odia", "EVS"}},
		{5, 2, 30, []string{"English", "Mathematics"}},
		{8, 1, 60, []string{"Odia", "English", "Science"}},
		{8, 2, 40, []string{"Mathematics", "Social Science"}},
	}

	for _, tt := range tests {
		b, err := p.Bucket(tt.grade, tt.day)
		if err != nil {
			t.Fatalf("Bucket(%d,%d) failed: %v", tt.grade, tt.day, err)
		}
		if b.ExpectedCount != tt.expected {
			t.Errorf("Bucket(%d,%d) expected_count = %d, want %d", tt.grade, tt.day, b.ExpectedCount, tt.expected)
		}
		if len(b.Subjects) != len(tt.subjects) {
			t.Fatalf("Bucket(%d,%d) subjects = %v, want %v", tt.grade, tt.day, b.Subjects, tt.subjects)
		}
		for i, s := range tt.subjects {
			if b.Subjects[i] != s {
				t.Errorf("Bucket(%d,%d) subject[%d] = %s, want %s", tt.grade, tt.day, i, b.Subjects[i], s)
			}
		}
	}
}

func TestDayFor(t *testing.T) {
	p := Default()

	tests := []struct {
		grade   int
		subject string
		day     int
		ok      bool
	}{
		{5, "Odia", 1, true},
		{5, "EVS", 1, true},
		{5, "English", 2, true},
		{5, "Mathematics", 2, true},
		{5, "Science", 0, false}, // grade 8 subject
		{8, "Science", 1, true},
		{8, "Social Science", 2, true},
		{8, "mathematics", 2, true}, // case-insensitive
		{8, "History", 0, false},
	}

	for _, tt := range tests {
		day, ok := p.DayFor(tt.grade, tt.subject)
		if ok != tt.ok || day != tt.day {
			t.Errorf("DayFor(%d, %q) = (%d, %v), want (%d, %v)",
				tt.grade, tt.subject, day, ok, tt.day, tt.ok)
		}
	}
}

func TestSubjectTotalMarks(t *testing.T) {
	p := Default()

	if total, ok := p.SubjectTotalMarks(5); !ok || total != 15 {
		t.Errorf("SubjectTotalMarks(5) = (%d, %v), want (15, true)", total, ok)
	}
	if total, ok := p.SubjectTotalMarks(8); !ok || total != 20 {
		t.Errorf("SubjectTotalMarks(8) = (%d, %v), want (20, true)", total, ok)
	}
	if _, ok := p.SubjectTotalMarks(6); ok {
		t.Error("SubjectTotalMarks(6) should not exist")
	}
}

func TestNewRejectsDuplicateBucket(t *testing.T) {
	_, err := New(Plan{
		Buckets: []Bucket{
			{Grade: 5, Day: 1, Subjects: []string{"Odia"}, ExpectedCount: 15},
			{Grade: 5, Day: 1, Subjects: []string{"EVS"}, ExpectedCount: 15},
		},
		TotalMarks: map[int]int{5: 15},
	})
	if err == nil {
		t.Error("New should fail for duplicate (grade, day) buckets")
	}
}

func TestNewRejectsInvalidBuckets(t *testing.T) {
	cases := []struct {
		name string
		p    Plan
	}{
		{"no buckets", Plan{TotalMarks: map[int]int{5: 15}}},
		{"bad day", Plan{
			Buckets:    []Bucket{{Grade: 5, Day: 3, Subjects: []string{"Odia"}, ExpectedCount: 15}},
			TotalMarks: map[int]int{5: 15},
		}},
		{"zero expected count", Plan{
			Buckets:    []Bucket{{Grade: 5, Day: 1, Subjects: []string{"Odia"}, ExpectedCount: 0}},
			TotalMarks: map[int]int{5: 15},
		}},
		{"no subjects", Plan{
			Buckets:    []Bucket{{Grade: 5, Day: 1, ExpectedCount: 15}},
			TotalMarks: map[int]int{5: 15},
		}},
		{"missing total marks", Plan{
			Buckets: []Bucket{{Grade: 5, Day: 1, Subjects: []string{"Odia"}, ExpectedCount: 15}},
		}},
		{"subject on two days", Plan{
			Buckets: []Bucket{
				{Grade: 5, Day: 1, Subjects: []string{"Odia"}, ExpectedCount: 15},
				{Grade: 5, Day: 2, Subjects: []string{"odia"}, ExpectedCount: 15},
			},
			TotalMarks: map[int]int{5: 15},
		}},
	}

	for _, tc := range cases {
		if _, err := New(tc.p); err == nil {
			t.Errorf("New should fail for %s", tc.name)
		}
	}
}

func TestGrades(t *testing.T) {
	grades := Default().Grades()
	if len(grades) != 2 || grades[0] != 5 || grades[1] != 8 {
		t.Errorf("Grades() = %v, want [5 8]", grades)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir, err := os.MkdirTemp("", "plan-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	yamlData := `
buckets:
  - grade: 5
    day: 1
    subjects: [Odia, EVS]
    expected_count: 30
  - grade: 5
    day: 2
    subjects: [English, Mathematics]
    expected_count: 30
total_marks:
  5: 15
`
	path := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatalf("write plan file: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	b, err := p.Bucket(5, 1)
	if err != nil {
		t.Fatalf("Bucket(5,1) failed: %v", err)
	}
	if b.ExpectedCount != 30 {
		t.Errorf("expected_count = %d, want 30", b.ExpectedCount)
	}
	if day, ok := p.DayFor(5, "EVS"); !ok || day != 1 {
		t.Errorf("DayFor(5, EVS) = (%d, %v), want (1, true)", day, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/plan.yaml"); err == nil {
		t.Error("Load should fail for missing file")
	}
}
