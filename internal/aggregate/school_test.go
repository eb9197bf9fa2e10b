package aggregate

import (
	"testing"

	"github.com/angulpilot/assessment-pipeline/internal/plan"
	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

func grade5Plan(t *testing.T) *plan.Plan {
	t.Helper()
	p, err := plan.New(plan.Plan{
		Buckets: []plan.Bucket{
			{Grade: 5, Day: 1, Subjects: []string{"Odia", "EVS"}, ExpectedCount: 30},
			{Grade: 5, Day: 2, Subjects: []string{"English", "Mathematics"}, ExpectedCount: 30},
		},
		TotalMarks: map[int]int{5: 15},
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return p
}

func student(udise string, subjects map[string]scoring.SubjectScore) scoring.StudentScore {
	return scoring.StudentScore{UDISE: udise, Grade: 5, Day: 1, Subjects: subjects}
}

func TestSchoolFoldSubjectAverages(t *testing.T) {
	f := NewSchoolFold(grade5Plan(t), 5)
	f.Add(student("S1", map[string]scoring.SubjectScore{
		"Odia": {Marks: 10, Total: 15},
	}))
	f.Add(student("S1", map[string]scoring.SubjectScore{
		"Odia": {Marks: 12, Total: 15},
	}))

	grades := f.Grades()
	ga, ok := grades["S1"]
	if !ok {
		t.Fatal("school S1 missing from fold")
	}
	if ga.StudentCount != 2 {
		t.Errorf("studentCount = %d, want 2", ga.StudentCount)
	}

	odia := ga.Subjects["Odia"]
	if odia.AvgMarks != 11 {
		t.Errorf("avgMarks = %v, want 11", odia.AvgMarks)
	}
	if odia.AvgPercent != 73.33 {
		t.Errorf("avgPercent = %v, want 73.33", odia.AvgPercent)
	}
	if odia.TotalMarks != 15 {
		t.Errorf("totalMarks = %d, want 15", odia.TotalMarks)
	}
	if odia.StudentCount != 2 {
		t.Errorf("subject studentCount = %d, want 2", odia.StudentCount)
	}
}

func TestSchoolFoldPerSubjectDivisor(t *testing.T) {
	// Only one of the two students attempted EVS; its average must
	// divide by 1, not by the school roster size.
	f := NewSchoolFold(grade5Plan(t), 5)
	f.Add(student("S1", map[string]scoring.SubjectScore{
		"Odia": {Marks: 10, Total: 15},
		"EVS":  {Marks: 9, Total: 15},
	}))
	f.Add(student("S1", map[string]scoring.SubjectScore{
		"Odia": {Marks: 14, Total: 15},
	}))

	ga := f.Grades()["S1"]
	evs := ga.Subjects["EVS"]
	if evs.AvgMarks != 9 || evs.StudentCount != 1 {
		t.Errorf("EVS = %+v, want avgMarks 9 over 1 student", evs)
	}
	odia := ga.Subjects["Odia"]
	if odia.AvgMarks != 12 || odia.StudentCount != 2 {
		t.Errorf("Odia = %+v, want avgMarks 12 over 2 students", odia)
	}
}

// The overall percentage deliberately divides the mean of the subject
// averages by the single-subject total-marks constant, not by a sum of
// totals across subjects. This test pins that behavior; do not "fix" it
// without confirming intent with the data owners.
func TestGradeOverallUsesSingleSubjectDenominator(t *testing.T) {
	f := NewSchoolFold(grade5Plan(t), 5)
	f.Add(student("S1", map[string]scoring.SubjectScore{
		"Odia": {Marks: 12, Total: 15},
		"EVS":  {Marks: 9, Total: 15},
	}))

	ga := f.Grades()["S1"]
	if ga.OverallAvgMarks != 10.5 {
		t.Errorf("overallAvgMarks = %v, want 10.5", ga.OverallAvgMarks)
	}
	// 10.5 / 15 * 100, not 21 / 30 * 100 (numerically equal here, so
	// use an asymmetric case too).
	if ga.OverallPercent != 70 {
		t.Errorf("overallPercent = %v, want 70", ga.OverallPercent)
	}

	f2 := NewSchoolFold(grade5Plan(t), 5)
	f2.Add(student("S2", map[string]scoring.SubjectScore{
		"Odia": {Marks: 15, Total: 15},
	}))
	f2.Add(student("S2", map[string]scoring.SubjectScore{
		"EVS": {Marks: 0, Total: 15},
	}))
	ga2 := f2.Grades()["S2"]
	if ga2.OverallAvgMarks != 7.5 {
		t.Errorf("overallAvgMarks = %v, want 7.5", ga2.OverallAvgMarks)
	}
	if ga2.OverallPercent != 50 {
		t.Errorf("overallPercent = %v, want 50 (7.5 of a single 15-mark subject)", ga2.OverallPercent)
	}
}

// The overall mean averages the already-rounded per-subject avgMarks,
// not the raw averages. The two orderings diverge at cent boundaries:
// Odia 1/8 = 0.125 rounds to 0.13 before entering the mean, so the
// overall is (0.13+0.12)/2 = 0.125 -> 0.13, where mean-of-raw would
// give (0.125+0.12)/2 = 0.1225 -> 0.12.
func TestGradeOverallAveragesRoundedSubjectAverages(t *testing.T) {
	f := NewSchoolFold(grade5Plan(t), 5)
	for i := 0; i < 8; i++ {
		marks := 0
		if i == 0 {
			marks = 1
		}
		f.Add(student("S1", map[string]scoring.SubjectScore{
			"Odia": {Marks: marks, Total: 15},
		}))
	}
	for i := 0; i < 25; i++ {
		marks := 0
		if i < 3 {
			marks = 1
		}
		f.Add(student("S1", map[string]scoring.SubjectScore{
			"EVS": {Marks: marks, Total: 15},
		}))
	}

	ga := f.Grades()["S1"]
	if odia := ga.Subjects["Odia"]; odia.AvgMarks != 0.13 {
		t.Errorf("Odia avgMarks = %v, want 0.13", odia.AvgMarks)
	}
	if evs := ga.Subjects["EVS"]; evs.AvgMarks != 0.12 {
		t.Errorf("EVS avgMarks = %v, want 0.12", evs.AvgMarks)
	}
	if ga.OverallAvgMarks != 0.13 {
		t.Errorf("overallAvgMarks = %v, want 0.13 (mean of rounded subject averages)", ga.OverallAvgMarks)
	}
	if ga.OverallPercent != 0.83 {
		t.Errorf("overallPercent = %v, want 0.83", ga.OverallPercent)
	}
}

func TestMergeSchools(t *testing.T) {
	g5 := map[string]*GradeAggregate{
		"B": {StudentCount: 1},
		"A": {StudentCount: 2},
	}
	g8 := map[string]*GradeAggregate{
		"B": {StudentCount: 3},
		"C": {StudentCount: 4},
	}

	out := MergeSchools(g5, g8)
	if len(out) != 3 {
		t.Fatalf("got %d schools, want 3", len(out))
	}
	if out[0].UDISE != "A" || out[1].UDISE != "B" || out[2].UDISE != "C" {
		t.Errorf("not sorted by UDISE: %v, %v, %v", out[0].UDISE, out[1].UDISE, out[2].UDISE)
	}
	if out[0].Grade8 != nil {
		t.Error("school A should have no grade 8 aggregate")
	}
	if out[1].Grade5 == nil || out[1].Grade8 == nil {
		t.Error("school B should have both grades")
	}
	if out[2].Grade5 != nil {
		t.Error("school C should have no grade 5 aggregate")
	}
}

func TestRounding(t *testing.T) {
	tests := []struct {
		in    float64
		want2 float64
	}{
		{73.333333, 73.33},
		{73.336, 73.34},
		{0.125, 0.13},   // exact binary half rounds away from zero
		{-0.125, -0.13}, // and symmetrically for negatives
		{11, 11},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want2 {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want2)
		}
	}
	if got := round1(0.25); got != 0.3 {
		t.Errorf("round1(0.25) = %v, want 0.3", got)
	}
}
