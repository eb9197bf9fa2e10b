// Package aggregate folds per-student scores into school-level subject,
// overall, and learning-outcome statistics.
package aggregate

import (
	"math"
	"sort"

	"github.com/angulpilot/assessment-pipeline/internal/plan"
	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

// SubjectAggregate summarizes one subject for one school and grade.
// TotalMarks is the configured per-subject item total for the grade,
// not the number of items the subject actually carries.
type SubjectAggregate struct {
	AvgMarks     float64 `json:"avgMarks"`
	TotalMarks   int     `json:"totalMarks"`
	AvgPercent   float64 `json:"avgPercent"`
	StudentCount int     `json:"studentCount"`
}

// GradeAggregate summarizes one grade for one school. OverallAvgMarks is
// the arithmetic mean of the published (rounded) per-subject avgMarks,
// so every subject weighs equally regardless of item count and the
// overall is reproducible from the per-subject figures alone.
// OverallPercent divides that
// mean by the single-subject total-marks constant, not a sum across
// subjects; the upstream data model defines "overall" as average subject
// performance and consumers depend on that reading.
type GradeAggregate struct {
	StudentCount    int                         `json:"studentCount"`
	Subjects        map[string]SubjectAggregate `json:"subjects"`
	OverallAvgMarks float64                     `json:"overallAvgMarks"`
	OverallPercent  float64                     `json:"overallPercent"`
}

// SchoolAggregate is the per-school artifact record. A grade pointer is
// nil when the school had no scored students in that grade.
type SchoolAggregate struct {
	UDISE  string          `json:"udise"`
	Grade5 *GradeAggregate `json:"grade5,omitempty"`
	Grade8 *GradeAggregate `json:"grade8,omitempty"`
}

type subjectAcc struct {
	sumMarks int
	students int
}

type schoolAcc struct {
	students int
	subjects map[string]*subjectAcc
}

// SchoolFold accumulates student scores for one grade, grouped by
// school. It is not safe for concurrent use; callers feeding it from
// parallel scorers must serialize before folding.
type SchoolFold struct {
	plan    *plan.Plan
	grade   int
	schools map[string]*schoolAcc
}

func NewSchoolFold(p *plan.Plan, grade int) *SchoolFold {
	return &SchoolFold{
		plan:    p,
		grade:   grade,
		schools: make(map[string]*schoolAcc),
	}
}

// Add folds one student's per-subject scores into the student's school.
// The per-subject divisor is the count of students who attempted that
// subject, so sparse subject coverage does not drag averages down with
// zero fills.
func (f *SchoolFold) Add(s scoring.StudentScore) {
	acc, ok := f.schools[s.UDISE]
	if !ok {
		acc = &schoolAcc{subjects: make(map[string]*subjectAcc)}
		f.schools[s.UDISE] = acc
	}
	acc.students++
	for subject, score := range s.Subjects {
		sub, ok := acc.subjects[subject]
		if !ok {
			sub = &subjectAcc{}
			acc.subjects[subject] = sub
		}
		sub.sumMarks += score.Marks
		sub.students++
	}
}

// Grades finalizes the fold into one GradeAggregate per school, keyed
// by UDISE.
func (f *SchoolFold) Grades() map[string]*GradeAggregate {
	total, _ := f.plan.SubjectTotalMarks(f.grade)

	out := make(map[string]*GradeAggregate, len(f.schools))
	for udise, acc := range f.schools {
		ga := &GradeAggregate{
			StudentCount: acc.students,
			Subjects:     make(map[string]SubjectAggregate, len(acc.subjects)),
		}

		// avgPercent derives from the raw average, but the overall mean
		// is taken over the already-rounded avgMarks values: the
		// published per-subject figures are the inputs to it.
		var sumAvg float64
		for subject, sub := range acc.subjects {
			avg := float64(sub.sumMarks) / float64(sub.students)
			rounded := round2(avg)
			ga.Subjects[subject] = SubjectAggregate{
				AvgMarks:     rounded,
				TotalMarks:   total,
				AvgPercent:   round2(avg / float64(total) * 100),
				StudentCount: sub.students,
			}
			sumAvg += rounded
		}
		if len(acc.subjects) > 0 {
			overall := sumAvg / float64(len(acc.subjects))
			ga.OverallAvgMarks = round2(overall)
			ga.OverallPercent = round2(overall / float64(total) * 100)
		}
		out[udise] = ga
	}
	return out
}

// MergeSchools joins the per-grade folds into the final per-school
// records, one per school with at least one scored student in either
// grade, sorted by UDISE.
func MergeSchools(grade5, grade8 map[string]*GradeAggregate) []SchoolAggregate {
	seen := make(map[string]struct{}, len(grade5)+len(grade8))
	for udise := range grade5 {
		seen[udise] = struct{}{}
	}
	for udise := range grade8 {
		seen[udise] = struct{}{}
	}

	out := make([]SchoolAggregate, 0, len(seen))
	for udise := range seen {
		out = append(out, SchoolAggregate{
			UDISE:  udise,
			Grade5: grade5[udise],
			Grade8: grade8[udise],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UDISE < out[j].UDISE })
	return out
}

// round2 rounds to 2 decimals, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// round1 rounds to 1 decimal, half away from zero.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
