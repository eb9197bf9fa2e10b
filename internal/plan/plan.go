// Package plan defines the assessment program configuration: which grades and
// test days exist, the subject sequence within each (grade, day) bucket, the
// expected item count per bucket, and the per-subject total marks. The tables
// encode program knowledge rather than being derived from data, so a future
// assessment cycle only needs a new plan file.
package plan

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoBucket is returned when a (grade, day) pair has no configured bucket.
var ErrNoBucket = errors.New("no bucket configured for grade and day")

// ErrDuplicateBucket is returned when two buckets share a (grade, day) pair.
var ErrDuplicateBucket = errors.New("duplicate bucket configuration")

// Bucket configures a single (grade, day) assessment sitting.
// Subjects lists the subject sequence in response-string order; the ordering
// is the alignment contract against student response tokens.
type Bucket struct {
	Grade         int      `yaml:"grade"`
	Day           int      `yaml:"day"`
	Subjects      []string `yaml:"subjects"`
	ExpectedCount int      `yaml:"expected_count"`
}

// Key returns the canonical bucket key, e.g. "grade5_day1".
func (b Bucket) Key() string {
	return fmt.Sprintf("grade%d_day%d", b.Grade, b.Day)
}

// HasSubject reports whether the bucket contains the subject,
// compared case-insensitively.
func (b Bucket) HasSubject(subject string) bool {
	for _, s := range b.Subjects {
		if strings.EqualFold(s, subject) {
			return true
		}
	}
	return false
}

// Plan is the validated assessment program configuration.
type Plan struct {
	// Buckets holds one entry per (grade, day) sitting, sorted by grade then day.
	Buckets []Bucket `yaml:"buckets"`
	// TotalMarks maps grade to the marks available per subject (15 for grade 5,
	// 20 for grade 8 in the Angul program).
	TotalMarks map[int]int `yaml:"total_marks"`
}

// New validates and normalizes a plan. Buckets are sorted by grade then day
// for stable iteration.
func New(p Plan) (*Plan, error) {
	if len(p.Buckets) == 0 {
		return nil, errors.New("plan must configure at least one bucket")
	}

	sorted := make([]Bucket, len(p.Buckets))
	copy(sorted, p.Buckets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Grade != sorted[j].Grade {
			return sorted[i].Grade < sorted[j].Grade
		}
		return sorted[i].Day < sorted[j].Day
	})

	seen := make(map[string]bool)
	for _, b := range sorted {
		if b.Day != 1 && b.Day != 2 {
			return nil, fmt.Errorf("bucket %s: day must be 1 or 2, got %d", b.Key(), b.Day)
		}
		if b.ExpectedCount <= 0 {
			return nil, fmt.Errorf("bucket %s: expected_count must be positive, got %d", b.Key(), b.ExpectedCount)
		}
		if len(b.Subjects) == 0 {
			return nil, fmt.Errorf("bucket %s: at least one subject required", b.Key())
		}
		if seen[b.Key()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBucket, b.Key())
		}
		seen[b.Key()] = true

		if _, ok := p.TotalMarks[b.Grade]; !ok {
			return nil, fmt.Errorf("bucket %s: no total_marks configured for grade %d", b.Key(), b.Grade)
		}
	}

	// A subject must map to exactly one day within a grade, otherwise day
	// derivation for answer-key rows is ambiguous.
	for grade := range p.TotalMarks {
		bySubject := make(map[string]int)
		for _, b := range sorted {
			if b.Grade != grade {
				continue
			}
			for _, s := range b.Subjects {
				key := strings.ToLower(strings.TrimSpace(s))
				if prev, ok := bySubject[key]; ok && prev != b.Day {
					return nil, fmt.Errorf("grade %d: subject %q appears on both day %d and day %d",
						grade, s, prev, b.Day)
				}
				bySubject[key] = b.Day
			}
		}
	}

	return &Plan{Buckets: sorted, TotalMarks: p.TotalMarks}, nil
}

// Load reads and validates a plan from a YAML file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file %s: %w", path, err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan file %s: %w", path, err)
	}

	return New(p)
}

// Bucket returns the bucket configuration for a (grade, day) pair.
func (p *Plan) Bucket(grade, day int) (*Bucket, error) {
	for i := range p.Buckets {
		b := &p.Buckets[i]
		if b.Grade == grade && b.Day == day {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: grade %d day %d", ErrNoBucket, grade, day)
}

// DayFor derives the assessment day for a (grade, subject) pair. The subject
// comparison is case-insensitive. The second return is false when the subject
// is not part of any bucket for that grade.
func (p *Plan) DayFor(grade int, subject string) (int, bool) {
	for _, b := range p.Buckets {
		if b.Grade == grade && b.HasSubject(subject) {
			return b.Day, true
		}
	}
	return 0, false
}

// SubjectTotalMarks returns the marks available per subject for a grade.
func (p *Plan) SubjectTotalMarks(grade int) (int, bool) {
	total, ok := p.TotalMarks[grade]
	return total, ok
}

// Grades returns the distinct grades in ascending order.
func (p *Plan) Grades() []int {
	seen := make(map[int]bool)
	var grades []int
	for _, b := range p.Buckets {
		if !seen[b.Grade] {
			seen[b.Grade] = true
			grades = append(grades, b.Grade)
		}
	}
	sort.Ints(grades)
	return grades
}

// Default returns the Angul pilot program plan: grades 5 and 8 over two test
// days, with 15 marks per subject for grade 5 and 20 for grade 8.
func Default() *Plan {
	p, err := New(Plan{
		Buckets: []Bucket{
			{Grade: 5, Day: 1, Subjects: []string{"Odia", "EVS"}, ExpectedCount: 30},
			{Grade: 5, Day: 2, Subjects: []string{"English", "Mathematics"}, ExpectedCount: 30},
			{Grade: 8, Day: 1, Subjects: []string{"Odia", "English", "Science"}, ExpectedCount: 60},
			{Grade: 8, Day: 2, Subjects: []string{"Mathematics", "Social Science"}, ExpectedCount: 40},
		},
		TotalMarks: map[int]int{5: 15, 8: 20},
	})
	if err != nil {
		panic("default plan is invalid: " + err.Error())
	}
	return p
}
