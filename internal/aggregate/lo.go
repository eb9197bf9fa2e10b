package aggregate

import (
	"log/slog"
	"sort"

	"github.com/angulpilot/assessment-pipeline/internal/answerkey"
	"github.com/angulpilot/assessment-pipeline/internal/plan"
	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

// LORecord reports mastery of one learning-outcome code within one
// school, grade, and subject. ItemCount is the largest number of items
// observed carrying the code in any one bucket; it is a ceiling, not a
// guarantee that every student saw that many.
type LORecord struct {
	LOCode        string  `json:"loCode"`
	LODescription string  `json:"loDescription"`
	ItemCount     int     `json:"itemCount"`
	Attempts      int     `json:"attempts"`
	Correct       int     `json:"correct"`
	Percent       float64 `json:"percent"`
}

// LOBreakdown is the per-school artifact record: subject names mapped
// to their learning-outcome records, per grade.
type LOBreakdown struct {
	Grade5 map[string][]LORecord `json:"grade5,omitempty"`
	Grade8 map[string][]LORecord `json:"grade8,omitempty"`
}

type loMeta struct {
	description string
	itemCount   int
}

type loAcc struct {
	attempts int
	correct  int
}

// LOFold accumulates learning-outcome tallies for one grade, grouped by
// school. Description and item-count metadata come from the answer key
// items themselves so output always reflects the keys that scored the
// responses.
type LOFold struct {
	grade   int
	logger  *slog.Logger
	meta    map[scoring.LOKey]loMeta
	schools map[string]map[scoring.LOKey]*loAcc
}

func NewLOFold(keys *answerkey.ItemKeys, p *plan.Plan, grade int, logger *slog.Logger) *LOFold {
	if logger == nil {
		logger = slog.Default()
	}
	f := &LOFold{
		grade:   grade,
		logger:  logger,
		meta:    make(map[scoring.LOKey]loMeta),
		schools: make(map[string]map[scoring.LOKey]*loAcc),
	}

	for _, day := range []int{1, 2} {
		counts := make(map[scoring.LOKey]int)
		for _, item := range keys.ForBucket(grade, day) {
			k := scoring.LOKey{Subject: item.Subject, LOCode: item.LOCode}
			counts[k]++
			if _, ok := f.meta[k]; !ok {
				f.meta[k] = loMeta{description: item.LODescription}
			}
		}
		for k, n := range counts {
			m := f.meta[k]
			if n > m.itemCount {
				m.itemCount = n
				f.meta[k] = m
			}
		}
	}
	return f
}

// Add folds one student's per-LO tallies into the student's school.
func (f *LOFold) Add(udise string, tallies map[scoring.LOKey]scoring.LOTally) {
	acc, ok := f.schools[udise]
	if !ok {
		acc = make(map[scoring.LOKey]*loAcc)
		f.schools[udise] = acc
	}
	for k, t := range tallies {
		a, ok := acc[k]
		if !ok {
			a = &loAcc{}
			acc[k] = a
		}
		a.attempts += t.Attempts
		a.correct += t.Correct
	}
}

// Breakdown finalizes the fold into per-school, per-subject record
// lists keyed by UDISE. Records within a subject are sorted by LO code.
// A tally with no matching answer-key metadata is dropped with a
// warning rather than emitted with defaulted fields.
func (f *LOFold) Breakdown() map[string]map[string][]LORecord {
	out := make(map[string]map[string][]LORecord, len(f.schools))
	for udise, acc := range f.schools {
		subjects := make(map[string][]LORecord)
		for k, a := range acc {
			m, ok := f.meta[k]
			if !ok {
				f.logger.Warn("no answer key metadata for learning outcome, dropping",
					"grade", f.grade, "subject", k.Subject, "lo_code", k.LOCode, "udise", udise)
				continue
			}
			rec := LORecord{
				LOCode:        k.LOCode,
				LODescription: m.description,
				ItemCount:     m.itemCount,
				Attempts:      a.attempts,
				Correct:       a.correct,
			}
			if a.attempts > 0 {
				rec.Percent = round1(float64(a.correct) / float64(a.attempts) * 100)
			} else {
				f.logger.Warn("learning outcome has zero attempts",
					"grade", f.grade, "subject", k.Subject, "lo_code", k.LOCode, "udise", udise)
			}
			subjects[k.Subject] = append(subjects[k.Subject], rec)
		}
		for subject := range subjects {
			recs := subjects[subject]
			sort.Slice(recs, func(i, j int) bool { return recs[i].LOCode < recs[j].LOCode })
			subjects[subject] = recs
		}
		out[udise] = subjects
	}
	return out
}

// MergeLOBreakdowns joins the per-grade breakdowns into the final
// per-school map keyed by UDISE.
func MergeLOBreakdowns(grade5, grade8 map[string]map[string][]LORecord) map[string]LOBreakdown {
	out := make(map[string]LOBreakdown, len(grade5)+len(grade8))
	for udise, subjects := range grade5 {
		b := out[udise]
		b.Grade5 = subjects
		out[udise] = b
	}
	for udise, subjects := range grade8 {
		b := out[udise]
		b.Grade8 = subjects
		out[udise] = b
	}
	return out
}
