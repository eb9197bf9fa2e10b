// Package scoring aligns raw student response strings against the ordered
// item keys and produces per-subject and per-LO tallies. Alignment is strictly
// positional: token i is compared to the item at position i+1. The two tally
// granularities are computed by independent passes over the same validated
// tokens so grade-level and LO-level aggregation stay separately verifiable.
package scoring

import (
	"fmt"
	"strings"

	"github.com/angulpilot/assessment-pipeline/internal/answerkey"
	"github.com/angulpilot/assessment-pipeline/internal/plan"
)

// Delimiter separates answer tokens in the response wire format.
const Delimiter = "#"

// Skip reasons surfaced in the end-of-run summary.
const (
	ReasonMissingUDISE = "Missing UDISE"
	ReasonInvalidDay   = "Invalid Day"
)

// ReasonInvalidLength names the skip reason for a token-count mismatch.
func ReasonInvalidLength(expected int) string {
	return fmt.Sprintf("Invalid response length (expected %d)", expected)
}

// RawResponse is one column-resolved student response row. A zero Day means
// the day cell was absent or unparseable.
type RawResponse struct {
	UDISE     string
	Day       int
	Responses string
}

// SubjectScore is one student's tally for a single subject.
type SubjectScore struct {
	Marks int `json:"marks"`
	Total int `json:"total"`
}

// StudentScore is the scored record for one response row. Ephemeral: consumed
// by the aggregators, never persisted directly.
type StudentScore struct {
	UDISE    string
	Grade    int
	Day      int
	Subjects map[string]SubjectScore
}

// LOKey identifies an LO tally group within a grade.
type LOKey struct {
	Subject string
	LOCode  string
}

// LOTally accumulates attempt/correct counts for one LO.
type LOTally struct {
	Attempts int
	Correct  int
}

// Scorer scores response rows for one grade against the built item keys.
type Scorer struct {
	keys  *answerkey.ItemKeys
	plan  *plan.Plan
	grade int
}

// NewScorer creates a scorer bound to a grade. The row's own grade cell is
// ignored; the file-level grade decides which buckets apply.
func NewScorer(keys *answerkey.ItemKeys, p *plan.Plan, grade int) *Scorer {
	return &Scorer{keys: keys, plan: p, grade: grade}
}

// SplitResponses splits a raw response string on the delimiter and drops
// empty tokens, which tolerates a trailing delimiter with no final answer.
func SplitResponses(raw string) []string {
	var tokens []string
	for _, tok := range strings.Split(raw, Delimiter) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Validate checks one raw row and returns its aligned tokens. A non-empty
// skip reason means the row must be discarded whole; partial or truncated
// response strings are never partially scored.
func (s *Scorer) Validate(r RawResponse) ([]string, string) {
	if r.UDISE == "" {
		return nil, ReasonMissingUDISE
	}
	if r.Day != 1 && r.Day != 2 {
		return nil, ReasonInvalidDay
	}

	bucket, err := s.plan.Bucket(s.grade, r.Day)
	if err != nil {
		return nil, ReasonInvalidDay
	}

	tokens := SplitResponses(strings.TrimSpace(r.Responses))
	if len(tokens) != bucket.ExpectedCount {
		return nil, ReasonInvalidLength(bucket.ExpectedCount)
	}

	return tokens, ""
}

// ScoreSubjects zips validated tokens against the bucket's items and tallies
// marks per subject. Every item increments its subject's total; an exact
// (case-insensitive) match with the answer key increments marks.
func (s *Scorer) ScoreSubjects(udise string, day int, tokens []string) *StudentScore {
	items := s.keys.ForBucket(s.grade, day)

	score := &StudentScore{
		UDISE:    udise,
		Grade:    s.grade,
		Day:      day,
		Subjects: make(map[string]SubjectScore),
	}

	for i, item := range items {
		response := strings.ToUpper(strings.TrimSpace(tokens[i]))
		tally := score.Subjects[item.Subject]
		tally.Total++
		if response == item.AnswerKey {
			tally.Marks++
		}
		score.Subjects[item.Subject] = tally
	}

	return score
}

// ScoreLOs reruns the positional zip at LO granularity, tallying attempts and
// correct answers per (subject, loCode).
func (s *Scorer) ScoreLOs(day int, tokens []string) map[LOKey]LOTally {
	items := s.keys.ForBucket(s.grade, day)

	tallies := make(map[LOKey]LOTally)
	for i, item := range items {
		response := strings.ToUpper(strings.TrimSpace(tokens[i]))
		key := LOKey{Subject: item.Subject, LOCode: item.LOCode}
		tally := tallies[key]
		tally.Attempts++
		if response == item.AnswerKey {
			tally.Correct++
		}
		tallies[key] = tally
	}

	return tallies
}
