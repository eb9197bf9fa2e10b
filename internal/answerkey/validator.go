package answerkey

import (
	"fmt"
	"strings"

	"github.com/angulpilot/assessment-pipeline/internal/plan"
)

// ValidationResult contains the outcome of item-key validation.
type ValidationResult struct {
	Passed    bool
	Errors    []string
	Warnings  []string
	ItemCount int
}

// ValidateItemKeys re-checks built item keys against the plan before any
// scoring happens. Build already enforces counts; this guards the full
// alignment contract:
// - every bucket is present with exactly its expected item count
// - positions are dense and contiguous starting at 1
// - subjects appear in the bucket's configured sequence
// - question numbers are non-decreasing within a subject
func ValidateItemKeys(keys *ItemKeys, p *plan.Plan) ValidationResult {
	result := ValidationResult{Passed: true}

	for _, b := range p.Buckets {
		items, ok := keys.Buckets[b.Key()]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("bucket %s missing from item keys", b.Key()))
			result.Passed = false
			continue
		}
		result.ItemCount += len(items)

		if len(items) != b.ExpectedCount {
			result.Errors = append(result.Errors,
				fmt.Sprintf("bucket %s: item count mismatch: have %d, expected %d",
					b.Key(), len(items), b.ExpectedCount))
			result.Passed = false
		}

		// Position density
		for i, it := range items {
			if it.Position != i+1 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("bucket %s: position gap at index %d: have %d, expected %d",
						b.Key(), i, it.Position, i+1))
				result.Passed = false
				break
			}
		}

		// Subject sequence: the subject index may only move forward.
		lastSubjectIdx := 0
		lastQuestion := 0
		for _, it := range items {
			idx := subjectIndex(b, it.Subject)
			if idx < 0 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("bucket %s: item at position %d has subject %q not in bucket sequence",
						b.Key(), it.Position, it.Subject))
				result.Passed = false
				continue
			}
			if idx < lastSubjectIdx {
				result.Errors = append(result.Errors,
					fmt.Sprintf("bucket %s: subject %q at position %d breaks the configured subject order",
						b.Key(), it.Subject, it.Position))
				result.Passed = false
			}
			if idx > lastSubjectIdx {
				lastSubjectIdx = idx
				lastQuestion = 0
			}
			if it.QuestionNumber < lastQuestion {
				result.Errors = append(result.Errors,
					fmt.Sprintf("bucket %s: question number decreases at position %d (%d after %d)",
						b.Key(), it.Position, it.QuestionNumber, lastQuestion))
				result.Passed = false
			}
			lastQuestion = it.QuestionNumber

			if it.LOCode == "" {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("bucket %s: item at position %d has no LO code", b.Key(), it.Position))
			}
		}
	}

	// Buckets present in keys but absent from the plan indicate a stale build.
	for key := range keys.Buckets {
		found := false
		for _, b := range p.Buckets {
			if b.Key() == key {
				found = true
				break
			}
		}
		if !found {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("item keys contain unconfigured bucket %s", key))
		}
	}

	return result
}

// subjectIndex returns the index of the subject in the bucket's configured
// sequence, or -1.
func subjectIndex(b plan.Bucket, subject string) int {
	for i, s := range b.Subjects {
		if strings.EqualFold(s, subject) {
			return i
		}
	}
	return -1
}
