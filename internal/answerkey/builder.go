// Package answerkey builds the position-ordered item keys from the answer-key
// sheet. The ordering produced here is the alignment contract for response
// scoring: item position i corresponds to response token i. Getting this wrong
// silently corrupts every downstream score, so the ordering function is kept
// small, isolated, and re-checked by ValidateItemKeys after assembly.
package answerkey

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/angulpilot/assessment-pipeline/internal/plan"
	"github.com/angulpilot/assessment-pipeline/internal/sheets"
)

// Item is one assessment question with its correct answer, subject, and
// learning-outcome tag. Position is 1-based within the item's (grade, day)
// bucket, assigned after ordering.
type Item struct {
	Grade          int    `json:"grade"`
	Day            int    `json:"day"`
	Subject        string `json:"subject"`
	LOCode         string `json:"loCode"`
	LODescription  string `json:"loDescription"`
	QuestionNumber int    `json:"questionNumber"`
	AnswerKey      string `json:"answerKey"`
	Position       int    `json:"position"`
}

// ItemKeys holds the ordered item arrays keyed by bucket ("grade5_day1" ...).
type ItemKeys struct {
	Buckets map[string][]Item
}

// ForBucket returns the ordered items for a (grade, day) bucket, or nil.
func (k *ItemKeys) ForBucket(grade, day int) []Item {
	return k.Buckets[fmt.Sprintf("grade%d_day%d", grade, day)]
}

// Stats counts build outcomes for the end-of-run summary.
type Stats struct {
	Valid           int
	Skipped         int
	UnknownSubjects int
	InvalidAnswers  int
}

var requiredFields = []string{"answerKey", "grade", "loCode", "loDescription", "questionNumber", "subject"}

// validAnswers is the accepted answer-key letter set.
var validAnswers = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// Build parses the answer-key row matrix and assembles the ordered item keys.
// Row 1 is always the header (unlike the roster sheet, key exports never lead
// with blank rows). Missing required columns or a bucket count mismatch are
// fatal; malformed rows are skipped and counted.
func Build(rows [][]string, p *plan.Plan) (*ItemKeys, *Stats, error) {
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("answer-key sheet must have at least 2 rows (header + data), got %d", len(rows))
	}

	headers := sheets.TrimHeaders(rows[0])
	resolved, _ := sheets.ResolveHeaders(headers, sheets.KeyAliases)

	var missingRequired []string
	for _, f := range requiredFields {
		if _, ok := resolved[f]; !ok {
			missingRequired = append(missingRequired, f)
		}
	}
	if len(missingRequired) > 0 {
		return nil, nil, fmt.Errorf(
			"required fields not found in answer-key headers: %s\navailable headers: %s\nexpected one of these aliases for each field:\n%s",
			strings.Join(missingRequired, ", "),
			strings.Join(headers, ", "),
			sheets.DescribeAliases(missingRequired, sheets.KeyAliases))
	}

	log := slog.With("component", "answerkey")
	stats := &Stats{}

	var items []Item
	for i, raw := range rows[1:] {
		row := sheets.NewRow(headers, raw)
		rowNum := i + 2 // 1-based sheet row for warnings

		grade, gradeErr := strconv.Atoi(row.Cell(resolved["grade"]))
		subject := row.Cell(resolved["subject"])
		questionNumber, qnErr := strconv.Atoi(row.Cell(resolved["questionNumber"]))
		answer := strings.ToUpper(row.Cell(resolved["answerKey"]))

		day, dayOK := 0, false
		if gradeErr == nil && subject != "" {
			day, dayOK = p.DayFor(grade, subject)
			if !dayOK {
				log.Warn("unknown subject for grade, skipping row",
					"subject", subject, "grade", grade, "row", rowNum)
				stats.UnknownSubjects++
			}
		}

		if gradeErr != nil || !dayOK || qnErr != nil || subject == "" || answer == "" {
			stats.Skipped++
			continue
		}

		if !validAnswers[answer] {
			log.Warn("invalid answer key letter, skipping row",
				"answer", answer, "row", rowNum)
			stats.InvalidAnswers++
			stats.Skipped++
			continue
		}

		items = append(items, Item{
			Grade:          grade,
			Day:            day,
			Subject:        subject,
			LOCode:         row.Cell(resolved["loCode"]),
			LODescription:  row.Cell(resolved["loDescription"]),
			QuestionNumber: questionNumber,
			AnswerKey:      answer,
		})
		stats.Valid++
	}

	keys := &ItemKeys{Buckets: make(map[string][]Item, len(p.Buckets))}
	for _, b := range p.Buckets {
		ordered := orderBucket(items, b)

		if len(ordered) != b.ExpectedCount {
			return nil, nil, fmt.Errorf(
				"item count mismatch for %s: expected %d, got %d; the answer-key file is incomplete or has incorrect data",
				b.Key(), b.ExpectedCount, len(ordered))
		}

		log.Info("bucket assembled", "bucket", b.Key(), "items", len(ordered))
		keys.Buckets[b.Key()] = ordered
	}

	log.Info("answer keys built", "valid", stats.Valid, "skipped", stats.Skipped)
	return keys, stats, nil
}

// orderBucket selects the bucket's items and orders them: subjects in the
// bucket's configured sequence (case-insensitive match), then ascending
// question number within each subject, with positions assigned as a running
// 1-based counter spanning the subject sequence.
func orderBucket(items []Item, b plan.Bucket) []Item {
	var ordered []Item
	position := 1

	for _, subject := range b.Subjects {
		var subjectItems []Item
		for _, it := range items {
			if it.Grade == b.Grade && it.Day == b.Day && strings.EqualFold(it.Subject, subject) {
				subjectItems = append(subjectItems, it)
			}
		}

		sort.SliceStable(subjectItems, func(i, j int) bool {
			return subjectItems[i].QuestionNumber < subjectItems[j].QuestionNumber
		})

		for _, it := range subjectItems {
			it.Position = position
			ordered = append(ordered, it)
			position++
		}
	}

	return ordered
}
