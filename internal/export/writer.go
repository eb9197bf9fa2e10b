package export

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

// ScoresFile is the artifact key for the parquet export.
const ScoresFile = "studentScores.parquet"

// BuildScoreRows flattens student scores into parquet rows, sorted by
// (udise, subject) for deterministic output across runs.
func BuildScoreRows(runID string, scores []scoring.StudentScore, scoredAt time.Time) []ScoreRow {
	var rows []ScoreRow
	for _, s := range scores {
		subjects := make([]string, 0, len(s.Subjects))
		for subject := range s.Subjects {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)

		for _, subject := range subjects {
			score := s.Subjects[subject]
			rows = append(rows, ScoreRow{
				RunID:    runID,
				UDISE:    s.UDISE,
				Grade:    int32(s.Grade),
				Day:      int32(s.Day),
				Subject:  subject,
				Marks:    int32(score.Marks),
				Total:    int32(score.Total),
				ScoredAt: scoredAt,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].UDISE != rows[j].UDISE {
			return rows[i].UDISE < rows[j].UDISE
		}
		return rows[i].Subject < rows[j].Subject
	})
	return rows
}

// WriteScores encodes rows as a parquet file and returns the bytes.
func WriteScores(rows []ScoreRow) ([]byte, error) {
	var buf bytes.Buffer

	w := parquet.NewGenericWriter[ScoreRow](&buf,
		parquet.Compression(&parquet.Zstd),
	)

	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return nil, fmt.Errorf("write parquet rows: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadScores decodes a parquet file produced by WriteScores.
func ReadScores(data []byte) ([]ScoreRow, error) {
	rows, err := parquet.Read[ScoreRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}
	return rows, nil
}
