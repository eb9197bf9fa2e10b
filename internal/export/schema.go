// Package export renders per-student scores as parquet for downstream
// analytics. The JSON artifacts remain the presentation contract; the
// parquet export is a columnar copy for ad-hoc querying.
package export

import "time"

// ScoreRow is one (student, subject) score observation.
type ScoreRow struct {
	RunID    string    `parquet:"run_id"`
	UDISE    string    `parquet:"udise"`
	Grade    int32     `parquet:"grade"`
	Day      int32     `parquet:"day"`
	Subject  string    `parquet:"subject"`
	Marks    int32     `parquet:"marks"`
	Total    int32     `parquet:"total"`
	ScoredAt time.Time `parquet:"scored_at,timestamp(millisecond)"`
}

// TableName returns the canonical table name.
func (ScoreRow) TableName() string {
	return "student_subject_scores"
}

// SchemaVersion is bumped on breaking changes to ScoreRow.
const SchemaVersion = "1.0.0"
