package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/angulpilot/assessment-pipeline/internal/answerkey"
	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

func poolKeys() *answerkey.ItemKeys {
	return &answerkey.ItemKeys{Buckets: map[string][]answerkey.Item{
		"grade5_day1": {
			{Grade: 5, Day: 1, Subject: "Odia", LOCode: "L1", Position: 1, AnswerKey: "A"},
			{Grade: 5, Day: 1, Subject: "Odia", LOCode: "L1", Position: 2, AnswerKey: "B"},
			{Grade: 5, Day: 1, Subject: "EVS", LOCode: "L2", Position: 3, AnswerKey: "C"},
		},
	}}
}

func poolRows(n int) []scoring.RawResponse {
	rows := make([]scoring.RawResponse, 0, n)
	for i := 0; i < n; i++ {
		r := scoring.RawResponse{UDISE: fmt.Sprintf("2118%07d", i), Day: 1, Responses: "A#B#C"}
		if i%7 == 0 {
			r.UDISE = "" // forces a skip so results interleave scored and skipped rows
		}
		rows = append(rows, r)
	}
	return rows
}

func TestScoreRowsPreservesOrder(t *testing.T) {
	p := testPlan(t)
	scorer := scoring.NewScorer(poolKeys(), p, 5)
	rows := poolRows(200)

	results := scoreRows(context.Background(), scorer, rows, 8)
	if len(results) != len(rows) {
		t.Fatalf("results = %d, want %d", len(results), len(rows))
	}
	for i, r := range results {
		if r.index != i {
			t.Fatalf("result %d has index %d", i, r.index)
		}
		if rows[i].UDISE == "" {
			if r.skipReason != scoring.ReasonMissingUDISE {
				t.Fatalf("row %d: skipReason = %q", i, r.skipReason)
			}
			continue
		}
		if r.score == nil || r.score.UDISE != rows[i].UDISE {
			t.Fatalf("row %d scored out of order", i)
		}
	}
}

func TestScoreRowsMatchesSequential(t *testing.T) {
	p := testPlan(t)
	scorer := scoring.NewScorer(poolKeys(), p, 5)
	rows := poolRows(50)

	sequential := scoreRows(context.Background(), scorer, rows, 1)
	parallel := scoreRows(context.Background(), scorer, rows, 16)

	if !reflect.DeepEqual(sequential, parallel) {
		t.Error("parallel results differ from sequential")
	}
}

func TestScoreRowsEmpty(t *testing.T) {
	p := testPlan(t)
	scorer := scoring.NewScorer(poolKeys(), p, 5)

	if got := scoreRows(context.Background(), scorer, nil, 4); len(got) != 0 {
		t.Errorf("results = %d, want 0", len(got))
	}
}

func TestScoreRowsCancelledContext(t *testing.T) {
	p := testPlan(t)
	scorer := scoring.NewScorer(poolKeys(), p, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context must not deadlock; partial results are fine.
	results := scoreRows(ctx, scorer, poolRows(100), 4)
	if len(results) > 100 {
		t.Fatalf("results = %d", len(results))
	}
}
