package pipeline

import (
	"context"
	"sync"

	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

// rowTask is one response row queued for a scoring worker.
type rowTask struct {
	index int
	raw   scoring.RawResponse
}

// rowResult is the scored (or skipped) outcome for one row. Exactly one
// of score or skipReason is set.
type rowResult struct {
	index      int
	score      *scoring.StudentScore
	tallies    map[scoring.LOKey]scoring.LOTally
	skipReason string
}

// scoreRows scores rows with a bounded worker pool and returns results
// in input row order, so downstream folds see rows in the same sequence
// a single-threaded pass would. Uses a dispatcher feeding workers and a
// sequencer that buffers out-of-order results until their turn.
func scoreRows(ctx context.Context, scorer *scoring.Scorer, raws []scoring.RawResponse, workers int) []rowResult {
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan rowTask, workers*2)
	results := make(chan rowResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				results <- scoreRow(scorer, t)
			}
		}()
	}

	// Dispatcher: feed tasks in order, stop early on cancellation.
	go func() {
		defer close(tasks)
		for i, raw := range raws {
			select {
			case <-ctx.Done():
				return
			case tasks <- rowTask{index: i, raw: raw}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Sequencer: flush results in index order.
	ordered := make([]rowResult, 0, len(raws))
	pending := make(map[int]rowResult)
	next := 0
	for r := range results {
		pending[r.index] = r
		for {
			buffered, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			ordered = append(ordered, buffered)
			next++
		}
	}
	return ordered
}

func scoreRow(scorer *scoring.Scorer, t rowTask) rowResult {
	tokens, reason := scorer.Validate(t.raw)
	if reason != "" {
		return rowResult{index: t.index, skipReason: reason}
	}
	return rowResult{
		index:   t.index,
		score:   scorer.ScoreSubjects(t.raw.UDISE, t.raw.Day, tokens),
		tallies: scorer.ScoreLOs(t.raw.Day, tokens),
	}
}
