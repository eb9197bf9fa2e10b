package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/angulpilot/assessment-pipeline/internal/aggregate"
	"github.com/angulpilot/assessment-pipeline/internal/roster"
)

// logSummary emits the end-of-run summary: totals, per-grade skip
// histograms, and one sample aggregate so operators can eyeball the
// output shape without opening the artifacts.
func (p *Pipeline) logSummary(log *slog.Logger, r *roster.Result, merged []aggregate.SchoolAggregate, los map[string]aggregate.LOBreakdown, g5, g8 *gradeOutcome, elapsed time.Duration) {
	log.Info("run complete",
		"schools", len(r.Schools),
		"schools_aggregated", len(merged),
		"schools_with_lo_data", len(los),
		"grade5_scored", g5.counter.Processed,
		"grade5_skipped", g5.counter.Skipped,
		"grade8_scored", g8.counter.Processed,
		"grade8_skipped", g8.counter.Skipped,
		"duration", elapsed.String(),
	)

	for _, g := range []*gradeOutcome{g5, g8} {
		for _, rc := range g.counter.Reasons() {
			log.Info("skip reason", "grade", g.grade, "reason", rc.Reason, "count", rc.Count)
		}
	}

	if len(merged) > 0 {
		if sample, err := json.Marshal(merged[0]); err == nil {
			log.Info("sample school aggregate", "record", string(sample))
		}
	}
}

// WriteFailure prints a delimited failure block to w so the terminal
// cause stands out from the structured log stream above it.
func WriteFailure(w io.Writer, err error) {
	rule := strings.Repeat("=", 64)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "RUN FAILED")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "error: %v\n", err)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "No artifacts from this run were finalized. Check the input")
	fmt.Fprintln(w, "paths and sheet headers reported above, fix the source data")
	fmt.Fprintln(w, "or configuration, and rerun.")
	fmt.Fprintln(w, rule)
}
