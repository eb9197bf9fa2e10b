package scoring

import "sort"

// Counter accumulates per-grade-file processing outcomes for the end-of-run
// summary. No row failure is fatal; a file yielding zero valid rows is
// reported, not aborted.
type Counter struct {
	Processed int
	Skipped   int
	reasons   map[string]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{reasons: make(map[string]int)}
}

// Process records one successfully scored row.
func (c *Counter) Process() {
	c.Processed++
}

// Skip records one skipped row under the given reason.
func (c *Counter) Skip(reason string) {
	c.Skipped++
	c.reasons[reason]++
}

// ReasonCount pairs a skip reason with its occurrence count.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// Reasons returns the skip reason histogram sorted by reason for stable
// reporting.
func (c *Counter) Reasons() []ReasonCount {
	out := make([]ReasonCount, 0, len(c.reasons))
	for reason, count := range c.reasons {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reason < out[j].Reason })
	return out
}
