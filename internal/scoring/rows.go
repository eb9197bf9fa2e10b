package scoring

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/angulpilot/assessment-pipeline/internal/sheets"
)

// responseRequiredFields must resolve for a response sheet to yield rows.
var responseRequiredFields = []string{"day", "grade", "responses", "udise"}

// ResolveRows converts a response sheet matrix into raw response rows. Unlike
// roster and answer-key sheets, missing required columns here are not fatal:
// the file yields zero rows and the gap is logged, so one bad grade file does
// not abort the other grade's run.
func ResolveRows(rows [][]string, grade int) []RawResponse {
	log := slog.With("component", "responses", "grade", grade)

	if len(rows) < 2 {
		log.Warn("response sheet has insufficient rows, skipping file", "rows", len(rows))
		return nil
	}

	headers := sheets.TrimHeaders(rows[0])
	resolved, _ := sheets.ResolveHeaders(headers, sheets.StudentAliases)

	var missing []string
	for _, f := range responseRequiredFields {
		if _, ok := resolved[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		log.Warn("response sheet missing required columns, skipping file",
			"missing", strings.Join(missing, ", "),
			"available", strings.Join(headers, ", "))
		return nil
	}

	out := make([]RawResponse, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := sheets.NewRow(headers, raw)

		// An unparseable day becomes 0 and is skipped later as "Invalid Day".
		day, _ := strconv.Atoi(row.Cell(resolved["day"]))

		out = append(out, RawResponse{
			UDISE:     row.Cell(resolved["udise"]),
			Day:       day,
			Responses: row.Cell(resolved["responses"]),
		})
	}

	return out
}
