// Package roster loads the school-master sheet into canonical school records.
package roster

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/angulpilot/assessment-pipeline/internal/sheets"
)

// School is one canonical school-master record. Identity is the UDISE code.
type School struct {
	UDISE      string `json:"udise" parquet:"udise"`
	SchoolName string `json:"schoolName" parquet:"school_name"`
	Block      string `json:"block" parquet:"block"`
	Management string `json:"management" parquet:"management"`
	Location   string `json:"location" parquet:"location"`
}

// Result holds the loaded roster plus the silently-skipped row count.
type Result struct {
	Schools []School
	// Skipped counts rows lacking a UDISE or school name. These are presumed
	// blank or footer rows, counted but not reported as errors.
	Skipped int
}

// requiredFields must resolve to a header or the whole run aborts; the
// remaining roster fields degrade to empty strings.
var requiredFields = []string{"schoolName", "udise"}

// Load parses the roster row matrix. The header row is the first row with any
// non-blank cell. A missing udise or schoolName column is a fatal
// configuration error; malformed data rows are skipped and counted.
func Load(rows [][]string) (*Result, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("roster sheet must have at least 2 rows (header + data), got %d", len(rows))
	}

	headerIdx := sheets.HeaderRowIndex(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("roster sheet has no non-blank rows")
	}
	headers := sheets.TrimHeaders(rows[headerIdx])

	resolved, missing := sheets.ResolveHeaders(headers, sheets.SchoolAliases)

	var missingRequired []string
	for _, f := range requiredFields {
		if _, ok := resolved[f]; !ok {
			missingRequired = append(missingRequired, f)
		}
	}
	if len(missingRequired) > 0 {
		return nil, fmt.Errorf(
			"required fields not found in roster headers: %s\navailable headers: %s\nexpected one of these aliases for each field:\n%s",
			strings.Join(missingRequired, ", "),
			strings.Join(headers, ", "),
			sheets.DescribeAliases(missingRequired, sheets.SchoolAliases))
	}
	if len(missing) > 0 {
		slog.Warn("roster: optional columns not found, fields will be empty", "fields", missing)
	}

	log := slog.With("component", "roster")
	log.Info("column mapping resolved", "columns", len(resolved))

	result := &Result{}
	for _, raw := range rows[headerIdx+1:] {
		row := sheets.NewRow(headers, raw)

		udise := row.Cell(resolved["udise"])
		name := row.Cell(resolved["schoolName"])
		if udise == "" || name == "" {
			result.Skipped++
			continue
		}

		result.Schools = append(result.Schools, School{
			UDISE:      udise,
			SchoolName: name,
			Block:      row.Cell(resolved["block"]),
			Management: row.Cell(resolved["management"]),
			Location:   row.Cell(resolved["location"]),
		})
	}

	log.Info("roster loaded", "schools", len(result.Schools), "skipped", result.Skipped)
	return result, nil
}
