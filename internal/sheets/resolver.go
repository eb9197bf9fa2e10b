// Package sheets provides header resolution and row-matrix helpers for the
// heterogeneous spreadsheet exports the pipeline consumes. Column headers vary
// between export cycles ("UDISE" vs "UDISE Code" vs "Udise_Code"), so every
// loader resolves canonical field names through an alias table instead of
// hard-coding header strings.
package sheets

import (
	"sort"
	"strings"
)

// ResolveHeaders maps canonical field names to actual header strings. For each
// canonical field the aliases are scanned in priority order and the first
// header that exact-matches (after trimming) wins. The second return lists
// canonical fields with no matching header; the caller decides whether a
// missing field is fatal.
func ResolveHeaders(headers []string, aliases map[string][]string) (map[string]string, []string) {
	resolved := make(map[string]string)
	var missing []string

	// Stable field iteration so missing-field reports are deterministic.
	fields := make([]string, 0, len(aliases))
	for field := range aliases {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		header, ok := findHeader(headers, aliases[field])
		if ok {
			resolved[field] = header
		} else {
			missing = append(missing, field)
		}
	}

	return resolved, missing
}

// findHeader returns the first header matching any alias, scanning aliases in
// priority order. First alias match wins over any later alias.
func findHeader(headers []string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		for _, h := range headers {
			if h != "" && strings.TrimSpace(h) == alias {
				return h, true
			}
		}
	}
	return "", false
}

// DescribeAliases formats an alias table for error messages, one line per
// missing field with its accepted aliases.
func DescribeAliases(fields []string, aliases map[string][]string) string {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  " + field + ": " + strings.Join(aliases[field], ", "))
	}
	return b.String()
}
