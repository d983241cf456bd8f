// Package strings provides small string-slice utilities shared by request
// validation code.
package strings

import (
	"strings"
)

// DedupeAndTrimLower trims whitespace, lowercases, drops empties, and removes
// duplicates from a slice. Order of first occurrence is preserved. Request
// handlers use it to canonicalize user-supplied identifier lists, such as the
// category list on a sourcing requirement, before parsing.
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
