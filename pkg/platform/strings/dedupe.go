// Package strings holds small string-slice helpers shared by the services.
package strings

import (
	"strings"
)

// DedupeAndTrim trims whitespace from each element and drops empty strings
// and duplicates, preserving first-seen order. A nil input comes back nil so
// callers can tell "not provided" apart from "provided empty".
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
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
