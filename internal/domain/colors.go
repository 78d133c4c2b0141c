package domain

import "strings"

// MergeColors combines the palette checkbox selection with a free-text
// buffer of comma-separated custom colors. Free-text entries are split on
// commas, trimmed, and blank entries dropped; duplicates are collapsed
// case-insensitively with the first spelling winning. The result preserves
// first-seen order.
func MergeColors(selected []string, freeText string) []string {
	merged := make([]string, 0, len(selected)+2)

	appendUnique := func(c string) {
		if c == "" {
			return
		}
		if !containsFold(merged, c) {
			merged = append(merged, c)
		}
	}

	for _, c := range selected {
		appendUnique(strings.TrimSpace(c))
	}
	for _, c := range strings.Split(freeText, ",") {
		appendUnique(strings.TrimSpace(c))
	}

	return merged
}
