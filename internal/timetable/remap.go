package timetable

import (
	"sort"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// Display returns the display name for original, or original when no
// mapping exists.
func Display(original string, table models.RenameTable) string {
	if original == "" {
		return original
	}
	if renamed, ok := table[original]; ok {
		return renamed
	}
	return original
}

// ResolveOriginal maps a name given in either form back to its original.
// Known originals are returned unchanged. Otherwise the table is searched for
// a matching display value; when several originals share it the smallest key
// wins. Unknown input is returned as is.
func ResolveOriginal(input string, table models.RenameTable, isKnown func(string) bool) string {
	if input == "" {
		return input
	}
	if isKnown != nil && isKnown(input) {
		return input
	}

	matches := make([]string, 0, 1)
	for original, renamed := range table {
		if renamed == input {
			matches = append(matches, original)
		}
	}
	if len(matches) == 0 {
		return input
	}
	sort.Strings(matches)
	return matches[0]
}
