package timetable

import (
	"regexp"
	"strings"
)

// DefaultPlaceholderPhrases are the automatic-subgroup labels FET writes
// into class names. Longer variants come first so plurals are removed whole.
var DefaultPlaceholderPhrases = []string{
	"مجموعات فرعية تلقائية",
	"مجموعة فرعية تلقائية",
	"sous-groupes automatiques",
	"sous groupe automatique",
	"automatic subgroups",
	"automatic subgroup",
	"auto subgroups",
	"auto subgroup",
}

var repeatedSpace = regexp.MustCompile(`\s{2,}`)

// Sanitizer strips placeholder phrases from class names.
type Sanitizer struct {
	phrases []string
}

// NewSanitizer builds a sanitizer from the default denylist plus extra phrases.
func NewSanitizer(extra ...string) *Sanitizer {
	seen := make(map[string]struct{}, len(DefaultPlaceholderPhrases)+len(extra))
	phrases := make([]string, 0, len(DefaultPlaceholderPhrases)+len(extra))
	for _, list := range [][]string{DefaultPlaceholderPhrases, extra} {
		for _, p := range list {
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			phrases = append(phrases, p)
		}
	}
	return &Sanitizer{phrases: phrases}
}

// Clean removes every placeholder phrase, collapses whitespace runs and trims.
func (s *Sanitizer) Clean(name string) string {
	for _, p := range s.phrases {
		name = strings.ReplaceAll(name, p, "")
	}
	return strings.TrimSpace(repeatedSpace.ReplaceAllString(name, " "))
}

// Phrases returns the active denylist.
func (s *Sanitizer) Phrases() []string {
	out := make([]string, len(s.phrases))
	copy(out, s.phrases)
	return out
}
