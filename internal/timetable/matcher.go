package timetable

import "strings"

// Subject match modes accepted by MatcherFor.
const (
	MatchSubstring = "substring"
	MatchExact     = "exact"
)

// SessionMatcher decides whether two subject labels denote the same lesson.
type SessionMatcher interface {
	SameSubject(a, b string) bool
}

// SubstringMatcher matches case-insensitively when either subject contains
// the other. "Math" matches "Mathematics Lab".
type SubstringMatcher struct{}

func (SubstringMatcher) SameSubject(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ExactMatcher requires equal subjects, ignoring case and surrounding space.
type ExactMatcher struct{}

func (ExactMatcher) SameSubject(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// MatcherFor returns the matcher for a configured mode, defaulting to substring.
func MatcherFor(mode string) SessionMatcher {
	if strings.EqualFold(mode, MatchExact) {
		return ExactMatcher{}
	}
	return SubstringMatcher{}
}
