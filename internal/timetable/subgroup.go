package timetable

import "strings"

// ClassBase returns the class part of a subgroup identifier ("3APIC-5:G1"
// gives "3APIC-5"). A leading colon keeps the whole identifier.
func ClassBase(id string) string {
	if idx := strings.Index(id, ":"); idx > 0 {
		return id[:idx]
	}
	return id
}

// GroupSuffix returns the part after the first colon, or "".
func GroupSuffix(id string) string {
	if idx := strings.Index(id, ":"); idx >= 0 && idx+1 < len(id) {
		return id[idx+1:]
	}
	return ""
}

// IsAutomatic reports whether id is a synthetic FET subgroup. Identifiers
// without a colon name a whole class and are never automatic.
func IsAutomatic(id string) bool {
	idx := strings.Index(id, ":")
	if idx < 0 {
		return false
	}
	part := strings.ToLower(strings.TrimSpace(id[idx+1:]))
	return part == "" || strings.Contains(part, "auto")
}

// hasExplicitSuffix reports whether a students field already names a group.
func hasExplicitSuffix(group string) bool {
	idx := strings.Index(group, ":")
	return idx >= 0 && strings.TrimSpace(group[idx+1:]) != ""
}
