package timetable

import (
	"sort"
	"strings"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// TeacherView returns the merged week of one teacher. name may be an
// original or a display name. Free hours are kept as empty slots.
func (e *Engine) TeacherView(snap *models.Snapshot, name string) []models.DerivedSlot {
	if snap == nil || strings.TrimSpace(name) == "" {
		return nil
	}
	original := ResolveOriginal(name, snap.Mappings.Teachers, func(n string) bool {
		_, ok := snap.Teachers[n]
		return ok
	})
	schedule := snap.Teachers[original]
	if len(schedule) == 0 {
		return nil
	}

	slots := make([]models.DerivedSlot, 0, len(schedule))
	for key, raw := range schedule {
		group := raw.StudentGroup
		if !e.hasCoincidentGroups(snap, raw, key, original) {
			if label := e.inferLabel(snap, raw, key, original); label != "" && !hasExplicitSuffix(group) {
				group = group + " (" + label + ")"
			}
		}
		slots = append(slots, newSlot(key, raw.Subject, original, group, raw.Room, snap.Mappings))
	}

	sortSlots(slots)
	return MergeConsecutive(slots)
}

// subgroupCandidates lists subgroup ids equal to group or prefixed by "group:".
func subgroupCandidates(snap *models.Snapshot, group string) []string {
	if strings.TrimSpace(group) == "" {
		return nil
	}
	prefix := group + ":"
	var out []string
	for id := range snap.Subgroups {
		if id == group || strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// sameSession reports whether a subgroup cell records the teacher's lesson.
func (e *Engine) sameSession(cell models.RawSlot, teacher, subject string) bool {
	if t := strings.TrimSpace(cell.Teacher); t != "" && cell.Teacher == teacher {
		return true
	}
	return e.matcher.SameSubject(subject, cell.Subject)
}

// hasCoincidentGroups detects a class split into parallel groups that all
// follow this same lesson. Such slots get no single-group label.
func (e *Engine) hasCoincidentGroups(snap *models.Snapshot, raw models.RawSlot, key models.DayHourKey, teacher string) bool {
	candidates := subgroupCandidates(snap, raw.StudentGroup)
	if len(candidates) <= 1 {
		return false
	}
	attending := 0
	for _, id := range candidates {
		cell, ok := snap.Subgroups[id][key]
		if !ok {
			continue
		}
		if e.sameSession(cell, teacher, raw.Subject) {
			attending++
		}
	}
	return attending > 1
}

// inferLabel returns the suffix of the first candidate subgroup that records
// this lesson at key.
func (e *Engine) inferLabel(snap *models.Snapshot, raw models.RawSlot, key models.DayHourKey, teacher string) string {
	for _, id := range subgroupCandidates(snap, raw.StudentGroup) {
		cell, ok := snap.Subgroups[id][key]
		if !ok {
			continue
		}
		if e.sameSession(cell, teacher, raw.Subject) {
			return GroupSuffix(id)
		}
	}
	return ""
}
