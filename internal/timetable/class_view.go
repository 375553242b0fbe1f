package timetable

import (
	"strings"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// Label modes for the class view.
const (
	LabelModeDiff   = "diff"
	LabelModeAlways = "always"
)

// ClassViewOptions control per-subgroup labelling.
type ClassViewOptions struct {
	// LabelMode "always" splits every shared lesson into per-subgroup rows.
	LabelMode string
	// LabelSubjects force per-subgroup rows for matching subjects.
	LabelSubjects []string
}

// ParseLabelSubjects splits a comma separated list, dropping blanks.
func ParseLabelSubjects(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ClassView reconciles the subgroups of one class into a single week.
// Shared lessons give one row; diverging subgroups give one labelled row
// each. An absent subgroup cell counts as a different, empty session.
func (e *Engine) ClassView(snap *models.Snapshot, name string, opts ClassViewOptions) []models.DerivedSlot {
	if snap == nil {
		return nil
	}
	target := e.sanitizer.Clean(name)
	if target == "" {
		return nil
	}
	members := e.classMembers(snap, target)
	if len(members) == 0 {
		return nil
	}

	keys := make(map[models.DayHourKey]struct{})
	for _, id := range members {
		for key := range snap.Subgroups[id] {
			keys[key] = struct{}{}
		}
	}

	forceAll := strings.EqualFold(opts.LabelMode, LabelModeAlways)
	slots := make([]models.DerivedSlot, 0, len(keys))
	for key := range keys {
		cells := make([]models.RawSlot, len(members))
		signatures := make(map[string]struct{}, len(members))
		for i, id := range members {
			cells[i] = snap.Subgroups[id][key]
			signatures[signature(cells[i])] = struct{}{}
		}

		if len(signatures) == 1 {
			shared := cells[0]
			if !forceAll && !labelledSubject(shared.Subject, opts.LabelSubjects) {
				slots = append(slots, newSlot(key, shared.Subject, shared.Teacher, target, shared.Room, snap.Mappings))
				continue
			}
		}
		for i, id := range members {
			slots = append(slots, subgroupSlot(key, id, cells[i], snap.Mappings))
		}
	}

	sortSlots(slots)
	return slots
}

// classMembers lists the sorted, non-automatic subgroups whose sanitized
// class base equals target.
func (e *Engine) classMembers(snap *models.Snapshot, target string) []string {
	var out []string
	for _, id := range sortedIDs(snap.Subgroups) {
		if IsAutomatic(id) {
			continue
		}
		if e.sanitizer.Clean(ClassBase(id)) == target {
			out = append(out, id)
		}
	}
	return out
}

// subgroupSlot renders one subgroup's cell, labelled with its suffix. Empty
// cells stay empty and unlabelled.
func subgroupSlot(key models.DayHourKey, id string, cell models.RawSlot, m models.Mappings) models.DerivedSlot {
	if cell.IsEmpty() {
		return newSlot(key, "", "", id, "", m)
	}
	subject := cell.Subject
	if label := GroupSuffix(id); strings.TrimSpace(label) != "" {
		subject = subject + " (" + label + ")"
	}
	return newSlot(key, subject, cell.Teacher, id, cell.Room, m)
}

func signature(cell models.RawSlot) string {
	return strings.ToLower(strings.TrimSpace(cell.Subject)) + "|" + strings.ToLower(strings.TrimSpace(cell.Teacher))
}

// labelledSubject matches subject against the forced-label list, either
// direction, ignoring case. A blank subject never matches.
func labelledSubject(subject string, labels []string) bool {
	subj := strings.ToLower(strings.TrimSpace(subject))
	if subj == "" {
		return false
	}
	for _, label := range labels {
		lbl := strings.ToLower(strings.TrimSpace(label))
		if lbl == "" {
			continue
		}
		if strings.Contains(subj, lbl) || strings.Contains(lbl, subj) {
			return true
		}
	}
	return false
}
