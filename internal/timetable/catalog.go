package timetable

import (
	"sort"
	"strings"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// TeacherNames returns the original teacher names, sorted.
func TeacherNames(snap *models.Snapshot) []string {
	if snap == nil {
		return []string{}
	}
	return sortedIDs(snap.Teachers)
}

// SubgroupIDs returns every subgroup identifier, sorted.
func SubgroupIDs(snap *models.Snapshot) []string {
	if snap == nil {
		return []string{}
	}
	return sortedIDs(snap.Subgroups)
}

// TeachersBySubject groups display teacher names under each subject they
// teach. Blank subjects are skipped.
func TeachersBySubject(snap *models.Snapshot) map[string][]string {
	out := make(map[string][]string)
	if snap == nil {
		return out
	}
	sets := make(map[string]map[string]struct{})
	for teacher, schedule := range snap.Teachers {
		display := Display(teacher, snap.Mappings.Teachers)
		for _, cell := range schedule {
			subject := strings.TrimSpace(cell.Subject)
			if subject == "" {
				continue
			}
			if sets[subject] == nil {
				sets[subject] = make(map[string]struct{})
			}
			sets[subject][display] = struct{}{}
		}
	}
	for subject, set := range sets {
		out[subject] = sortedSet(set)
	}
	return out
}

// Classes returns the sanitized class bases, de-duplicated and sorted.
func (e *Engine) Classes(snap *models.Snapshot) []string {
	set := make(map[string]struct{})
	if snap != nil {
		for id := range snap.Subgroups {
			if clean := e.sanitizer.Clean(ClassBase(id)); clean != "" {
				set[clean] = struct{}{}
			}
		}
	}
	return sortedSet(set)
}

// SubgroupsForClass returns the non-automatic subgroup identifiers of a class.
func (e *Engine) SubgroupsForClass(snap *models.Snapshot, name string) []string {
	target := e.sanitizer.Clean(name)
	if snap == nil || target == "" {
		return []string{}
	}
	members := e.classMembers(snap, target)
	if members == nil {
		return []string{}
	}
	return members
}

// Rooms returns the sorted set of room display names.
func Rooms(snap *models.Snapshot) []string {
	set := make(map[string]struct{})
	var table models.RenameTable
	if snap != nil {
		table = snap.Mappings.Rooms
	}
	for room := range UniversalRooms(snap) {
		set[Display(room, table)] = struct{}{}
	}
	return sortedSet(set)
}

// TeacherRenameList pairs every original teacher with its current mapping,
// sorted case-insensitively.
func TeacherRenameList(snap *models.Snapshot) []models.RenameEntry {
	if snap == nil {
		return []models.RenameEntry{}
	}
	out := make([]models.RenameEntry, 0, len(snap.Teachers))
	for original := range snap.Teachers {
		out = append(out, models.RenameEntry{Original: original, Renamed: snap.Mappings.Teachers[original]})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Original), strings.ToLower(out[j].Original)
		if a != b {
			return a < b
		}
		return out[i].Original < out[j].Original
	})
	return out
}

// RoomRenameList pairs every original room with its current mapping.
func RoomRenameList(snap *models.Snapshot) []models.RenameEntry {
	if snap == nil {
		return []models.RenameEntry{}
	}
	rooms := sortedSet(UniversalRooms(snap))
	out := make([]models.RenameEntry, 0, len(rooms))
	for _, original := range rooms {
		out = append(out, models.RenameEntry{Original: original, Renamed: snap.Mappings.Rooms[original]})
	}
	return out
}
