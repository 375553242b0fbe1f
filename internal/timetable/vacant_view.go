package timetable

import (
	"sort"
	"strings"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// UniversalRooms collects every non-blank room (trimmed) seen in subgroup
// schedules, teacher schedules or the activity list.
func UniversalRooms(snap *models.Snapshot) map[string]struct{} {
	rooms := make(map[string]struct{})
	if snap == nil {
		return rooms
	}
	add := func(room string) {
		if r := strings.TrimSpace(room); r != "" {
			rooms[r] = struct{}{}
		}
	}
	for _, table := range []models.ScheduleTable{snap.Subgroups, snap.Teachers} {
		for _, schedule := range table {
			for _, cell := range schedule {
				add(cell.Room)
			}
		}
	}
	for _, a := range snap.Activities {
		add(a.Room)
	}
	return rooms
}

// UsedRooms maps every key observed in any source to the rooms occupied
// there. Keys whose cells name no room are present with an empty set.
func UsedRooms(snap *models.Snapshot) map[models.DayHourKey]map[string]struct{} {
	used := make(map[models.DayHourKey]map[string]struct{})
	if snap == nil {
		return used
	}
	mark := func(key models.DayHourKey, room string) {
		set, ok := used[key]
		if !ok {
			set = make(map[string]struct{})
			used[key] = set
		}
		if r := strings.TrimSpace(room); r != "" {
			set[r] = struct{}{}
		}
	}
	for _, table := range []models.ScheduleTable{snap.Subgroups, snap.Teachers} {
		for _, schedule := range table {
			for key, cell := range schedule {
				mark(key, cell.Room)
			}
		}
	}
	for _, a := range snap.Activities {
		mark(models.DayHourKey{Day: a.Day, Hour: a.Hour}, a.Room)
	}
	return used
}

// VacantRooms lists, for every observed key, each known room not used there.
// The room's display name travels in the Subgroup field.
func (e *Engine) VacantRooms(snap *models.Snapshot) []models.DerivedSlot {
	if snap == nil {
		return nil
	}
	all := sortedSet(UniversalRooms(snap))
	if len(all) == 0 {
		return nil
	}

	var slots []models.DerivedSlot
	for key, used := range UsedRooms(snap) {
		for _, room := range all {
			if _, busy := used[room]; busy {
				continue
			}
			slots = append(slots, newSlot(key, "", "", Display(room, snap.Mappings.Rooms), "", snap.Mappings))
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if c := compareKey(slots[i], slots[j]); c != 0 {
			return c < 0
		}
		a, b := strings.ToLower(slots[i].Subgroup), strings.ToLower(slots[j].Subgroup)
		if a != b {
			return a < b
		}
		return slots[i].Subgroup < slots[j].Subgroup
	})
	return slots
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
