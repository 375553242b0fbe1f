package timetable

import (
	"strings"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// RoomView lists every lesson held in one room, one row per class and key,
// with consecutive hours merged.
func (e *Engine) RoomView(snap *models.Snapshot, name string) []models.DerivedSlot {
	if snap == nil || strings.TrimSpace(name) == "" {
		return nil
	}
	rooms := UniversalRooms(snap)
	original := strings.TrimSpace(ResolveOriginal(name, snap.Mappings.Rooms, func(n string) bool {
		_, ok := rooms[n]
		return ok
	}))
	if original == "" {
		return nil
	}

	type dedupKey struct {
		key     models.DayHourKey
		subject string
		teacher string
		class   string
	}
	seen := make(map[dedupKey]struct{})
	var slots []models.DerivedSlot

	for _, id := range sortedIDs(snap.Subgroups) {
		class := e.sanitizer.Clean(ClassBase(id))
		if class == "" {
			continue
		}
		for key, cell := range snap.Subgroups[id] {
			room := strings.TrimSpace(cell.Room)
			if !strings.EqualFold(room, original) {
				continue
			}
			dk := dedupKey{key: key, subject: cell.Subject, teacher: cell.Teacher, class: class}
			if _, dup := seen[dk]; dup {
				continue
			}
			seen[dk] = struct{}{}
			slots = append(slots, newSlot(key, cell.Subject, cell.Teacher, class, room, snap.Mappings))
		}
	}

	sortSlots(slots)
	return MergeConsecutive(slots)
}
