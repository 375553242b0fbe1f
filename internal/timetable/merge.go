package timetable

import (
	"fmt"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// MergeConsecutive folds adjacent identical slots of a sorted sequence.
// Each slot is compared only with the last accepted one, so a chain of N
// contiguous hours collapses to a single range.
func MergeConsecutive(sorted []models.DerivedSlot) []models.DerivedSlot {
	if len(sorted) == 0 {
		return sorted
	}
	merged := make([]models.DerivedSlot, 0, len(sorted))
	for _, cur := range sorted {
		if n := len(merged); n > 0 {
			if joined, ok := mergePair(merged[n-1], cur); ok {
				merged[n-1] = joined
				continue
			}
		}
		merged = append(merged, cur)
	}
	return merged
}

func mergePair(a, b models.DerivedSlot) (models.DerivedSlot, bool) {
	if a.Day != b.Day || a.Period != b.Period ||
		a.Subject != b.Subject || a.Teacher != b.Teacher ||
		a.Subgroup != b.Subgroup || a.Room != b.Room {
		return models.DerivedSlot{}, false
	}
	startA, endA, okA := hourBounds(a.HourID)
	startB, endB, okB := hourBounds(b.HourID)
	if !okA || !okB || endA+1 != startB {
		return models.DerivedSlot{}, false
	}

	out := a
	out.HourID = fmt.Sprintf("H%d-H%d", startA, endB)
	out.Timeslot = timeslotStart(a.Timeslot) + timeslotSep + timeslotEnd(b.Timeslot)
	return out, true
}
