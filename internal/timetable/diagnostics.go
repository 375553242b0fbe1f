package timetable

import "github.com/noah-isme/fet-timetable-api/internal/models"

const diagnosticSamples = 5

// UsedSample shows the occupied rooms at one key.
type UsedSample struct {
	Key            string   `json:"key"`
	UsedRoomsCount int      `json:"usedRoomsCount"`
	UsedRooms      []string `json:"usedRooms"`
}

// VacancyDiagnostics explains the inputs of the vacant-room view.
type VacancyDiagnostics struct {
	TeachersCount   int          `json:"teachersCount"`
	SubgroupsCount  int          `json:"subgroupsCount"`
	ActivitiesCount int          `json:"activitiesCount"`
	AllRoomsCount   int          `json:"allRoomsCount"`
	UsedKeysCount   int          `json:"usedKeysCount"`
	UsedSamples     []UsedSample `json:"usedSamples"`
}

// Diagnose summarises a snapshot, sampling the first keys in week order.
func Diagnose(snap *models.Snapshot) VacancyDiagnostics {
	out := VacancyDiagnostics{UsedSamples: []UsedSample{}}
	if snap == nil {
		return out
	}
	used := UsedRooms(snap)
	out.TeachersCount = len(snap.Teachers)
	out.SubgroupsCount = len(snap.Subgroups)
	out.ActivitiesCount = len(snap.Activities)
	out.AllRoomsCount = len(UniversalRooms(snap))
	out.UsedKeysCount = len(used)

	keys := make([]models.DayHourKey, 0, len(used))
	for key := range used {
		keys = append(keys, key)
	}
	sortDayHourKeys(keys)
	if len(keys) > diagnosticSamples {
		keys = keys[:diagnosticSamples]
	}
	for _, key := range keys {
		rooms := sortedSet(used[key])
		out.UsedSamples = append(out.UsedSamples, UsedSample{Key: key.String(), UsedRoomsCount: len(rooms), UsedRooms: rooms})
	}
	return out
}
