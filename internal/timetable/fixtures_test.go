package timetable

import "github.com/noah-isme/fet-timetable-api/internal/models"

func key(day, hour string) models.DayHourKey {
	return models.DayHourKey{Day: day, Hour: hour}
}

func newSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Teachers:  models.ScheduleTable{},
		Subgroups: models.ScheduleTable{},
		Mappings:  models.NewMappings(),
	}
}
