package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

func hourSlot(hour, room string) models.DerivedSlot {
	return models.DerivedSlot{
		Day:      "Lundi",
		Period:   models.PeriodMorning,
		HourID:   hour,
		Timeslot: MapHourToTimeslot(true, hour),
		Subject:  "Math",
		Teacher:  "Ahmed",
		Room:     room,
	}
}

func TestMergeConsecutiveFoldsLeft(t *testing.T) {
	merged := MergeConsecutive([]models.DerivedSlot{
		hourSlot("H1", "101"),
		hourSlot("H2", "101"),
		hourSlot("H3", "101"),
		hourSlot("H4", "101"),
	})
	require.Len(t, merged, 1)
	assert.Equal(t, "H1-H4", merged[0].HourID)
	assert.Equal(t, "08:30 - 12:30", merged[0].Timeslot)
}

func TestMergeConsecutiveRequiresContiguityAndEquality(t *testing.T) {
	merged := MergeConsecutive([]models.DerivedSlot{
		hourSlot("H1", "101"),
		hourSlot("H3", "101"),
		hourSlot("H4", "102"),
	})
	assert.Len(t, merged, 3)

	other := hourSlot("H2", "101")
	other.Period = models.PeriodAfternoon
	assert.Len(t, MergeConsecutive([]models.DerivedSlot{hourSlot("H1", "101"), other}), 2)

	assert.Empty(t, MergeConsecutive(nil))
}

func TestMergeConsecutiveUnknownTimeslots(t *testing.T) {
	a := hourSlot("H5", "101")
	b := hourSlot("H6", "101")
	merged := MergeConsecutive([]models.DerivedSlot{a, b})
	require.Len(t, merged, 1)
	assert.Equal(t, "H5-H6", merged[0].HourID)
	assert.Equal(t, "H5 - H6", merged[0].Timeslot)
}
