package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

func TestRoomViewDeduplicatesSubgroupsOfOneClass(t *testing.T) {
	snap := newSnapshot()
	lesson := models.RawSlot{Subject: "Math", Teacher: "Ahmed", Room: "101"}
	snap.Subgroups["3APIC-5:G1"] = models.EntitySchedule{key("Lundi_m", "H1"): lesson, key("Lundi_m", "H2"): lesson}
	snap.Subgroups["3APIC-5:G2"] = models.EntitySchedule{key("Lundi_m", "H1"): lesson}
	snap.Subgroups["2APIC-1"] = models.EntitySchedule{key("Mardi_s", "H2"): {Subject: "SVT", Teacher: "Omar", Room: " 101 "}}
	snap.Subgroups["automatic subgroups"] = models.EntitySchedule{key("Jeudi_m", "H1"): lesson}

	slots := New().RoomView(snap, "101")
	require.Len(t, slots, 2)
	assert.Equal(t, models.DerivedSlot{
		Day:      "Lundi",
		Period:   models.PeriodMorning,
		HourID:   "H1-H2",
		Timeslot: "08:30 - 10:30",
		Subject:  "Math",
		Teacher:  "Ahmed",
		Subgroup: "3APIC-5",
		Room:     "101",
	}, slots[0])
	assert.Equal(t, "2APIC-1", slots[1].Subgroup)
	assert.Equal(t, "101", slots[1].Room)
}

func TestRoomViewCaseInsensitiveAndRenamed(t *testing.T) {
	snap := newSnapshot()
	snap.Subgroups["1BAC:G1"] = models.EntitySchedule{key("Vendredi_m", "H3"): {Subject: "Chimie", Teacher: "Lina", Room: "LAB"}}
	snap.Mappings.Rooms["LAB"] = "Laboratoire"
	snap.Mappings.Teachers["Lina"] = "Mme Lina"

	byDisplay := New().RoomView(snap, "Laboratoire")
	require.Len(t, byDisplay, 1)
	assert.Equal(t, "Laboratoire", byDisplay[0].Room)
	assert.Equal(t, "Mme Lina", byDisplay[0].Teacher)
	assert.Equal(t, "1BAC", byDisplay[0].Subgroup)

	assert.Len(t, New().RoomView(snap, "lab"), 1)
	assert.Empty(t, New().RoomView(snap, ""))
	assert.Empty(t, New().RoomView(snap, "Gym"))
}
