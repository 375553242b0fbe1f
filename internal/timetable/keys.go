package timetable

import (
	"strconv"
	"strings"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// Days lists the canonical weekday names in display order.
var Days = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}

var dayOrder = map[string]int{
	"Lundi":    1,
	"Mardi":    2,
	"Mercredi": 3,
	"Jeudi":    4,
	"Vendredi": 5,
	"Samedi":   6,
}

var morningSlots = map[string]string{
	"H1": "08:30 - 09:30",
	"H2": "09:30 - 10:30",
	"H3": "10:30 - 11:30",
	"H4": "11:30 - 12:30",
}

var afternoonSlots = map[string]string{
	"H1": "14:30 - 15:30",
	"H2": "15:30 - 16:30",
	"H3": "16:30 - 17:30",
	"H4": "17:30 - 18:30",
}

// HourTokens lists the hour labels of one half-day.
var HourTokens = []string{"H1", "H2", "H3", "H4"}

const timeslotSep = " - "

// DayOrder ranks a canonical day name; unknown names sort last.
func DayOrder(day string) int {
	if order, ok := dayOrder[day]; ok {
		return order
	}
	return 7
}

// NormalizeDay maps a raw day token to its canonical weekday by
// case-insensitive prefix. Unrecognised input passes through.
func NormalizeDay(raw string) string {
	low := strings.ToLower(raw)
	for _, day := range Days {
		if strings.HasPrefix(low, strings.ToLower(day)) {
			return day
		}
	}
	return raw
}

// IsMorning reports whether a raw day token denotes the morning half.
func IsMorning(raw string) bool {
	return strings.HasSuffix(strings.ToLower(raw), "_m")
}

// PeriodOf returns the half-day of a raw day token.
func PeriodOf(raw string) models.Period {
	if IsMorning(raw) {
		return models.PeriodMorning
	}
	return models.PeriodAfternoon
}

// MapHourToTimeslot returns the clock range of an hour token. Unknown tokens
// pass through unchanged.
func MapHourToTimeslot(morning bool, hour string) string {
	table := afternoonSlots
	if morning {
		table = morningSlots
	}
	if slot, ok := table[hour]; ok {
		return slot
	}
	return hour
}

// hourBounds parses "H3" as (3,3) and "H1-H2" as (1,2).
func hourBounds(hourID string) (start, end int, ok bool) {
	first, second, ranged := strings.Cut(hourID, "-")
	start, ok = hourNumber(first)
	if !ok {
		return 0, 0, false
	}
	if !ranged {
		return start, start, true
	}
	end, ok = hourNumber(second)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func hourNumber(token string) (int, bool) {
	if !strings.HasPrefix(token, "H") {
		return 0, false
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func timeslotStart(slot string) string {
	start, _, _ := strings.Cut(slot, timeslotSep)
	return start
}

func timeslotEnd(slot string) string {
	if _, end, ok := strings.Cut(slot, timeslotSep); ok {
		return end
	}
	return slot
}
