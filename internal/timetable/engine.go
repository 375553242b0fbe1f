package timetable

import (
	"sort"
	"strings"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// Engine derives views from snapshots. It holds no session state and is
// safe for concurrent use.
type Engine struct {
	sanitizer *Sanitizer
	matcher   SessionMatcher
}

// Option customises an Engine.
type Option func(*Engine)

// WithMatcher replaces the same-lesson subject heuristic.
func WithMatcher(m SessionMatcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithSanitizer replaces the class-name sanitizer.
func WithSanitizer(s *Sanitizer) Option {
	return func(e *Engine) {
		if s != nil {
			e.sanitizer = s
		}
	}
}

// New builds an Engine with substring matching and the default denylist.
func New(opts ...Option) *Engine {
	e := &Engine{sanitizer: NewSanitizer(), matcher: SubstringMatcher{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sanitize exposes the engine's class-name sanitizer.
func (e *Engine) Sanitize(name string) string {
	return e.sanitizer.Clean(name)
}

// newSlot builds a DerivedSlot for key, applying both rename tables.
func newSlot(key models.DayHourKey, subject, teacher, group, room string, m models.Mappings) models.DerivedSlot {
	return models.DerivedSlot{
		Day:      NormalizeDay(key.Day),
		Period:   PeriodOf(key.Day),
		HourID:   key.Hour,
		Timeslot: MapHourToTimeslot(IsMorning(key.Day), key.Hour),
		Subject:  subject,
		Teacher:  Display(teacher, m.Teachers),
		Subgroup: group,
		Room:     Display(room, m.Rooms),
	}
}

// compareKey orders two slots by day, period and hour.
func compareKey(a, b models.DerivedSlot) int {
	if da, db := DayOrder(a.Day), DayOrder(b.Day); da != db {
		return da - db
	}
	if a.Day != b.Day {
		return strings.Compare(a.Day, b.Day)
	}
	if a.Period != b.Period {
		if a.Period == models.PeriodMorning {
			return -1
		}
		return 1
	}
	return strings.Compare(a.HourID, b.HourID)
}

// sortSlots orders slots by key, breaking ties on the group and room fields
// so output never depends on map iteration.
func sortSlots(slots []models.DerivedSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if c := compareKey(slots[i], slots[j]); c != 0 {
			return c < 0
		}
		if slots[i].Subgroup != slots[j].Subgroup {
			return slots[i].Subgroup < slots[j].Subgroup
		}
		if slots[i].Subject != slots[j].Subject {
			return slots[i].Subject < slots[j].Subject
		}
		return slots[i].Room < slots[j].Room
	})
}

func sortedIDs(table models.ScheduleTable) []string {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortDayHourKeys(keys []models.DayHourKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		na, nb := NormalizeDay(a.Day), NormalizeDay(b.Day)
		if oa, ob := DayOrder(na), DayOrder(nb); oa != ob {
			return oa < ob
		}
		if ma, mb := IsMorning(a.Day), IsMorning(b.Day); ma != mb {
			return ma
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return a.Day < b.Day
	})
}
