package models

import (
	"strings"
	"time"
)

// RawSlot is one cell of a day/hour grid as imported. Any field may be blank.
type RawSlot struct {
	Subject      string `json:"subject"`
	Teacher      string `json:"teacher"`
	Room         string `json:"room"`
	StudentGroup string `json:"studentGroup"`
}

// IsEmpty reports whether the slot carries no session content.
func (s RawSlot) IsEmpty() bool {
	return strings.TrimSpace(s.Subject) == "" &&
		strings.TrimSpace(s.Teacher) == "" &&
		strings.TrimSpace(s.Room) == ""
}

// DayHourKey addresses one lesson occurrence. Day keeps the raw FET token
// (e.g. "Lundi_m"), Hour is "H1".."H4".
type DayHourKey struct {
	Day  string `json:"day"`
	Hour string `json:"hour"`
}

func (k DayHourKey) String() string {
	return k.Day + "::" + k.Hour
}

// EntitySchedule is one teacher's or subgroup's week.
type EntitySchedule map[DayHourKey]RawSlot

// ScheduleTable maps a teacher name or subgroup identifier to its week.
type ScheduleTable map[string]EntitySchedule

// Slots counts every recorded cell across the table.
func (t ScheduleTable) Slots() int {
	total := 0
	for _, schedule := range t {
		total += len(schedule)
	}
	return total
}

// ActivityRecord is a flat room occupation taken from the activities export.
type ActivityRecord struct {
	Day  string `json:"day"`
	Hour string `json:"hour"`
	Room string `json:"room"`
}

// RenameTable maps an original name to its display name.
type RenameTable map[string]string

// Clone returns an independent copy; a nil table clones to an empty one.
func (t RenameTable) Clone() RenameTable {
	out := make(RenameTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// RenameKind selects which rename table an operation targets.
type RenameKind string

const (
	RenameKindTeacher RenameKind = "teacher"
	RenameKindRoom    RenameKind = "room"
)

// Mappings is the persisted pair of rename tables.
type Mappings struct {
	Teachers RenameTable `json:"teachers"`
	Rooms    RenameTable `json:"rooms"`
}

// NewMappings returns empty, non-nil tables.
func NewMappings() Mappings {
	return Mappings{Teachers: RenameTable{}, Rooms: RenameTable{}}
}

// Clone deep-copies both tables.
func (m Mappings) Clone() Mappings {
	return Mappings{Teachers: m.Teachers.Clone(), Rooms: m.Rooms.Clone()}
}

// Table returns the table for kind.
func (m Mappings) Table(kind RenameKind) RenameTable {
	if kind == RenameKindRoom {
		return m.Rooms
	}
	return m.Teachers
}

// RenameEntry is one row of a rename configuration list. Renamed is blank
// when no mapping exists.
type RenameEntry struct {
	Original string `json:"original"`
	Renamed  string `json:"renamed"`
}

// Period is the half-day a slot falls in.
type Period string

const (
	PeriodMorning   Period = "matin"
	PeriodAfternoon Period = "soir"
)

// DerivedSlot is the output row of every view. Teacher and room are already
// display names.
type DerivedSlot struct {
	Day      string `json:"day"`
	Period   Period `json:"period"`
	HourID   string `json:"hourId"`
	Timeslot string `json:"timeslot"`
	Subject  string `json:"subject"`
	Teacher  string `json:"teacher"`
	Subgroup string `json:"subgroup"`
	Room     string `json:"room"`
}

// Snapshot is the immutable per-session view of imported data. Writers
// replace whole tables and bump Version; readers never see partial updates.
type Snapshot struct {
	Teachers   ScheduleTable    `json:"-"`
	Subgroups  ScheduleTable    `json:"-"`
	Activities []ActivityRecord `json:"-"`
	Mappings   Mappings         `json:"mappings"`
	Version    uint64           `json:"version"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// HasData reports whether any import has populated the snapshot.
func (s *Snapshot) HasData() bool {
	if s == nil {
		return false
	}
	return len(s.Teachers) > 0 || len(s.Subgroups) > 0 || len(s.Activities) > 0
}

// SessionInfo summarises one live session for the debug listing.
type SessionInfo struct {
	SessionID       string    `json:"sessionId"`
	TeachersCount   int       `json:"teachersCount"`
	SubgroupsCount  int       `json:"subgroupsCount"`
	ActivitiesCount int       `json:"activitiesCount"`
	HasData         bool      `json:"hasData"`
	LastSeen        time.Time `json:"lastSeen"`
}
