// Package importer turns FET timetable exports into schedule tables.
package importer

import (
	"bytes"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/fet-timetable-api/internal/models"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
)

// Document names one of the three FET exports.
type Document string

const (
	DocumentTeachers   Document = "teachers"
	DocumentSubgroups  Document = "subgroups"
	DocumentActivities Document = "activities"
)

// Importer parses FET XML documents.
type Importer struct {
	logger *zap.Logger
}

// New builds an Importer.
func New(logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{logger: logger}
}

// ParseTeachers reads a teachers timetable. Every hour is recorded, empty
// ones included, as {subject, students, room}. A teacher without a name
// attribute falls back to its id.
func (i *Importer) ParseTeachers(r io.Reader) (models.ScheduleTable, error) {
	root, err := decodeDocument(r, DocumentTeachers)
	if err != nil {
		return nil, err
	}

	out := make(models.ScheduleTable)
	for _, teacher := range root.all("Teacher") {
		name := teacher.attr("name")
		if name == "" {
			name = teacher.attr("id")
		}
		if strings.TrimSpace(name) == "" {
			continue
		}
		schedule := make(models.EntitySchedule)
		eachHour(teacher, func(key models.DayHourKey, hour *element) {
			schedule[key] = models.RawSlot{
				Subject:      hour.nameOf("Subject"),
				StudentGroup: hour.nameOf("Students"),
				Room:         hour.nameOf("Room"),
			}
		})
		out[name] = schedule
	}

	i.logger.Debug("teachers parsed", zap.Int("teachers", len(out)), zap.Int("slots", out.Slots()))
	return out, nil
}

// ParseSubgroups reads a students timetable. Hours are recorded only when
// they hold an Activity, as {teacher, subject, room}.
func (i *Importer) ParseSubgroups(r io.Reader) (models.ScheduleTable, error) {
	root, err := decodeDocument(r, DocumentSubgroups)
	if err != nil {
		return nil, err
	}

	out := make(models.ScheduleTable)
	for _, subgroup := range root.all("Subgroup") {
		name := subgroup.attr("name")
		if strings.TrimSpace(name) == "" {
			continue
		}
		schedule := make(models.EntitySchedule)
		eachHour(subgroup, func(key models.DayHourKey, hour *element) {
			if hour.first("Activity") == nil {
				return
			}
			schedule[key] = models.RawSlot{
				Teacher: hour.nameOf("Teacher"),
				Subject: hour.nameOf("Subject"),
				Room:    hour.nameOf("Room"),
			}
		})
		out[name] = schedule
	}

	i.logger.Debug("subgroups parsed", zap.Int("subgroups", len(out)), zap.Int("slots", out.Slots()))
	return out, nil
}

// ParseActivities reads the flat activity list. Records without a day or an
// hour are skipped.
func (i *Importer) ParseActivities(r io.Reader) ([]models.ActivityRecord, error) {
	root, err := decodeDocument(r, DocumentActivities)
	if err != nil {
		return nil, err
	}

	out := make([]models.ActivityRecord, 0)
	for _, activity := range root.all("Activity") {
		rec := models.ActivityRecord{
			Day:  activity.textOf("Day"),
			Hour: activity.textOf("Hour"),
			Room: activity.textOf("Room"),
		}
		if rec.Day == "" || rec.Hour == "" {
			continue
		}
		out = append(out, rec)
	}

	i.logger.Debug("activities parsed", zap.Int("activities", len(out)))
	return out, nil
}

// Parse dispatches on doc and stores the result in snap's matching table.
func (i *Importer) Parse(doc Document, data []byte, snap *models.Snapshot) error {
	switch doc {
	case DocumentTeachers:
		table, err := i.ParseTeachers(bytes.NewReader(data))
		if err != nil {
			return err
		}
		snap.Teachers = table
	case DocumentSubgroups:
		table, err := i.ParseSubgroups(bytes.NewReader(data))
		if err != nil {
			return err
		}
		snap.Subgroups = table
	case DocumentActivities:
		list, err := i.ParseActivities(bytes.NewReader(data))
		if err != nil {
			return err
		}
		snap.Activities = list
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown document "+string(doc))
	}
	return nil
}

func decodeDocument(r io.Reader, doc Document) (*element, error) {
	root, err := decode(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidImport.Code, appErrors.ErrInvalidImport.Status, string(doc)+" document could not be parsed")
	}
	return root, nil
}

// eachHour visits every named Hour under every named Day of owner.
func eachHour(owner *element, fn func(models.DayHourKey, *element)) {
	for _, day := range owner.descendants("Day") {
		dayName := day.attr("name")
		if strings.TrimSpace(dayName) == "" {
			continue
		}
		for _, hour := range day.descendants("Hour") {
			hourName := hour.attr("name")
			if strings.TrimSpace(hourName) == "" {
				continue
			}
			fn(models.DayHourKey{Day: dayName, Hour: hourName}, hour)
		}
	}
}
