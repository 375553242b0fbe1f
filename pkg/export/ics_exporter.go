package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

const icsProductID = "-//fet-timetable-api//timetable//FR"

// Event is one weekly lesson occurrence.
type Event struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// Calendar groups the events of one view.
type Calendar struct {
	Name   string
	Events []Event
}

// ICSExporter renders views as iCalendar files with weekly recurring events.
type ICSExporter struct {
	now func() time.Time
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{now: time.Now}
}

// Render serialises the calendar.
func (e *ICSExporter) Render(c Calendar) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	if c.Name != "" {
		cal.SetXWRCalName(c.Name)
	}

	stamp := e.now().UTC()
	for _, evt := range c.Events {
		if !evt.End.After(evt.Start) {
			return nil, fmt.Errorf("event %s ends before it starts", evt.UID)
		}
		ve := cal.AddEvent(evt.UID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(evt.Start)
		ve.SetEndAt(evt.End)
		ve.SetSummary(evt.Summary)
		if evt.Location != "" {
			ve.SetLocation(evt.Location)
		}
		if evt.Description != "" {
			ve.SetDescription(evt.Description)
		}
		ve.AddRrule("FREQ=WEEKLY")
	}
	return []byte(cal.Serialize()), nil
}
