package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/export"
)

// Content types of rendered documents.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeICS  = "text/calendar; charset=utf-8"
)

var slotHeaders = []string{"Jour", "Période", "Heure", "Horaire", "Matière", "Enseignant", "Groupe", "Salle"}

var vacantHeaders = []string{"Jour", "Horaire", "Salles libres"}

// standardTimeslots are the grid rows every timetable PDF shows.
var standardTimeslots = func() []string {
	out := make([]string, 0, 2*len(timetable.HourTokens))
	for _, morning := range []bool{true, false} {
		for _, hour := range timetable.HourTokens {
			out = append(out, timetable.MapHourToTimeslot(morning, hour))
		}
	}
	return out
}()

type viewSource interface {
	TeacherView(ctx context.Context, sessionID, name string) []models.DerivedSlot
	ClassView(ctx context.Context, sessionID, name string, query dto.ClassViewQuery) ([]models.DerivedSlot, error)
	RoomView(ctx context.Context, sessionID, name string) []models.DerivedSlot
	VacantRooms(ctx context.Context, sessionID string) []models.DerivedSlot
}

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type gridRenderer interface {
	RenderGrid(grid export.Grid) ([]byte, error)
	Render(data export.Dataset, title string) ([]byte, error)
}

type calendarRenderer interface {
	Render(c export.Calendar) ([]byte, error)
}

// ExportRequest identifies one rendering.
type ExportRequest struct {
	Format models.ExportFormat
	Target models.ExportTarget
	Name   string
	Class  dto.ClassViewQuery
}

// Rendered is a document ready to be sent or archived.
type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders views as PDF, CSV, XLSX or ICS documents.
type ExportService struct {
	views     viewSource
	pdf       gridRenderer
	csv       tableRenderer
	xlsx      titledRenderer
	ics       calendarRenderer
	metrics   *MetricsService
	logger    *zap.Logger
	weekStart func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the defaults of pkg/export.
func NewExportService(views viewSource, pdf gridRenderer, csv tableRenderer, xlsx titledRenderer, ics calendarRenderer, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("", nil)
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter()
	}
	return &ExportService{
		views:     views,
		pdf:       pdf,
		csv:       csv,
		xlsx:      xlsx,
		ics:       ics,
		metrics:   metrics,
		logger:    logger,
		weekStart: currentMonday,
	}
}

// Export derives the requested view and renders it. An empty view is
// reported as ErrNoData.
func (s *ExportService) Export(ctx context.Context, sessionID string, req ExportRequest) (*Rendered, error) {
	if err := validateExport(req); err != nil {
		return nil, err
	}

	slots, err := s.slots(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}
	if req.Target != models.ExportTargetVacantRooms {
		slots = lessons(slots)
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, fmt.Sprintf("no %s timetable for %q", req.Target, req.Name))
	}

	rendered, err := s.render(req, slots)
	s.metrics.RecordExport(string(req.Format), err)
	if err != nil {
		s.logger.Error("render export failed",
			zap.String("session_id", sessionID),
			zap.String("format", string(req.Format)),
			zap.String("target", string(req.Target)),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return rendered, nil
}

// lessons drops free hours, which documents leave blank.
func lessons(slots []models.DerivedSlot) []models.DerivedSlot {
	out := make([]models.DerivedSlot, 0, len(slots))
	for _, slot := range slots {
		if strings.TrimSpace(slot.Subject) == "" && strings.TrimSpace(slot.Subgroup) == "" && strings.TrimSpace(slot.Room) == "" {
			continue
		}
		out = append(out, slot)
	}
	return out
}

func validateExport(req ExportRequest) error {
	switch req.Format {
	case models.ExportFormatPDF, models.ExportFormatCSV, models.ExportFormatXLSX:
	case models.ExportFormatICS:
		if req.Target == models.ExportTargetVacantRooms {
			return appErrors.Clone(appErrors.ErrUnsupported, "vacant rooms cannot be exported as ics")
		}
	default:
		return appErrors.Clone(appErrors.ErrUnsupported, fmt.Sprintf("unsupported export format %q", req.Format))
	}
	switch req.Target {
	case models.ExportTargetTeacher, models.ExportTargetSubgroup, models.ExportTargetRoom:
		if strings.TrimSpace(req.Name) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "name is required")
		}
	case models.ExportTargetVacantRooms:
	default:
		return appErrors.Clone(appErrors.ErrUnsupported, fmt.Sprintf("unsupported export target %q", req.Target))
	}
	return nil
}

func (s *ExportService) slots(ctx context.Context, sessionID string, req ExportRequest) ([]models.DerivedSlot, error) {
	switch req.Target {
	case models.ExportTargetTeacher:
		return s.views.TeacherView(ctx, sessionID, req.Name), nil
	case models.ExportTargetSubgroup:
		return s.views.ClassView(ctx, sessionID, req.Name, req.Class)
	case models.ExportTargetRoom:
		return s.views.RoomView(ctx, sessionID, req.Name), nil
	default:
		return s.views.VacantRooms(ctx, sessionID), nil
	}
}

func (s *ExportService) render(req ExportRequest, slots []models.DerivedSlot) (*Rendered, error) {
	title := exportTitle(req)
	base := exportFilename(req)
	vacant := req.Target == models.ExportTargetVacantRooms

	var (
		body        []byte
		contentType string
		err         error
	)
	switch req.Format {
	case models.ExportFormatPDF:
		contentType = ContentTypePDF
		if vacant {
			body, err = s.pdf.Render(vacantDataset(slots), title)
		} else {
			body, err = s.pdf.RenderGrid(slotGrid(req.Target, title, slots))
		}
	case models.ExportFormatCSV:
		contentType = ContentTypeCSV
		body, err = s.csv.Render(datasetFor(vacant, slots))
	case models.ExportFormatXLSX:
		contentType = ContentTypeXLSX
		body, err = s.xlsx.Render(datasetFor(vacant, slots), title)
	case models.ExportFormatICS:
		contentType = ContentTypeICS
		body, err = s.ics.Render(s.calendar(title, base, slots))
	}
	if err != nil {
		return nil, err
	}
	return &Rendered{Filename: base + "." + string(req.Format), ContentType: contentType, Body: body}, nil
}

func datasetFor(vacant bool, slots []models.DerivedSlot) export.Dataset {
	if vacant {
		return vacantDataset(slots)
	}
	return slotDataset(slots)
}

func slotDataset(slots []models.DerivedSlot) export.Dataset {
	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, map[string]string{
			"Jour":       slot.Day,
			"Période":    string(slot.Period),
			"Heure":      slot.HourID,
			"Horaire":    slot.Timeslot,
			"Matière":    slot.Subject,
			"Enseignant": slot.Teacher,
			"Groupe":     slot.Subgroup,
			"Salle":      slot.Room,
		})
	}
	return export.Dataset{Headers: slotHeaders, Rows: rows}
}

// vacantDataset groups free rooms by day and timeslot, keeping view order.
func vacantDataset(slots []models.DerivedSlot) export.Dataset {
	type group struct {
		day, timeslot string
		rooms         []string
	}
	var groups []*group
	index := make(map[string]*group)
	for _, slot := range slots {
		key := slot.Day + "|" + slot.Timeslot
		g, ok := index[key]
		if !ok {
			g = &group{day: slot.Day, timeslot: slot.Timeslot}
			index[key] = g
			groups = append(groups, g)
		}
		g.rooms = append(g.rooms, slot.Subgroup)
	}
	rows := make([]map[string]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, map[string]string{
			"Jour":          g.day,
			"Horaire":       g.timeslot,
			"Salles libres": strings.Join(g.rooms, ", "),
		})
	}
	return export.Dataset{Headers: vacantHeaders, Rows: rows}
}

func slotGrid(target models.ExportTarget, title string, slots []models.DerivedSlot) export.Grid {
	grid := export.Grid{
		Title:     title,
		Days:      timetable.Days,
		Timeslots: standardTimeslots,
		Cells:     make([]export.Cell, 0, len(slots)),
	}
	for _, slot := range slots {
		lines := []string{slot.Subject}
		if target != models.ExportTargetTeacher && slot.Teacher != "" {
			lines = append(lines, "Enseignant : "+slot.Teacher)
		}
		if slot.Subgroup != "" {
			lines = append(lines, "Groupe : "+slot.Subgroup)
		}
		if target != models.ExportTargetRoom && slot.Room != "" {
			lines = append(lines, "Salle : "+slot.Room)
		}
		grid.Cells = append(grid.Cells, export.Cell{Day: slot.Day, Timeslot: slot.Timeslot, Lines: lines})
	}
	if target == models.ExportTargetTeacher {
		grid.Footer = teacherFooter(slots)
	}
	return grid
}

func teacherFooter(slots []models.DerivedSlot) string {
	seen := make(map[string]struct{})
	var classes []string
	for _, slot := range slots {
		group := strings.TrimSpace(slot.Subgroup)
		if group == "" {
			continue
		}
		if _, ok := seen[group]; ok {
			continue
		}
		seen[group] = struct{}{}
		classes = append(classes, group)
	}
	footer := ""
	if len(classes) > 0 {
		footer = "Classes enseignées : " + strings.Join(classes, ", ") + "\n\n"
	}
	return footer + "Signature de la direction : ___________________"
}

func (s *ExportService) calendar(title, uidPrefix string, slots []models.DerivedSlot) export.Calendar {
	monday := s.weekStart()
	cal := export.Calendar{Name: title}
	for i, slot := range slots {
		start, end, ok := slotTimes(monday, slot)
		if !ok {
			continue
		}
		description := make([]string, 0, 2)
		if slot.Teacher != "" {
			description = append(description, "Enseignant : "+slot.Teacher)
		}
		if slot.Subgroup != "" {
			description = append(description, "Groupe : "+slot.Subgroup)
		}
		cal.Events = append(cal.Events, export.Event{
			UID:         fmt.Sprintf("%s-%d-%s-%s@fet-timetable", uidPrefix, i, strings.ToLower(slot.Day), strings.ToLower(slot.HourID)),
			Summary:     slot.Subject,
			Location:    slot.Room,
			Description: strings.Join(description, "\n"),
			Start:       start,
			End:         end,
		})
	}
	return cal
}

// slotTimes places a slot on the reference week.
func slotTimes(monday time.Time, slot models.DerivedSlot) (time.Time, time.Time, bool) {
	order := timetable.DayOrder(slot.Day)
	if order > len(timetable.Days) {
		return time.Time{}, time.Time{}, false
	}
	from, to, ok := strings.Cut(slot.Timeslot, " - ")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	day := monday.AddDate(0, 0, order-1)
	start, err1 := clockOn(day, from)
	end, err2 := clockOn(day, to)
	if err1 != nil || err2 != nil || !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func clockOn(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func currentMonday() time.Time {
	now := time.Now()
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func exportTitle(req ExportRequest) string {
	switch req.Target {
	case models.ExportTargetTeacher:
		return "Emploi du temps - Enseignant : " + req.Name
	case models.ExportTargetSubgroup:
		return "Emploi du temps - Classe : " + req.Name
	case models.ExportTargetRoom:
		return "Occupation de la salle : " + req.Name
	default:
		return "Salles libres"
	}
}

func exportFilename(req ExportRequest) string {
	switch req.Target {
	case models.ExportTargetTeacher:
		return "emploi-temps-professeur-" + slugify(req.Name)
	case models.ExportTargetSubgroup:
		return "emploi-temps-classe-" + slugify(req.Name)
	case models.ExportTargetRoom:
		return "occupation-salle-" + slugify(req.Name)
	default:
		return "salles-vacantes"
	}
}

// slugify strips diacritics and keeps ASCII letters and digits so the name
// is safe in a Content-Disposition header and inside a ZIP archive.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "sans-nom"
	}
	if len(out) > 80 {
		out = strings.TrimSuffix(out[:80], "-")
	}
	return out
}

// uniqueName appends a counter when name was already used.
func uniqueName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		ext := ""
		if i := strings.LastIndex(name, "."); i > 0 {
			name, ext = name[:i], name[i:]
		}
		return fmt.Sprintf("%s-%d%s", name, n, ext)
	}
	return name
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
