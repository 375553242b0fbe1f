package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/fet-timetable-api/internal/importer"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
)

func newExportFixture(t *testing.T) (*ExportService, timetableFixture) {
	t.Helper()
	f := newTimetableFixture(t, "", nil)
	f.upload(t, "s1")
	svc := NewExportService(f.svc, nil, nil, nil, nil, NewMetricsService(), nil)
	svc.weekStart = func() time.Time { return time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC) }
	return svc, f
}

func TestExportServiceFormats(t *testing.T) {
	svc, _ := newExportFixture(t)
	ctx := context.Background()

	pdf, err := svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatPDF, Target: models.ExportTargetTeacher, Name: "Ahmed"})
	require.NoError(t, err)
	assert.Equal(t, "emploi-temps-professeur-ahmed.pdf", pdf.Filename)
	assert.Equal(t, ContentTypePDF, pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))

	csv, err := svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatCSV, Target: models.ExportTargetSubgroup, Name: "3APIC-5"})
	require.NoError(t, err)
	assert.Equal(t, "emploi-temps-classe-3apic-5.csv", csv.Filename)
	body := string(csv.Body)
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBFJour,"))
	assert.Contains(t, body, "Math")

	xlsx, err := svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatXLSX, Target: models.ExportTargetRoom, Name: "Labo"})
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(xlsx.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Emploi du temps")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Contains(t, rows[0][0], "Labo")

	ics, err := svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatICS, Target: models.ExportTargetTeacher, Name: "Sara"})
	require.NoError(t, err)
	assert.Equal(t, ContentTypeICS, ics.ContentType)
	cal := string(ics.Body)
	assert.Equal(t, 1, strings.Count(cal, "BEGIN:VEVENT"))
	assert.Contains(t, cal, "SUMMARY:SVT")
	assert.Contains(t, cal, "RRULE:FREQ=WEEKLY")
	assert.Contains(t, cal, "20240903T")
}

const accentedTeachersFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Teachers_Timetable>
  <Teacher name="Hélène">
    <Day name="Lundi_m">
      <Hour name="H1"><Activity id="7"/><Subject name="Français"/><Students name="1ère-A"/><Room name="Salle d'étude"/></Hour>
      <Hour name="H2"></Hour>
      <Hour name="H3"></Hour>
    </Day>
  </Teacher>
</Teachers_Timetable>`

func TestExportServiceTeacherWithAccentsAndFreeHours(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	ctx := context.Background()
	_, err := f.svc.Upload(ctx, "s1", map[importer.Document][]byte{importer.DocumentTeachers: []byte(accentedTeachersFixture)})
	require.NoError(t, err)
	require.Len(t, f.svc.TeacherView(ctx, "s1", "Hélène"), 2, "free hours merge into one empty slot")

	svc := NewExportService(f.svc, nil, nil, nil, nil, NewMetricsService(), nil)

	var pdf *Rendered
	require.NotPanics(t, func() {
		pdf, err = svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatPDF, Target: models.ExportTargetTeacher, Name: "Hélène"})
	})
	require.NoError(t, err)
	assert.Equal(t, "emploi-temps-professeur-helene.pdf", pdf.Filename)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))

	csv, err := svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatCSV, Target: models.ExportTargetTeacher, Name: "Hélène"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv.Body)), "\n")
	assert.Len(t, lines, 2, "free hours are left out of documents")
	assert.Contains(t, lines[1], "Français")
}

func TestLessonsDropsFreeHours(t *testing.T) {
	slots := []models.DerivedSlot{
		{Day: "Lundi", HourID: "H1", Subject: "Math"},
		{Day: "Lundi", HourID: "H2-H3", Teacher: "Ahmed"},
		{Day: "Mardi", HourID: "H1", Room: "101"},
	}
	got := lessons(slots)
	require.Len(t, got, 2)
	assert.Equal(t, "H1", got[0].HourID)
	assert.Equal(t, "101", got[1].Room)
}

func TestExportServiceVacantRooms(t *testing.T) {
	svc, _ := newExportFixture(t)
	ctx := context.Background()

	out, err := svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatCSV, Target: models.ExportTargetVacantRooms})
	require.NoError(t, err)
	assert.Equal(t, "salles-vacantes.csv", out.Filename)
	assert.Contains(t, string(out.Body), "\"102, Labo\"")

	pdf, err := svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatPDF, Target: models.ExportTargetVacantRooms})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))

	_, err = svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatICS, Target: models.ExportTargetVacantRooms})
	assert.True(t, errors.Is(err, appErrors.ErrUnsupported))
}

func TestExportServiceRejectsBadRequests(t *testing.T) {
	svc, _ := newExportFixture(t)
	ctx := context.Background()

	_, err := svc.Export(ctx, "s1", ExportRequest{Format: "docx", Target: models.ExportTargetTeacher, Name: "Ahmed"})
	assert.True(t, errors.Is(err, appErrors.ErrUnsupported))

	_, err = svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatPDF, Target: models.ExportTargetTeacher, Name: " "})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Export(ctx, "s1", ExportRequest{Format: models.ExportFormatPDF, Target: models.ExportTargetTeacher, Name: "Nobody"})
	assert.True(t, errors.Is(err, appErrors.ErrNoData))

	_, err = svc.Export(ctx, "empty", ExportRequest{Format: models.ExportFormatCSV, Target: models.ExportTargetVacantRooms})
	assert.True(t, errors.Is(err, appErrors.ErrNoData))
}

func TestVacantDatasetGroupsByTimeslot(t *testing.T) {
	data := vacantDataset([]models.DerivedSlot{
		{Day: "Lundi", Timeslot: "08:30 - 09:30", Subgroup: "101"},
		{Day: "Lundi", Timeslot: "08:30 - 09:30", Subgroup: "Labo"},
		{Day: "Mardi", Timeslot: "08:30 - 09:30", Subgroup: "102"},
	})
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "101, Labo", data.Rows[0]["Salles libres"])
	assert.Equal(t, "Mardi", data.Rows[1]["Jour"])
}

func TestTeacherGridFooterListsClasses(t *testing.T) {
	grid := slotGrid(models.ExportTargetTeacher, "t", []models.DerivedSlot{
		{Day: "Lundi", Timeslot: "08:30 - 09:30", Subject: "Math", Subgroup: "3APIC-5", Room: "101"},
		{Day: "Mardi", Timeslot: "08:30 - 09:30", Subject: "Math", Subgroup: "2BAC-1"},
		{Day: "Jeudi", Timeslot: "08:30 - 09:30", Subject: "Math", Subgroup: "3APIC-5"},
	})
	assert.Equal(t, []string{"Math", "Groupe : 3APIC-5", "Salle : 101"}, grid.Cells[0].Lines)
	assert.True(t, strings.HasPrefix(grid.Footer, "Classes enseignées : 3APIC-5, 2BAC-1"))
	assert.Contains(t, grid.Footer, "Signature")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "eric-dupont", slugify("Éric  Dupont"))
	assert.Equal(t, "3apic-5-g1", slugify("3APIC-5:G1"))
	assert.Equal(t, "sans-nom", slugify("***"))
	assert.Len(t, slugify(strings.Repeat("a", 200)), 80)
}

func TestUniqueName(t *testing.T) {
	used := map[string]int{}
	assert.Equal(t, "a.pdf", uniqueName(used, "a.pdf"))
	assert.Equal(t, "a-2.pdf", uniqueName(used, "a.pdf"))
	assert.Equal(t, "b", uniqueName(used, "b"))
}
