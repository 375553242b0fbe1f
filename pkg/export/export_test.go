package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Jour", "Horaire", "Matière"},
		Rows: []map[string]string{
			{"Jour": "Lundi", "Horaire": "08:30 - 09:30", "Matière": "Maths"},
			{"Jour": "Mardi", "Horaire": "14:30 - 15:30", "Matière": "Français, option"},
		},
	}
}

func TestCSVExporterWritesBOMAndQuotes(t *testing.T) {
	out, err := NewCSVExporter(true).Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))

	body := string(out[len(utf8BOM):])
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Jour,Horaire,Matière", lines[0])
	assert.Equal(t, `Mardi,14:30 - 15:30,"Français, option"`, lines[2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter(false).Render(Dataset{})
	assert.Error(t, err)
}

func TestGridRowsOrdersByStart(t *testing.T) {
	grid := Grid{
		Timeslots: []string{"14:30 - 15:30", "08:30 - 09:30"},
		Cells: []Cell{
			{Day: "Lundi", Timeslot: "08:30 - 10:30", Lines: []string{"Maths"}},
			{Day: "Lundi", Timeslot: "08:30 - 09:30", Lines: []string{"SVT", " ", "A1"}},
			{Day: "Lundi", Timeslot: "08:30 - 09:30", Lines: []string{"EPS"}},
		},
	}
	assert.Equal(t, []string{"08:30 - 09:30", "08:30 - 10:30", "14:30 - 15:30"}, grid.Rows())
	assert.Equal(t, "SVT\nA1\n\nEPS", grid.Content("Lundi", "08:30 - 09:30"))
	assert.Empty(t, grid.Content("Mardi", "08:30 - 09:30"))
}

func TestPDFExporterRenderGrid(t *testing.T) {
	grid := Grid{
		Title:     "Emploi du temps - Dupont",
		Days:      []string{"Lundi", "Mardi"},
		Timeslots: []string{"08:30 - 09:30", "09:30 - 10:30"},
		Cells: []Cell{
			{Day: "Lundi", Timeslot: "08:30 - 09:30", Lines: []string{"Mathématiques", "1A", "Salle 3"}},
		},
		Footer: "Classes : 1A",
	}
	out, err := NewPDFExporter("", []string{"Lycée Exemple"}).RenderGrid(grid)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterCoreFontWrapsAccentedCells(t *testing.T) {
	long := strings.Repeat("Éducation physique et sportive ", 6)
	grid := Grid{
		Title:     "Emploi du temps - Hélène Françoise",
		Days:      []string{"Lundi", "Mercredi", "Samedi"},
		Timeslots: []string{"08:30 - 09:30"},
		Cells: []Cell{
			{Day: "Lundi", Timeslot: "08:30 - 09:30", Lines: []string{"Français", "3APIC-5:G1", "Salle d'étude"}},
			{Day: "Mercredi", Timeslot: "08:30 - 09:30", Lines: []string{long}},
		},
		Footer: "Classes : 1ère, Terminale €",
	}
	exporter := NewPDFExporter("", []string{"Lycée Ibn Khaldoun"})

	var out []byte
	var err error
	require.NotPanics(t, func() { out, err = exporter.RenderGrid(grid) })
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	table := Dataset{
		Headers: []string{"Jour", "Horaire", "Salles libres"},
		Rows:    []map[string]string{{"Jour": "Été", "Horaire": "10:30 - 11:30", "Salles libres": long}},
	}
	require.NotPanics(t, func() { out, err = exporter.Render(table, "Salles vacantes - été") })
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRenderGridPaginates(t *testing.T) {
	grid := Grid{Days: []string{"Lundi"}}
	for i := 0; i < 60; i++ {
		slot := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC).Add(time.Duration(i) * 10 * time.Minute).Format("15:04") + " - 23:00"
		grid.Cells = append(grid.Cells, Cell{Day: "Lundi", Timeslot: slot, Lines: []string{"a", "b", "c"}})
	}
	out, err := NewPDFExporter("", nil).RenderGrid(grid)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRejectsMissingFont(t *testing.T) {
	_, err := NewPDFExporter("/nonexistent/font.ttf", nil).RenderGrid(Grid{Days: []string{"Lundi"}})
	assert.Error(t, err)
}

func TestPDFExporterRenderTable(t *testing.T) {
	out, err := NewPDFExporter("", nil).Render(sampleDataset(), "Salles libres")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter("", nil).Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Dupont")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Emploi du temps")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Dupont", rows[0][0])
	assert.Equal(t, []string{"Jour", "Horaire", "Matière"}, rows[1])
	assert.Equal(t, "Maths", rows[2][2])
}

func TestICSExporterRender(t *testing.T) {
	exporter := NewICSExporter()
	exporter.now = func() time.Time { return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC) }
	start := time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)

	out, err := exporter.Render(Calendar{
		Name: "Dupont",
		Events: []Event{{
			UID:      "lundi-h1@timetable",
			Summary:  "Maths",
			Location: "Salle 3",
			Start:    start,
			End:      start.Add(time.Hour),
		}},
	})
	require.NoError(t, err)
	body := string(out)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Maths")
	assert.Contains(t, body, "LOCATION:Salle 3")
	assert.Contains(t, body, "RRULE:FREQ=WEEKLY")
	assert.Contains(t, body, "X-WR-CALNAME:Dupont")
}

func TestICSExporterRejectsInvertedEvent(t *testing.T) {
	start := time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)
	_, err := NewICSExporter().Render(Calendar{Events: []Event{{UID: "x", Start: start, End: start}}})
	assert.Error(t, err)
}
