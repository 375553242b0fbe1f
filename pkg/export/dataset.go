package export

import (
	"sort"
	"strings"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Cell is one lesson placed on a timetable grid.
type Cell struct {
	Day      string
	Timeslot string
	Lines    []string
}

// Grid is a week laid out as day columns by timeslot rows.
type Grid struct {
	Title     string
	Days      []string
	Timeslots []string
	Cells     []Cell
	Footer    string
}

// Rows returns the grid's timeslots in start-time order, including any
// timeslot only present in the cells.
func (g Grid) Rows() []string {
	seen := make(map[string]struct{}, len(g.Timeslots))
	rows := make([]string, 0, len(g.Timeslots))
	add := func(slot string) {
		slot = strings.TrimSpace(slot)
		if slot == "" {
			return
		}
		if _, ok := seen[slot]; ok {
			return
		}
		seen[slot] = struct{}{}
		rows = append(rows, slot)
	}
	for _, slot := range g.Timeslots {
		add(slot)
	}
	for _, cell := range g.Cells {
		add(cell.Timeslot)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := slotStart(rows[i]), slotStart(rows[j])
		if a != b {
			return a < b
		}
		return rows[i] < rows[j]
	})
	return rows
}

// Content joins every cell placed at (day, timeslot).
func (g Grid) Content(day, timeslot string) string {
	var blocks []string
	for _, cell := range g.Cells {
		if cell.Day != day || strings.TrimSpace(cell.Timeslot) != timeslot {
			continue
		}
		lines := make([]string, 0, len(cell.Lines))
		for _, line := range cell.Lines {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func slotStart(slot string) string {
	start, _, _ := strings.Cut(slot, " - ")
	return strings.TrimSpace(start)
}
