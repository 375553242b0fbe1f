package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin  = 10.0
	lineHeight  = 4.5
	minRowLines = 2
	timeColumn  = 37.0
	fontFamily  = "body"
)

// PDFExporter renders timetable grids and plain tables on A4 landscape pages.
type PDFExporter struct {
	fontPath string
	header   []string
}

// NewPDFExporter constructs a PDF exporter. fontPath optionally names a TTF
// file embedded for non Latin-1 text; header lines are printed centred above
// every document title.
func NewPDFExporter(fontPath string, header []string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath, header: header}
}

type pdfDoc struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
	split  func(string, float64) []string
}

func (e *PDFExporter) newDoc() (*pdfDoc, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)

	doc := &pdfDoc{pdf: pdf, family: "Arial"}
	if e.fontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", e.fontPath)
		pdf.AddUTF8Font(fontFamily, "B", e.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font %s: %w", e.fontPath, err)
		}
		doc.family = fontFamily
		doc.tr = func(s string) string { return s }
		doc.split = pdf.SplitText
	} else {
		// Core fonts measure cp1252 bytes; SplitText would decode them as runes.
		doc.tr = pdf.UnicodeTranslatorFromDescriptor("")
		doc.split = func(s string, w float64) []string {
			var lines []string
			for _, line := range pdf.SplitLines([]byte(s), w) {
				lines = append(lines, string(line))
			}
			return lines
		}
	}
	return doc, nil
}

func (d *pdfDoc) heading(header []string, title string) {
	d.pdf.AddPage()
	if len(header) > 0 {
		d.pdf.SetFont(d.family, "B", 10)
		for _, line := range header {
			d.pdf.CellFormat(0, 5, d.tr(line), "", 1, "C", false, 0, "")
		}
		d.pdf.Ln(2)
	}
	if title != "" {
		d.pdf.SetFont(d.family, "B", 14)
		d.pdf.CellFormat(0, 9, d.tr(title), "", 1, "C", false, 0, "")
		d.pdf.Ln(3)
	}
}

// row draws one table row and returns false when it does not fit the page.
func (d *pdfDoc) row(widths []float64, values []string, bold, fill bool, minLines int) bool {
	style, size := "", 8.0
	if bold {
		style, size = "B", 9
	}
	d.pdf.SetFont(d.family, style, size)

	lines := minLines
	split := make([][]string, len(values))
	for i, value := range values {
		var parts []string
		for _, para := range strings.Split(d.tr(value), "\n") {
			parts = append(parts, d.split(para, widths[i]-2)...)
		}
		split[i] = parts
		if len(parts) > lines {
			lines = len(parts)
		}
	}
	height := float64(lines)*lineHeight + 2

	_, pageHeight := d.pdf.GetPageSize()
	x, y := d.pdf.GetXY()
	if y+height > pageHeight-pageMargin {
		return false
	}

	d.pdf.SetFillColor(220, 220, 220)
	for i, parts := range split {
		rectStyle := "D"
		if fill || i == 0 {
			rectStyle = "FD"
		}
		d.pdf.Rect(x, y, widths[i], height, rectStyle)
		textTop := y + (height-float64(len(parts))*lineHeight)/2
		for j, part := range parts {
			d.pdf.SetXY(x, textTop+float64(j)*lineHeight)
			d.pdf.CellFormat(widths[i], lineHeight, part, "", 0, "C", false, 0, "")
		}
		x += widths[i]
	}
	d.pdf.SetXY(pageMargin, y+height)
	return true
}

func (d *pdfDoc) bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := d.pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderGrid draws a week grid: one column per day, one row per timeslot.
func (e *PDFExporter) RenderGrid(grid Grid) ([]byte, error) {
	if len(grid.Days) == 0 {
		return nil, fmt.Errorf("pdf grid requires at least one day")
	}
	doc, err := e.newDoc()
	if err != nil {
		return nil, err
	}

	pageWidth, _ := doc.pdf.GetPageSize()
	dayWidth := (pageWidth - 2*pageMargin - timeColumn) / float64(len(grid.Days))
	widths := []float64{timeColumn}
	for range grid.Days {
		widths = append(widths, dayWidth)
	}
	headerRow := append([]string{"Horaire"}, grid.Days...)

	doc.heading(e.header, grid.Title)
	doc.row(widths, headerRow, true, true, 1)
	for _, slot := range grid.Rows() {
		values := []string{slot}
		for _, day := range grid.Days {
			values = append(values, grid.Content(day, slot))
		}
		if !doc.row(widths, values, false, false, minRowLines) {
			doc.heading(nil, grid.Title)
			doc.row(widths, headerRow, true, true, 1)
			doc.row(widths, values, false, false, minRowLines)
		}
	}

	if grid.Footer != "" {
		doc.pdf.Ln(4)
		doc.pdf.SetFont(doc.family, "", 9)
		doc.pdf.MultiCell(0, 5, doc.tr(grid.Footer), "", "L", false)
	}
	return doc.bytes()
}

// Render draws a plain table with an optional title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	doc, err := e.newDoc()
	if err != nil {
		return nil, err
	}

	pageWidth, _ := doc.pdf.GetPageSize()
	widths := tableWidths(pageWidth-2*pageMargin, len(data.Headers))

	doc.heading(e.header, title)
	doc.row(widths, data.Headers, true, true, 1)
	for _, record := range data.Rows {
		values := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			values[i] = record[header]
		}
		if !doc.row(widths, values, false, false, 1) {
			doc.heading(nil, title)
			doc.row(widths, data.Headers, true, true, 1)
			doc.row(widths, values, false, false, 1)
		}
	}
	return doc.bytes()
}

// tableWidths gives the last column, usually the longest text, half the page.
func tableWidths(total float64, columns int) []float64 {
	widths := make([]float64, columns)
	if columns == 1 {
		widths[0] = total
		return widths
	}
	last := total / 2
	rest := (total - last) / float64(columns-1)
	for i := range widths {
		widths[i] = rest
	}
	widths[columns-1] = last
	return widths
}
