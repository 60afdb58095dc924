// Package report renders markdown health logs into standalone HTML and PDF
// documents.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/nbowman189/vitruvian/utils"
)

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, Helvetica, Arial, sans-serif; max-width: 760px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1, h2, h3 { color: #1a3c5e; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.7rem; text-align: left; }
th { background: #eef3f8; }
tr:nth-child(even) { background: #f7fafc; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// RenderHTML converts markdown into a standalone styled HTML page.
func RenderHTML(title string, source []byte) ([]byte, error) {
	body, err := utils.RenderMarkdown(source)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = htmlPage.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("html template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF converts markdown into a PDF. Headings and pipe tables get
// dedicated layout; everything else flows as body text.
func RenderPDF(title string, source []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	lines := strings.Split(string(source), "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			pdf.Ln(2)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			size := 16.0 - 2.0*float64(level-1)
			if size < 11 {
				size = 11
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, strings.TrimSpace(strings.TrimLeft(trimmed, "#")), "", 1, "L", false, 0, "")
			pdf.Ln(1)
		case strings.HasPrefix(trimmed, "|"):
			// Consume the whole table block.
			var rows [][]string
			for ; i < len(lines); i++ {
				row := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(row, "|") {
					i--
					break
				}
				cells := splitTableRow(row)
				if isSeparatorRow(cells) {
					continue
				}
				rows = append(rows, cells)
			}
			writeTable(pdf, rows)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, trimmed, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(pdf *fpdf.Fpdf, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	cols := len(rows[0])
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(cols)

	for r, row := range rows {
		if r == 0 {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetFillColor(238, 243, 248)
		} else {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetFillColor(255, 255, 255)
		}
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func splitTableRow(row string) []string {
	parts := strings.Split(strings.Trim(row, "|"), "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}
