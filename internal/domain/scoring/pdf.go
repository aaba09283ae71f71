package scoring

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfNameWidth  = 60.0
	pdfTotalWidth = 32.0
	pdfRowHeight  = 7.0
)

// core fonts are cp1252; Σ has no glyph there.
var pdfText = strings.NewReplacer("Σ", "Sum")

// RenderPDF writes the consolidated report as a landscape A4 table.
func RenderPDF(w io.Writer, periodName string, c Consolidated) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Consolidated appraisal report", true)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right
	colWidth := 25.0
	if len(c.Columns) > 0 {
		colWidth = (usable - pdfNameWidth - pdfTotalWidth) / float64(len(c.Columns))
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(pdfNameWidth, pdfRowHeight, "Employee", "1", 0, "L", true, 0, "")
		for _, col := range c.Columns {
			pdf.CellFormat(colWidth, pdfRowHeight, tr(truncate(col.Name, 24)), "1", 0, "C", true, 0, "")
		}
		pdf.CellFormat(pdfTotalWidth, pdfRowHeight, "Total", "1", 1, "C", true, 0, "")
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, "Consolidated appraisal report", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Period: %s    Method: %s", periodName, c.Label)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	if len(c.Rows) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, pdfRowHeight, "No appraisals recorded for this selection.", "", 1, "L", false, 0, "")
	}
	for _, row := range c.Rows {
		pdf.SetFont("Helvetica", "", 8)
		name := row.Employee.Name
		if row.Employee.Code > 0 {
			name = fmt.Sprintf("%s (%d)", name, row.Employee.Code)
		}
		pdf.CellFormat(pdfNameWidth, pdfRowHeight, tr(truncate(name, 36)), "1", 0, "L", false, 0, "")
		for _, cell := range row.Cells {
			pdf.CellFormat(colWidth, pdfRowHeight, tr(cellText(cell)), "1", 0, "C", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(pdfTotalWidth, pdfRowHeight, tr(cellText(row.Total)), "1", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func cellText(c Cell) string {
	if c.Text == "" {
		return "-"
	}
	if c.Subtext == "" {
		return c.Text
	}
	return pdfText.Replace(c.Text + " (" + c.Subtext + ")")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
