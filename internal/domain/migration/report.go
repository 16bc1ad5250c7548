package migration

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WriteReportPDF renders the summary as a one-table PDF.
func WriteReportPDF(w io.Writer, summary Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Employee migration report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	if summary.BatchID != "" {
		pdf.Cell(0, 7, "Batch: "+summary.BatchID)
		pdf.Ln(6)
	}
	if !summary.StartedAt.IsZero() {
		pdf.Cell(0, 7, "Started: "+summary.StartedAt.Format("2006-01-02 15:04:05"))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Migrated: %d  Failed: %d", summary.MigratedCount, summary.FailedCount))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Result: "+summary.Message)
	pdf.Ln(10)

	widths := []float64{35, 50, 35, 20, 50}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Local id", "Name", "Server id", "Status", "Error"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range summary.Details {
		row := []string{d.EmployeeID.String(), d.Name, shorten(d.NewID, 18), d.Status, shorten(d.Error, 30)}
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
