package app

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/pagelens/internal/fragment"
)

// writeReportPDF renders the analysis result as a minimal PDF: page title,
// summary paragraph, and the numbered key points with their kind and
// importance. Layout is intentionally simple.
func writeReportPDF(res fragment.AnalysisResult, title, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	if strings.TrimSpace(title) == "" {
		title = "Page analysis"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(0, 8, title, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5, res.Summary, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Key points", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, kp := range res.KeyPoints {
		line := fmt.Sprintf("%d. [%s] %s", kp.Index+1, kp.Kind, kp.Text)
		pdf.MultiCell(0, 5, line, "", "L", false)
		pdf.Ln(1)
	}

	return pdf.OutputFileAndClose(outPath)
}
