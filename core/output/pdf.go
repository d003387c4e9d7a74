package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"import-cost/internal/errors"
)

// PDFFormatter renders a printable A4 quote
type PDFFormatter struct{}

// Format returns the format type
func (PDFFormatter) Format() Format { return FormatPDF }

// Render writes the PDF document to w
func (PDFFormatter) Render(w io.Writer, report *Report) error {
	r := report.Result
	p := report.Presenter

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(30, 64, 175)
	pdf.Cell(190, 12, "Import Cost Estimate")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(75, 85, 99)
	stamp := report.Metadata.Timestamp
	if stamp == "" {
		stamp = time.Now().Format(time.RFC3339)
	}
	pdf.Cell(190, 6, fmt.Sprintf("Generated: %s", stamp))
	pdf.Ln(6)
	if report.Metadata.SessionID != "" {
		pdf.Cell(190, 6, fmt.Sprintf("Session: %s", report.Metadata.SessionID))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Products table
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(51, 51, 51)
	pdf.SetFillColor(240, 240, 240)
	headers := []string{"#", "Price", "Qty", "Weight", "Line total"}
	widths := []float64{12, 60, 25, 35, 58}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, line := range r.Lines {
		cells := []string{
			fmt.Sprintf("%d", line.Position),
			line.PriceText,
			line.Quantity.String(),
			line.Weight.String() + "g",
			FormatMoney(line.LineTotal, r.Symbol),
		}
		for i, c := range cells {
			align := "L"
			if i > 1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	// Headline
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(190, 8, tr("Total: "+FormatMoney(r.GrandTotal, p.Target)))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	if !r.Degraded {
		pdf.Cell(190, 7, tr("Converted: "+FormatMoney(r.Converted.GrandTotal, p.Source)))
		pdf.Ln(7)
	}
	pdf.Cell(190, 7, tr("Per unit: "+FormatMoney(r.AverageUnitCost, p.Target)))
	pdf.Ln(10)

	// Trace
	pdf.SetFont("Courier", "", 9)
	for _, line := range splitLines(report.Trace) {
		pdf.Cell(190, 4.5, tr(pdfSafe(line)))
		pdf.Ln(4.5)
	}

	if err := pdf.Output(w); err != nil {
		return errors.Internal("render pdf", err)
	}
	return nil
}

// pdfSafe replaces glyphs that the core fonts cannot encode
func pdfSafe(s string) string {
	return strings.NewReplacer("⚠", "!", "═", "=").Replace(s)
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
