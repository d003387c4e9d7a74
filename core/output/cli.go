package output

import (
	"io"
	"strconv"

	"import-cost/core/ui"
)

// CLIFormatter renders a colored terminal report
type CLIFormatter struct {
	NoColor     bool
	ShowDetails bool
}

// NewCLIFormatter creates a CLI formatter that includes the trace
func NewCLIFormatter(noColor bool) *CLIFormatter {
	return &CLIFormatter{NoColor: noColor, ShowDetails: true}
}

// Format returns the format type
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render prints the product table, the figures and optionally the trace
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	r := report.Result
	p := report.Presenter
	out := ui.NewWriter(w, f.NoColor)

	if report.Metadata.Stale {
		out.Warning("Last edit was rejected; showing the previous result")
	}

	out.Header("Products")
	table := out.NewTable("#", "Price", "Qty", "Weight", "Line total")
	for _, line := range r.Lines {
		table.AddRow(
			strconv.Itoa(line.Position),
			line.PriceText,
			line.Quantity.String(),
			line.Weight.String()+"g",
			FormatMoney(line.LineTotal, r.Symbol),
		)
	}
	table.Render()

	out.Header("Breakdown")
	figures := out.NewTable("Item", p.Target, p.Source)
	other := func(s string) string {
		if r.Degraded {
			return "-"
		}
		return s
	}
	figures.AddRow("Subtotal", other(FormatMoney(r.Converted.Subtotal, p.Target)), FormatMoney(r.Subtotal, r.Symbol))
	figures.AddRow("Freight", other(FormatMoney(r.ConvertedFreight, p.Target)), FormatMoney(r.Freight, p.Source))
	figures.AddRow("Import tax", FormatMoney(r.ImportTax, p.Target), other(FormatMoney(r.Converted.ImportTax, p.Source)))
	figures.AddRow("ICMS "+r.ICMSRate.String()+"%", FormatMoney(r.ConsumptionTax, p.Target), other(FormatMoney(r.Converted.ConsumptionTax, p.Source)))
	figures.AddRow("Total", FormatMoney(r.GrandTotal, p.Target), other(FormatMoney(r.Converted.GrandTotal, p.Source)))
	figures.Render()

	for _, flag := range r.Flags {
		out.Warning("product %d: %s", flag.ProductID, flag.Reason)
	}

	summary := out.NewQuoteSummary()
	summary.Total = FormatMoney(r.GrandTotal, p.Target)
	summary.TotalOther = FormatMoney(r.Converted.GrandTotal, p.Source)
	summary.UnitCost = FormatMoney(r.AverageUnitCost, p.Target)
	summary.Units = r.TotalUnits.String()
	summary.Products = len(r.Lines)
	summary.Flagged = len(r.Flags)
	summary.Degraded = r.Degraded
	summary.Render()

	if f.ShowDetails {
		out.Header("Details")
		out.Raw(report.Trace + "\n")
	}
	return nil
}

// TextFormatter writes only the calculation trace
type TextFormatter struct{}

// Format returns the format type
func (TextFormatter) Format() Format { return FormatText }

// Render writes the trace followed by a newline
func (TextFormatter) Render(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, report.Trace+"\n")
	return err
}
