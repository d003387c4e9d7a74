package output

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"import-cost/internal/errors"
)

const (
	sheetSummary  = "Summary"
	sheetProducts = "Products"
	sheetTrace    = "Trace"
)

// XLSXFormatter exports the report as an Excel workbook with a summary
// sheet, a product sheet and the calculation trace.
type XLSXFormatter struct{}

// Format returns the format type
func (XLSXFormatter) Format() Format { return FormatXLSX }

// Render writes the workbook to w
func (XLSXFormatter) Render(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return errors.Internal("create summary sheet", err)
	}
	for _, name := range []string{sheetProducts, sheetTrace} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Internal("create sheet "+name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Internal("create style", err)
	}

	if err := writeSummarySheet(f, report, bold); err != nil {
		return err
	}
	if err := writeProductSheet(f, report, bold); err != nil {
		return err
	}
	if err := writeTraceSheet(f, report); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return errors.Internal("write workbook", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *Report, style int) error {
	r := report.Result
	p := report.Presenter
	rows := [][]interface{}{
		{"Item", "Amount", "Currency", "Converted", "Currency"},
		{"Subtotal", number(r.Subtotal), r.Symbol, number(r.Converted.Subtotal), p.Target},
		{"Freight", number(r.Freight), p.Source, number(r.ConvertedFreight), p.Target},
		{"Import tax base", number(r.ImportTaxBase), p.Target, "", ""},
		{"Import tax", number(r.ImportTax), p.Target, number(r.Converted.ImportTax), p.Source},
		{"ICMS base", number(r.ConsumptionBase), p.Target, number(r.Converted.ConsumptionTaxBase), p.Source},
		{"ICMS", number(r.ConsumptionTax), p.Target, number(r.Converted.ConsumptionTax), p.Source},
		{"Total", number(r.GrandTotal), p.Target, number(r.Converted.GrandTotal), p.Source},
		{"Average per unit", number(r.AverageUnitCost), p.Target, number(r.Converted.AverageUnitCost), p.Source},
		{},
		{"Exchange rate", r.ExchangeRate.String()},
		{"ICMS rate (%)", r.ICMSRate.String()},
		{"Units", r.TotalUnits.String()},
		{"Freight blocks", r.FreightBlocks},
		{"Degraded", r.Degraded},
		{"Session", report.Metadata.SessionID},
		{"Generated", report.Metadata.Timestamp},
	}
	if err := setRows(f, sheetSummary, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "E1", style); err != nil {
		return errors.Internal("style summary header", err)
	}
	return f.SetColWidth(sheetSummary, "A", "A", 20)
}

func writeProductSheet(f *excelize.File, report *Report, style int) error {
	rows := [][]interface{}{{"#", "Price", "Unit price", "Quantity", "Weight (g)", "Line total"}}
	for _, line := range report.Result.Lines {
		rows = append(rows, []interface{}{
			line.Position,
			line.PriceText,
			number(line.UnitPrice),
			number(line.Quantity),
			number(line.Weight),
			number(line.LineTotal),
		})
	}
	for _, flag := range report.Result.Flags {
		rows = append(rows, []interface{}{"", "product", flag.ProductID, string(flag.Field), flag.Reason})
	}
	if err := setRows(f, sheetProducts, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetProducts, "A1", "F1", style); err != nil {
		return errors.Internal("style product header", err)
	}
	return nil
}

func writeTraceSheet(f *excelize.File, report *Report) error {
	var rows [][]interface{}
	for _, line := range splitLines(report.Trace) {
		rows = append(rows, []interface{}{line})
	}
	if err := setRows(f, sheetTrace, rows); err != nil {
		return err
	}
	return f.SetColWidth(sheetTrace, "A", "A", 80)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Internal("cell name", err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Internal("write row to "+sheet, err)
		}
	}
	return nil
}

// number rounds to cents for spreadsheet cells; full precision stays in JSON.
func number(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
