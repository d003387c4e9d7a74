package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"import-cost/core/pricing"
	"import-cost/core/types"
)

// Trace renders the plain-text audit trail of a calculation. Sections always
// appear in the same order; converted figures are included only when an
// exchange rate was applied.
func (p Presenter) Trace(r *types.CalculationResult) string {
	var sb strings.Builder
	converted := !r.Degraded

	sb.WriteString("CALCULATION BREAKDOWN\n")
	sb.WriteString("================================\n\n")

	sb.WriteString("1. PRODUCTS:\n")
	for _, line := range r.Lines {
		fmt.Fprintf(&sb, "   Product %d: %s × %s = %s\n",
			line.Position, line.PriceText, line.Quantity, FormatMoney(line.LineTotal, r.Symbol))
	}
	fmt.Fprintf(&sb, "   Subtotal: %s", FormatMoney(r.Subtotal, r.Symbol))
	if converted {
		fmt.Fprintf(&sb, " = %s", FormatMoney(r.Converted.Subtotal, p.Target))
	}
	sb.WriteString("\n\n")

	sb.WriteString("2. FREIGHT:\n")
	fmt.Fprintf(&sb, "   Total weight: %sg\n", r.TotalWeight)
	fmt.Fprintf(&sb, "   100g blocks: %d\n", r.FreightBlocks)
	if r.FreightBlocks <= 1 {
		fmt.Fprintf(&sb, "   Formula: first 100g = %s\n", FormatMoney(pricing.FreightBaseRate, p.Source))
	} else {
		fmt.Fprintf(&sb, "   Formula: %s + (%d × %s) = %s\n",
			FormatMoney(pricing.FreightBaseRate, p.Source),
			r.FreightBlocks-1,
			FormatMoney(pricing.FreightBlockSurcharge, p.Source),
			FormatMoney(r.Freight, p.Source))
	}
	fmt.Fprintf(&sb, "   Freight: %s\n", FormatMoney(r.Freight, p.Source))
	if converted {
		fmt.Fprintf(&sb, "   Exchange rate: %s\n", r.ExchangeRate)
		fmt.Fprintf(&sb, "   Converted freight: %s × %s = %s\n\n",
			FormatMoney(r.Freight, p.Source), r.ExchangeRate, FormatMoney(r.ConvertedFreight, p.Target))
	} else {
		sb.WriteString("   ⚠ Exchange rate not provided\n\n")
	}

	fmt.Fprintf(&sb, "3. IMPORT TAX (%s%%):\n", percent(pricing.ImportTaxRate))
	fmt.Fprintf(&sb, "   Base: %s + %s = %s\n",
		FormatMoney(r.Subtotal, r.Symbol),
		FormatMoney(r.ConvertedFreight, p.Target),
		FormatMoney(r.ImportTaxBase, p.Target))
	fmt.Fprintf(&sb, "   Import tax: %s × %s%% = %s",
		FormatMoney(r.ImportTaxBase, p.Target), percent(pricing.ImportTaxRate), FormatMoney(r.ImportTax, p.Target))
	if converted {
		fmt.Fprintf(&sb, " = %s", FormatMoney(r.Converted.ImportTax, p.Source))
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "4. ICMS (%s%%):\n", r.ICMSRate)
	fmt.Fprintf(&sb, "   Base: %s", FormatMoney(r.ConsumptionBase, p.Target))
	if converted {
		fmt.Fprintf(&sb, " = %s", FormatMoney(r.Converted.ConsumptionTaxBase, p.Source))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "   ICMS: %s × %s%% = %s",
		FormatMoney(r.ConsumptionBase, p.Target), r.ICMSRate, FormatMoney(r.ConsumptionTax, p.Target))
	if converted {
		fmt.Fprintf(&sb, " = %s", FormatMoney(r.Converted.ConsumptionTax, p.Source))
	}
	sb.WriteString("\n\n")

	sb.WriteString("5. TOTAL:\n")
	fmt.Fprintf(&sb, "   Total in %s: %s", p.Target, FormatMoney(r.GrandTotal, p.Target))
	if converted {
		fmt.Fprintf(&sb, "\n   Total in %s: %s", p.Source, FormatMoney(r.Converted.GrandTotal, p.Source))
	}
	sb.WriteString("\n\n")

	sb.WriteString("6. UNIT COST:\n")
	fmt.Fprintf(&sb, "   Average in %s: %s per unit", p.Target, FormatMoney(r.AverageUnitCost, p.Target))
	if converted {
		fmt.Fprintf(&sb, "\n   Average in %s: %s per unit", p.Source, FormatMoney(r.Converted.AverageUnitCost, p.Source))
	}

	return sb.String()
}

func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}
