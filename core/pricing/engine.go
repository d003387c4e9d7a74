// Package pricing computes the import-cost pipeline.
//
// All functions are pure and operate on a snapshot of the ledger. Amounts are
// kept exact; rounding happens only when a figure is formatted for display.
package pricing

import (
	"github.com/shopspring/decimal"

	"import-cost/core/money"
	"import-cost/core/types"
	"import-cost/core/validation"
)

// Subtotal sums price x quantity over all entries and detects the currency
// symbol from the first non-empty price.
func Subtotal(entries []types.ProductEntry) (decimal.Decimal, string) {
	subtotal := decimal.Zero
	prices := make([]string, 0, len(entries))
	for _, e := range entries {
		subtotal = subtotal.Add(money.ParseAmount(e.Price).Mul(e.Quantity))
		prices = append(prices, e.Price)
	}
	return subtotal, money.DetectCurrency(prices)
}

// TotalUnits sums quantities as given
func TotalUnits(entries []types.ProductEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total
}

// Lines prices each entry individually
func Lines(entries []types.ProductEntry) []types.LineItem {
	lines := make([]types.LineItem, 0, len(entries))
	for i, e := range entries {
		unit := money.ParseAmount(e.Price)
		lines = append(lines, types.LineItem{
			ID:        e.ID,
			Position:  i + 1,
			PriceText: e.Price,
			UnitPrice: unit,
			Quantity:  e.Quantity,
			Weight:    e.Weight,
			LineTotal: unit.Mul(e.Quantity),
		})
	}
	return lines
}

// Convert expresses the result in the other currency. Product prices are
// multiplied by the rate; taxes and totals are divided by it.
func Convert(r *types.CalculationResult) types.DualCurrency {
	if !r.ExchangeRate.IsPositive() {
		return types.DualCurrency{
			Subtotal:           decimal.Zero,
			ImportTax:          decimal.Zero,
			ConsumptionTaxBase: decimal.Zero,
			ConsumptionTax:     decimal.Zero,
			GrandTotal:         decimal.Zero,
			AverageUnitCost:    decimal.Zero,
		}
	}
	rate := r.ExchangeRate
	total := r.GrandTotal.Div(rate)
	return types.DualCurrency{
		Subtotal:           r.Subtotal.Mul(rate),
		ImportTax:          r.ImportTax.Div(rate),
		ConsumptionTaxBase: r.ConsumptionBase.Div(rate),
		ConsumptionTax:     r.ConsumptionTax.Div(rate),
		GrandTotal:         total,
		AverageUnitCost:    AverageUnitCost(total, r.TotalUnits),
	}
}

// Calculate runs validation and the full pipeline. It fails only when the
// configured ICMS rate is out of range; flagged entries are still summed.
func Calculate(entries []types.ProductEntry, cfg types.Configuration) (*types.CalculationResult, error) {
	if err := validation.CheckConfiguration(cfg); err != nil {
		return nil, err
	}

	subtotal, symbol := Subtotal(entries)
	freight := Freight(TotalWeight(entries))
	convertedFreight, degraded := ConvertFreight(freight.Amount, cfg.ExchangeRate)

	icmsRate := cfg.EffectiveICMSRate()
	importTax := ImportTax(subtotal, convertedFreight)
	consumptionBase := ConsumptionTaxBase(subtotal, convertedFreight, importTax)
	consumptionTax := ConsumptionTax(subtotal, convertedFreight, importTax, icmsRate)
	grandTotal := subtotal.Add(convertedFreight).Add(importTax).Add(consumptionTax)
	units := TotalUnits(entries)

	exchangeRate := cfg.ExchangeRate
	if degraded {
		exchangeRate = decimal.Zero
	}

	result := &types.CalculationResult{
		Subtotal:         subtotal,
		Symbol:           symbol,
		Freight:          freight.Amount,
		ConvertedFreight: convertedFreight,
		ImportTaxBase:    subtotal.Add(convertedFreight),
		ImportTax:        importTax,
		ConsumptionBase:  consumptionBase,
		ConsumptionTax:   consumptionTax,
		GrandTotal:       grandTotal,
		TotalUnits:       units,
		AverageUnitCost:  AverageUnitCost(grandTotal, units),
		FreightBlocks:    freight.Blocks,
		TotalWeight:      freight.TotalWeight,
		ExchangeRate:     exchangeRate,
		ICMSRate:         icmsRate,
		Degraded:         degraded,
		Lines:            Lines(entries),
		Flags:            validation.FlagEntries(entries),
	}
	result.Converted = Convert(result)
	return result, nil
}
