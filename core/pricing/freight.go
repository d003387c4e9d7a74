package pricing

import (
	"github.com/shopspring/decimal"

	"import-cost/core/types"
)

// Freight tiers, in grams and source currency
var (
	FreightBlockGrams     = decimal.NewFromInt(100)
	FreightBaseRate       = decimal.NewFromInt(50)
	FreightBlockSurcharge = decimal.NewFromInt(11)
)

// TotalWeight sums entry weights as given, including non-positive ones
func TotalWeight(entries []types.ProductEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Weight)
	}
	return total
}

// FreightTiers is the per-block schedule: the first block at the base rate,
// every further block at the surcharge.
func FreightTiers() []Tier {
	return []Tier{
		{UpTo: decimal.NewFromInt(1), UnitRate: FreightBaseRate},
		{UnitRate: FreightBlockSurcharge},
	}
}

// Freight prices a shipment by started 100 g blocks
func Freight(totalWeight decimal.Decimal) types.FreightQuote {
	quote := types.FreightQuote{
		Amount:      decimal.Zero,
		TotalWeight: totalWeight,
	}
	if !totalWeight.IsPositive() {
		return quote
	}

	blocks := totalWeight.Div(FreightBlockGrams).Ceil()
	quote.Blocks = blocks.IntPart()
	quote.Amount = TieredCost(blocks, FreightTiers())
	return quote
}
