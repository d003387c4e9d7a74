package pricing

import "github.com/shopspring/decimal"

// Tier is one band of a tiered schedule. UpTo is the cumulative upper
// bound of the band; zero means unbounded.
type Tier struct {
	UpTo     decimal.Decimal
	UnitRate decimal.Decimal
}

// TieredCost computes the cost of quantity across tiers in order
func TieredCost(quantity decimal.Decimal, tiers []Tier) decimal.Decimal {
	if !quantity.IsPositive() || len(tiers) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	remaining := quantity
	previous := decimal.Zero

	for _, tier := range tiers {
		if !remaining.IsPositive() {
			break
		}
		if tier.UpTo.IsZero() {
			total = total.Add(remaining.Mul(tier.UnitRate))
			remaining = decimal.Zero
			break
		}
		used := decimal.Min(remaining, tier.UpTo.Sub(previous))
		total = total.Add(used.Mul(tier.UnitRate))
		remaining = remaining.Sub(used)
		previous = tier.UpTo
	}
	return total
}
