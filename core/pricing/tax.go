package pricing

import (
	"github.com/shopspring/decimal"
)

// ImportTaxRate is the fixed import levy
var ImportTaxRate = decimal.RequireFromString("0.60")

var hundred = decimal.NewFromInt(100)

// ConvertFreight converts freight with the exchange rate.
// A non-positive rate yields zero and reports degraded mode.
func ConvertFreight(freight, exchangeRate decimal.Decimal) (converted decimal.Decimal, degraded bool) {
	if !exchangeRate.IsPositive() {
		return decimal.Zero, true
	}
	return freight.Mul(exchangeRate), false
}

// ImportTax is levied on the subtotal plus converted freight
func ImportTax(subtotal, convertedFreight decimal.Decimal) decimal.Decimal {
	return ImportTaxRate.Mul(subtotal.Add(convertedFreight))
}

// ConsumptionTaxBase is the amount ICMS is charged on, import tax included
func ConsumptionTaxBase(subtotal, convertedFreight, importTax decimal.Decimal) decimal.Decimal {
	return subtotal.Add(convertedFreight).Add(importTax)
}

// ConsumptionTax applies a percentage rate to the consumption-tax base
func ConsumptionTax(subtotal, convertedFreight, importTax, icmsRate decimal.Decimal) decimal.Decimal {
	return icmsRate.Div(hundred).Mul(ConsumptionTaxBase(subtotal, convertedFreight, importTax))
}

// AverageUnitCost divides the total by the unit count, or returns zero
// when there are no positive units to divide by.
func AverageUnitCost(grandTotal, totalUnits decimal.Decimal) decimal.Decimal {
	if !totalUnits.IsPositive() {
		return decimal.Zero
	}
	return grandTotal.Div(totalUnits)
}
