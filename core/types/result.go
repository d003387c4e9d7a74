package types

import "github.com/shopspring/decimal"

// LineItem is the priced view of a single ProductEntry
type LineItem struct {
	ID        int             `json:"id"`
	Position  int             `json:"position"`
	PriceText string          `json:"price_text"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Weight    decimal.Decimal `json:"weight"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Flag marks an entry field that failed soft validation
type Flag struct {
	ProductID int    `json:"product_id"`
	Field     Field  `json:"field"`
	Reason    string `json:"reason"`
}

// FreightQuote is the outcome of the tiered freight calculation
type FreightQuote struct {
	// Amount is expressed in source currency
	Amount decimal.Decimal `json:"amount"`

	// Blocks is the number of 100 g tiers charged
	Blocks int64 `json:"blocks"`

	// TotalWeight is the summed weight in grams
	TotalWeight decimal.Decimal `json:"total_weight"`
}

// DualCurrency expresses results in the other currency.
// Every field is zero when the exchange rate is unknown.
type DualCurrency struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	ImportTax          decimal.Decimal `json:"import_tax"`
	ConsumptionTaxBase decimal.Decimal `json:"consumption_tax_base"`
	ConsumptionTax     decimal.Decimal `json:"consumption_tax"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	AverageUnitCost    decimal.Decimal `json:"average_unit_cost"`
}

// CalculationResult is recomputed on every pass and never stored.
// GrandTotal always equals Subtotal + ConvertedFreight + ImportTax + ConsumptionTax.
type CalculationResult struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	Symbol           string          `json:"symbol"`
	Freight          decimal.Decimal `json:"freight"`
	ConvertedFreight decimal.Decimal `json:"converted_freight"`
	ImportTaxBase    decimal.Decimal `json:"import_tax_base"`
	ImportTax        decimal.Decimal `json:"import_tax"`
	ConsumptionBase  decimal.Decimal `json:"consumption_tax_base"`
	ConsumptionTax   decimal.Decimal `json:"consumption_tax"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	TotalUnits       decimal.Decimal `json:"total_units"`
	AverageUnitCost  decimal.Decimal `json:"average_unit_cost"`
	FreightBlocks    int64           `json:"freight_blocks"`
	TotalWeight      decimal.Decimal `json:"total_weight"`

	// ExchangeRate and ICMSRate are the rates actually applied
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	ICMSRate     decimal.Decimal `json:"icms_rate"`

	// Degraded is set when no usable exchange rate was available
	Degraded bool `json:"degraded"`

	// Converted holds the figures in the other currency
	Converted DualCurrency `json:"converted"`

	Lines []LineItem `json:"lines"`
	Flags []Flag     `json:"flags,omitempty"`
}

// HasFlags reports whether any entry failed soft validation
func (r *CalculationResult) HasFlags() bool {
	return len(r.Flags) > 0
}
