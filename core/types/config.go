package types

import "github.com/shopspring/decimal"

// DefaultICMSRate is applied when no consumption-tax rate is configured
var DefaultICMSRate = decimal.NewFromInt(18)

// Configuration holds the scalar inputs of a calculation
type Configuration struct {
	// ExchangeRate converts source currency to target currency.
	// Zero or negative means the rate is unknown.
	ExchangeRate decimal.Decimal `json:"exchange_rate"`

	// ICMSRate is the consumption-tax percentage in [0,100]
	ICMSRate decimal.NullDecimal `json:"icms_rate"`
}

// HasExchangeRate reports whether converted figures can be produced
func (c Configuration) HasExchangeRate() bool {
	return c.ExchangeRate.IsPositive()
}

// EffectiveICMSRate returns the configured rate or the default
func (c Configuration) EffectiveICMSRate() decimal.Decimal {
	if c.ICMSRate.Valid {
		return c.ICMSRate.Decimal
	}
	return DefaultICMSRate
}
