// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

// Currency identifies the currency an amount is expressed in
type Currency string

const (
	// CurrencyCNY is the source currency product prices and freight are quoted in
	CurrencyCNY Currency = "CNY"

	// CurrencyBRL is the target currency taxes are assessed in
	CurrencyBRL Currency = "BRL"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display symbol of the currency
func (c Currency) Symbol() string {
	switch c {
	case CurrencyCNY:
		return "¥"
	case CurrencyBRL:
		return "R$"
	default:
		return string(c)
	}
}

// InputSource identifies where a quote came from
type InputSource string

const (
	SourceCLI  InputSource = "cli"
	SourceAPI  InputSource = "api"
	SourceFile InputSource = "file"
)
