// Package money extracts amounts and currency symbols from free-text prices.
//
// Parsing never fails: text that carries no number yields zero. Only a single
// decimal separator is understood, so "1,234.56" reads as 1.234.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is reported when no price carries a currency symbol
const DefaultSymbol = "¥"

var (
	nonNumeric   = regexp.MustCompile(`[^0-9.,]`)
	symbolRun    = regexp.MustCompile(`[^0-9.,\s]+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// ParseAmount returns the numeric value of a price such as "¥ 177,00".
// Everything except digits, commas and periods is dropped and the first
// comma is read as the decimal point.
func ParseAmount(text string) decimal.Decimal {
	if text == "" {
		return decimal.Zero
	}
	cleaned := nonNumeric.ReplaceAllString(text, "")
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	d, _ := parseLeading(cleaned)
	return d
}

// ParseNumber reads the leading number of an edited field value.
// Garbage yields zero, matching how an empty form field is treated.
func ParseNumber(text string) decimal.Decimal {
	d, _ := ParseNumberOK(text)
	return d
}

// ParseNumberOK is ParseNumber that also reports whether the text starts
// with a number at all.
func ParseNumberOK(text string) (decimal.Decimal, bool) {
	return parseLeading(strings.TrimSpace(text))
}

// ParseOptional reads a setting that falls back to a default. Blank or
// unreadable text yields an invalid NullDecimal.
func ParseOptional(text string) decimal.NullDecimal {
	d, ok := ParseNumberOK(text)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// DetectSymbol returns the first run of characters that is neither a digit,
// a separator nor whitespace, or "" when there is none.
func DetectSymbol(text string) string {
	return symbolRun.FindString(text)
}

// DetectCurrency returns the symbol of the first non-empty price.
// Later prices are not consulted, even when that price has no symbol.
func DetectCurrency(prices []string) string {
	for _, p := range prices {
		if p == "" {
			continue
		}
		if sym := DetectSymbol(p); sym != "" {
			return sym
		}
		break
	}
	return DefaultSymbol
}

func parseLeading(s string) (decimal.Decimal, bool) {
	m := leadingFloat.FindString(s)
	if m == "" {
		return decimal.Zero, false
	}
	// "12." and "12.e3" are valid prefixes but not valid decimal literals
	m = strings.Replace(m, ".e", "e", 1)
	m = strings.Replace(m, ".E", "E", 1)
	m = strings.TrimSuffix(m, ".")
	m = strings.TrimPrefix(m, "+")
	if strings.HasPrefix(m, ".") {
		m = "0" + m
	} else if strings.HasPrefix(m, "-.") {
		m = "-0" + m[1:]
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
