package output

import (
	"strings"

	"github.com/shopspring/decimal"

	"import-cost/core/types"
)

// Presenter holds the symbols used when figures are formatted.
// Source is the currency of product prices and freight; Target is the
// currency taxes are assessed in.
type Presenter struct {
	Source string
	Target string
}

// DefaultPresenter formats yuan source figures and real target figures
func DefaultPresenter() Presenter {
	return Presenter{
		Source: types.CurrencyCNY.Symbol(),
		Target: types.CurrencyBRL.Symbol(),
	}
}

// FormatMoney renders an amount as "<symbol> 1.234,56".
// Rounding is half away from zero; zero renders like any other value.
func FormatMoney(amount decimal.Decimal, symbol string) string {
	return symbol + " " + FormatNumber(amount)
}

// FormatNumber renders an amount with two decimals, "." grouping and ","
// as the decimal separator.
func FormatNumber(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart) + "," + frac
	if negative && out != "0,00" {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
