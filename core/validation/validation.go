// Package validation checks calculator inputs.
//
// There are two severities. An out-of-range ICMS rate is a hard failure that
// blocks recomputation. A non-positive quantity or weight is only flagged:
// the entry still takes part in every sum.
package validation

import (
	"github.com/shopspring/decimal"

	"import-cost/core/types"
	"import-cost/internal/errors"
)

var (
	minICMSRate = decimal.Zero
	maxICMSRate = decimal.NewFromInt(100)
)

// CheckICMSRate rejects rates outside [0,100]
func CheckICMSRate(rate decimal.Decimal) error {
	if rate.LessThan(minICMSRate) || rate.GreaterThan(maxICMSRate) {
		return errors.Newf(errors.TypeValidation, "icms rate %s is outside [0,100]", rate).
			WithContext("icms_rate", rate.String())
	}
	return nil
}

// CheckConfiguration validates the configured rates before a recompute
func CheckConfiguration(cfg types.Configuration) error {
	if cfg.ICMSRate.Valid {
		return CheckICMSRate(cfg.ICMSRate.Decimal)
	}
	return nil
}

// FlagEntries returns one flag per non-positive quantity or weight
func FlagEntries(entries []types.ProductEntry) []types.Flag {
	var flags []types.Flag
	for _, e := range entries {
		if !e.Quantity.IsPositive() {
			flags = append(flags, types.Flag{
				ProductID: e.ID,
				Field:     types.FieldQuantity,
				Reason:    "quantity must be greater than zero",
			})
		}
		if !e.Weight.IsPositive() {
			flags = append(flags, types.Flag{
				ProductID: e.ID,
				Field:     types.FieldWeight,
				Reason:    "weight must be greater than zero",
			})
		}
	}
	return flags
}
