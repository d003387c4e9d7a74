package validation

import (
	"testing"

	"github.com/shopspring/decimal"

	"import-cost/core/types"
	"import-cost/internal/errors"
)

func TestCheckICMSRate(t *testing.T) {
	tests := []struct {
		rate    string
		wantErr bool
	}{
		{"0", false},
		{"18", false},
		{"100", false},
		{"100.01", true},
		{"150", true},
		{"-1", true},
	}

	for _, tt := range tests {
		err := CheckICMSRate(decimal.RequireFromString(tt.rate))
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckICMSRate(%s) err = %v, wantErr %v", tt.rate, err, tt.wantErr)
		}
		if err != nil && !errors.IsType(err, errors.TypeValidation) {
			t.Errorf("CheckICMSRate(%s) returned %v, want VALIDATION_ERROR", tt.rate, err)
		}
	}
}

func TestCheckConfigurationIgnoresUnsetRate(t *testing.T) {
	if err := CheckConfiguration(types.Configuration{}); err != nil {
		t.Errorf("unset rate must fall back to default, got %v", err)
	}
	bad := types.Configuration{ICMSRate: decimal.NewNullDecimal(decimal.NewFromInt(150))}
	if err := CheckConfiguration(bad); err == nil {
		t.Error("expected rejection of 150")
	}
}

func TestFlagEntries(t *testing.T) {
	entries := []types.ProductEntry{
		{ID: 1, Quantity: decimal.NewFromInt(2), Weight: decimal.NewFromInt(200)},
		{ID: 2, Quantity: decimal.Zero, Weight: decimal.NewFromInt(100)},
		{ID: 3, Quantity: decimal.NewFromInt(-1), Weight: decimal.NewFromInt(-5)},
	}

	flags := FlagEntries(entries)
	if len(flags) != 3 {
		t.Fatalf("expected 3 flags, got %d: %+v", len(flags), flags)
	}
	if flags[0].ProductID != 2 || flags[0].Field != types.FieldQuantity {
		t.Errorf("unexpected first flag %+v", flags[0])
	}
	if flags[2].ProductID != 3 || flags[2].Field != types.FieldWeight {
		t.Errorf("unexpected last flag %+v", flags[2])
	}
}
