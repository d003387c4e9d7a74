package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"import-cost/core/types"
	"import-cost/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(id int, price, qty, weight string) types.ProductEntry {
	return types.ProductEntry{ID: id, Price: price, Quantity: d(qty), Weight: d(weight)}
}

func config(rate, icms string) types.Configuration {
	cfg := types.Configuration{ExchangeRate: d(rate)}
	if icms != "" {
		cfg.ICMSRate = decimal.NewNullDecimal(d(icms))
	}
	return cfg
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestFreightTiers(t *testing.T) {
	tests := []struct {
		weight     string
		wantAmount string
		wantBlocks int64
	}{
		{"0", "0", 0},
		{"-5", "0", 0},
		{"1", "50", 1},
		{"100", "50", 1},
		{"100.5", "61", 2},
		{"101", "61", 2},
		{"200", "61", 2},
		{"201", "72", 3},
		{"350", "83", 4},
		{"1000", "149", 10},
	}

	for _, tt := range tests {
		t.Run(tt.weight, func(t *testing.T) {
			q := Freight(d(tt.weight))
			assertDecimal(t, "amount", q.Amount, tt.wantAmount)
			if q.Blocks != tt.wantBlocks {
				t.Errorf("blocks = %d, want %d", q.Blocks, tt.wantBlocks)
			}
			assertDecimal(t, "total weight", q.TotalWeight, tt.weight)
		})
	}
}

func TestCalculateSingleProductScenario(t *testing.T) {
	entries := []types.ProductEntry{entry(1, "¥ 177,00", "2", "200")}

	r, err := Calculate(entries, config("0.847", "18"))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	assertDecimal(t, "subtotal", r.Subtotal, "354")
	assertDecimal(t, "freight", r.Freight, "61")
	assertDecimal(t, "converted freight", r.ConvertedFreight, "51.667")
	assertDecimal(t, "import tax", r.ImportTax, "243.4002")
	assertDecimal(t, "consumption tax", r.ConsumptionTax, "116.832096")
	assertDecimal(t, "grand total", r.GrandTotal, "765.899296")
	assertDecimal(t, "total units", r.TotalUnits, "2")
	assertDecimal(t, "average", r.AverageUnitCost, "382.949648")
	assertDecimal(t, "weight", r.TotalWeight, "200")

	if r.FreightBlocks != 2 {
		t.Errorf("blocks = %d, want 2", r.FreightBlocks)
	}
	if r.Symbol != "¥" {
		t.Errorf("symbol = %q, want ¥", r.Symbol)
	}
	if r.Degraded {
		t.Error("did not expect degraded mode")
	}

	assertDecimal(t, "converted subtotal", r.Converted.Subtotal, "299.838")
	assertDecimal(t, "converted import tax", r.Converted.ImportTax.Round(4), "287.3674")
	assertDecimal(t, "converted total", r.Converted.GrandTotal.Round(4), "904.2495")
	assertDecimal(t, "converted average", r.Converted.AverageUnitCost.Round(4), "452.1247")
}

func TestGrandTotalInvariant(t *testing.T) {
	cases := [][]types.ProductEntry{
		{entry(1, "¥ 177,00", "2", "200"), entry(2, "¥ 94,40", "1", "150")},
		{entry(1, "R$ 0,99", "13", "7")},
		{entry(1, "", "0", "0")},
		{entry(1, "¥ 12,34", "-3", "-100"), entry(2, "¥ 1", "1", "1")},
	}
	configs := []types.Configuration{
		config("0.847", "18"),
		config("0", "18"),
		config("1.5", "0"),
		config("0.2", "100"),
		config("0.5", ""),
	}

	for _, entries := range cases {
		for _, cfg := range configs {
			r, err := Calculate(entries, cfg)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			sum := r.Subtotal.Add(r.ConvertedFreight).Add(r.ImportTax).Add(r.ConsumptionTax)
			if !r.GrandTotal.Equal(sum) {
				t.Errorf("grand total %s != components %s", r.GrandTotal, sum)
			}
		}
	}
}

func TestCalculateTwoProductSample(t *testing.T) {
	entries := []types.ProductEntry{
		entry(1, "¥ 177,00", "2", "200"),
		entry(2, "¥ 94,40", "1", "150"),
	}
	r, err := Calculate(entries, config("0.847", ""))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	assertDecimal(t, "subtotal", r.Subtotal, "448.4")
	assertDecimal(t, "freight", r.Freight, "83")
	assertDecimal(t, "converted freight", r.ConvertedFreight, "70.301")
	assertDecimal(t, "import tax", r.ImportTax, "311.2206")
	assertDecimal(t, "consumption tax", r.ConsumptionTax, "149.385888")
	assertDecimal(t, "grand total", r.GrandTotal, "979.307488")
	assertDecimal(t, "icms default", r.ICMSRate, "18")
	if len(r.Lines) != 2 || r.Lines[1].Position != 2 {
		t.Fatalf("unexpected lines: %+v", r.Lines)
	}
	assertDecimal(t, "line 2 total", r.Lines[1].LineTotal, "94.4")
}

func TestCalculateBlockedByICMSRate(t *testing.T) {
	entries := []types.ProductEntry{entry(1, "¥ 10", "1", "100")}
	r, err := Calculate(entries, config("0.847", "150"))
	if err == nil {
		t.Fatal("expected an error for icms 150")
	}
	if r != nil {
		t.Error("no result should be produced when blocked")
	}
	if !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCalculateDegradedMode(t *testing.T) {
	entries := []types.ProductEntry{entry(1, "¥ 177,00", "2", "200")}

	for _, rate := range []string{"0", "-1"} {
		r, err := Calculate(entries, config(rate, "18"))
		if err != nil {
			t.Fatalf("Calculate: %v", err)
		}
		if !r.Degraded {
			t.Errorf("rate %s: expected degraded mode", rate)
		}
		assertDecimal(t, "converted freight", r.ConvertedFreight, "0")
		assertDecimal(t, "freight", r.Freight, "61")
		assertDecimal(t, "import tax", r.ImportTax, "212.4")
		assertDecimal(t, "applied rate", r.ExchangeRate, "0")
		assertDecimal(t, "converted total", r.Converted.GrandTotal, "0")
		assertDecimal(t, "converted subtotal", r.Converted.Subtotal, "0")
	}
}

func TestCalculateZeroQuantity(t *testing.T) {
	entries := []types.ProductEntry{entry(1, "¥ 177,00", "0", "200")}
	r, err := Calculate(entries, config("0.847", "18"))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	assertDecimal(t, "units", r.TotalUnits, "0")
	assertDecimal(t, "average", r.AverageUnitCost, "0")
	assertDecimal(t, "converted average", r.Converted.AverageUnitCost, "0")
	if !r.HasFlags() || r.Flags[0].Field != types.FieldQuantity {
		t.Errorf("expected a quantity flag, got %+v", r.Flags)
	}
}

func TestFlaggedEntriesStillContribute(t *testing.T) {
	entries := []types.ProductEntry{
		entry(1, "¥ 10", "-2", "300"),
		entry(2, "¥ 5", "1", "-50"),
	}
	r, err := Calculate(entries, config("1", "18"))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	assertDecimal(t, "subtotal", r.Subtotal, "-15")
	assertDecimal(t, "weight", r.TotalWeight, "250")
	assertDecimal(t, "units", r.TotalUnits, "-1")
	assertDecimal(t, "average", r.AverageUnitCost, "0")
	if len(r.Flags) != 2 {
		t.Errorf("expected 2 flags, got %+v", r.Flags)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	entries := []types.ProductEntry{
		entry(1, "¥ 177,00", "2", "200"),
		entry(2, "¥ 94,40", "1", "150"),
	}
	cfg := config("0.847", "18")

	first, err := Calculate(entries, cfg)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	second, err := Calculate(entries, cfg)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("results differ:\n%s\n%s", a, b)
	}
}

func TestEmptyLedger(t *testing.T) {
	r, err := Calculate(nil, config("0.847", "18"))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	assertDecimal(t, "grand total", r.GrandTotal, "0")
	if r.FreightBlocks != 0 || r.Symbol != "¥" {
		t.Errorf("unexpected empty result %+v", r)
	}
}

func TestTieredCost(t *testing.T) {
	tiers := []Tier{
		{UpTo: d("10"), UnitRate: d("2")},
		{UpTo: d("20"), UnitRate: d("1")},
		{UnitRate: d("0.5")},
	}
	tests := []struct {
		quantity string
		want     string
	}{
		{"0", "0"},
		{"-3", "0"},
		{"5", "10"},
		{"10", "20"},
		{"15", "25"},
		{"30", "35"},
	}
	for _, tt := range tests {
		assertDecimal(t, "tiered "+tt.quantity, TieredCost(d(tt.quantity), tiers), tt.want)
	}
	assertDecimal(t, "no tiers", TieredCost(d("5"), nil), "0")
}
