package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"import-cost/core/types"
	"import-cost/internal/errors"
)

func TestIDsAreMonotonicAndNeverReused(t *testing.T) {
	l := New()
	a := l.AddDefault()
	b := l.AddDefault()
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected ids 1,2 got %d,%d", a.ID, b.ID)
	}

	if err := l.Remove(b.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	c := l.AddDefault()
	if c.ID != 3 {
		t.Errorf("expected id 3 after removal, got %d", c.ID)
	}
}

func TestAddDefault(t *testing.T) {
	l := New()
	e := l.AddDefault()
	if e.Price != "" || !e.Quantity.Equal(decimal.NewFromInt(1)) || !e.Weight.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected defaults: %+v", e)
	}
}

func TestEntriesKeepInsertionOrder(t *testing.T) {
	l := New()
	l.Add(types.ProductInput{Price: "a"})
	l.Add(types.ProductInput{Price: "b"})
	l.Add(types.ProductInput{Price: "c"})
	_ = l.Remove(2)

	got := l.Entries()
	if len(got) != 2 || got[0].Price != "a" || got[1].Price != "c" {
		t.Errorf("unexpected order: %+v", got)
	}

	// mutating the copy must not reach the ledger
	got[0].Price = "z"
	if e, _ := l.Get(1); e.Price != "a" {
		t.Error("Entries returned a shared slice")
	}
}

func TestUpdate(t *testing.T) {
	l := New()
	e := l.AddDefault()

	tests := []struct {
		field types.Field
		value string
		check func(types.ProductEntry) bool
	}{
		{types.FieldPrice, "¥ 94,40", func(p types.ProductEntry) bool { return p.Price == "¥ 94,40" }},
		{types.FieldQuantity, "3", func(p types.ProductEntry) bool { return p.Quantity.Equal(decimal.NewFromInt(3)) }},
		{types.FieldQuantity, "", func(p types.ProductEntry) bool { return p.Quantity.IsZero() }},
		{types.FieldWeight, "-20", func(p types.ProductEntry) bool { return p.Weight.Equal(decimal.NewFromInt(-20)) }},
	}

	for _, tt := range tests {
		got, err := l.Update(e.ID, tt.field, tt.value)
		if err != nil {
			t.Fatalf("Update(%s, %q): %v", tt.field, tt.value, err)
		}
		if !tt.check(got) {
			t.Errorf("Update(%s, %q) produced %+v", tt.field, tt.value, got)
		}
	}
}

func TestUpdateErrors(t *testing.T) {
	l := New()
	e := l.AddDefault()

	if _, err := l.Update(99, types.FieldPrice, "x"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if _, err := l.Update(e.ID, types.Field("color"), "red"); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected INPUT_ERROR, got %v", err)
	}
	if err := l.Remove(42); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected NOT_FOUND on remove, got %v", err)
	}
}
