// Package ledger holds the ordered list of product entries being quoted.
package ledger

import (
	"strconv"

	"github.com/shopspring/decimal"

	"import-cost/core/money"
	"import-cost/core/types"
	"import-cost/internal/errors"
)

// Defaults applied by AddDefault
var (
	DefaultQuantity = decimal.NewFromInt(1)
	DefaultWeight   = decimal.NewFromInt(100)
)

// Ledger is an insertion-ordered collection of product entries.
// It is not safe for concurrent use; callers serialise edits.
type Ledger struct {
	entries []types.ProductEntry
	nextID  int
}

// New creates an empty ledger whose first entry gets id 1
func New() *Ledger {
	return &Ledger{nextID: 1}
}

// Add appends an entry and returns it with its assigned id
func (l *Ledger) Add(in types.ProductInput) types.ProductEntry {
	entry := types.ProductEntry{
		ID:       l.nextID,
		Price:    in.Price,
		Quantity: in.Quantity,
		Weight:   in.Weight,
	}
	l.nextID++
	l.entries = append(l.entries, entry)
	return entry
}

// AddDefault appends an entry with an empty price, one unit and 100 g
func (l *Ledger) AddDefault() types.ProductEntry {
	return l.Add(types.ProductInput{
		Quantity: DefaultQuantity,
		Weight:   DefaultWeight,
	})
}

// Update sets one field of an entry from its raw edited text.
// Quantity and weight are read leniently; unreadable text becomes 0.
func (l *Ledger) Update(id int, field types.Field, value string) (types.ProductEntry, error) {
	if !field.IsValid() {
		return types.ProductEntry{}, errors.Newf(errors.TypeInput, "unknown product field %q", field).
			WithContext("product_id", id)
	}

	idx := l.index(id)
	if idx < 0 {
		return types.ProductEntry{}, errors.NotFound("product", strconv.Itoa(id))
	}

	entry := &l.entries[idx]
	switch field {
	case types.FieldPrice:
		entry.Price = value
	case types.FieldQuantity:
		entry.Quantity = money.ParseNumber(value)
	case types.FieldWeight:
		entry.Weight = money.ParseNumber(value)
	}
	return *entry, nil
}

// Remove deletes an entry by id
func (l *Ledger) Remove(id int) error {
	idx := l.index(id)
	if idx < 0 {
		return errors.NotFound("product", strconv.Itoa(id))
	}
	l.entries = append(l.entries[:idx], l.entries[idx+1:]...)
	return nil
}

// Get returns the entry with the given id
func (l *Ledger) Get(id int) (types.ProductEntry, bool) {
	idx := l.index(id)
	if idx < 0 {
		return types.ProductEntry{}, false
	}
	return l.entries[idx], true
}

// Entries returns a copy of the entries in insertion order
func (l *Ledger) Entries() []types.ProductEntry {
	out := make([]types.ProductEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries
func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) index(id int) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}
