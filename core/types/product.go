package types

import "github.com/shopspring/decimal"

// Field names a mutable attribute of a ProductEntry
type Field string

const (
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
	FieldWeight   Field = "weight"
)

// IsValid reports whether the field can be edited
func (f Field) IsValid() bool {
	switch f {
	case FieldPrice, FieldQuantity, FieldWeight:
		return true
	default:
		return false
	}
}

// ProductEntry is one row of the product ledger
type ProductEntry struct {
	// ID is assigned on creation and never reused
	ID int `json:"id"`

	// Price is free text, e.g. "¥ 177,00"
	Price string `json:"price"`

	// Quantity is the unit count; non-positive values are flagged, not excluded
	Quantity decimal.Decimal `json:"quantity"`

	// Weight is the mass of the whole line in grams
	Weight decimal.Decimal `json:"weight"`
}

// ProductInput carries the initial values of a new entry
type ProductInput struct {
	Price    string          `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Weight   decimal.Decimal `json:"weight"`
}
