package quote

import (
	"bytes"
	"encoding/json"
	"io"

	"import-cost/core/ledger"
	"import-cost/core/money"
	"import-cost/core/types"
	"import-cost/internal/errors"
)

// Document is the JSON shape of a quote. Numbers may be written as JSON
// numbers or as strings.
type Document struct {
	ExchangeRate Number            `json:"exchange_rate,omitempty"`
	ICMSRate     Number            `json:"icms_rate,omitempty"`
	Products     []DocumentProduct `json:"products"`
}

// DocumentProduct is one product of a Document
type DocumentProduct struct {
	Price    string  `json:"price"`
	Quantity *Number `json:"quantity,omitempty"`
	Weight   *Number `json:"weight,omitempty"`
}

// Number holds the raw text of a JSON number or string
type Number string

// UnmarshalJSON accepts 0.847, "0.847" and null
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = Number(num)
	return nil
}

// Quote converts the document into a Quote
func (d *Document) Quote() *Quote {
	q := &Quote{
		ExchangeRate: string(d.ExchangeRate),
		ICMSRate:     string(d.ICMSRate),
		Products:     make([]types.ProductInput, 0, len(d.Products)),
	}
	for _, p := range d.Products {
		in := types.ProductInput{
			Price:    p.Price,
			Quantity: ledger.DefaultQuantity,
			Weight:   ledger.DefaultWeight,
		}
		if p.Quantity != nil {
			in.Quantity = money.ParseNumber(string(*p.Quantity))
		}
		if p.Weight != nil {
			in.Weight = money.ParseNumber(string(*p.Weight))
		}
		q.Products = append(q.Products, in)
	}
	return q
}

// JSONLoader reads a Document
type JSONLoader struct{}

// Format returns the format type
func (JSONLoader) Format() Format { return FormatJSON }

// Load parses a JSON quote
func (JSONLoader) Load(r io.Reader, name string) (*Quote, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Parsing("parse "+name, err)
	}
	return doc.Quote(), nil
}
