package quote

import (
	"io"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"import-cost/core/ledger"
	"import-cost/core/money"
	"import-cost/core/types"
	"import-cost/internal/errors"
)

// HCLLoader reads quotes written as
//
//	settings {
//	  exchange_rate = 0.847
//	  icms_rate     = 18
//	}
//
//	product {
//	  price    = "¥ 177,00"
//	  quantity = 2
//	  weight   = 200
//	}
type HCLLoader struct{}

type hclQuote struct {
	Settings *hclSettings `hcl:"settings,block"`
	Products []hclProduct `hcl:"product,block"`
}

// Numbers decode into strings so that no precision is lost on the way to
// decimal.
type hclSettings struct {
	ExchangeRate *string `hcl:"exchange_rate,optional"`
	ICMSRate     *string `hcl:"icms_rate,optional"`
}

type hclProduct struct {
	Price    string  `hcl:"price"`
	Quantity *string `hcl:"quantity,optional"`
	Weight   *string `hcl:"weight,optional"`
}

// Format returns the format type
func (HCLLoader) Format() Format { return FormatHCL }

// Load parses an HCL quote
func (HCLLoader) Load(r io.Reader, name string) (*Quote, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "read quote", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, name)
	if diags.HasErrors() {
		return nil, errors.Parsing("parse "+name, diags)
	}

	var doc hclQuote
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, errors.Parsing("decode "+name, diags)
	}

	q := &Quote{Products: make([]types.ProductInput, 0, len(doc.Products))}
	if doc.Settings != nil {
		q.ExchangeRate = deref(doc.Settings.ExchangeRate)
		q.ICMSRate = deref(doc.Settings.ICMSRate)
	}
	for _, p := range doc.Products {
		in := types.ProductInput{
			Price:    p.Price,
			Quantity: ledger.DefaultQuantity,
			Weight:   ledger.DefaultWeight,
		}
		if p.Quantity != nil {
			in.Quantity = money.ParseNumber(*p.Quantity)
		}
		if p.Weight != nil {
			in.Weight = money.ParseNumber(*p.Weight)
		}
		q.Products = append(q.Products, in)
	}
	return q, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
