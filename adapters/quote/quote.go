// Package quote loads product lists and settings from quote files.
//
// Supported formats, chosen by file extension:
//
//	.hcl   settings block plus repeated product blocks
//	.csv   header row with price, quantity and weight columns
//	.xlsx  same columns on the first sheet, optional Settings sheet
//	.json  {"exchange_rate": ..., "icms_rate": ..., "products": [...]}
package quote

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"import-cost/core/ledger"
	"import-cost/core/money"
	"import-cost/core/types"
	"import-cost/internal/errors"
)

// Quote is the content of a quote file. Settings are kept as raw text and
// are read with the same lenient rules as interactive edits.
type Quote struct {
	// ExchangeRate is empty when the file does not set it
	ExchangeRate string `json:"exchange_rate,omitempty"`

	// ICMSRate is empty when the file does not set it
	ICMSRate string `json:"icms_rate,omitempty"`

	Products []types.ProductInput `json:"products"`
}

// Apply overlays the file settings on base
func (q *Quote) Apply(base types.Configuration) types.Configuration {
	cfg := base
	if strings.TrimSpace(q.ExchangeRate) != "" {
		cfg.ExchangeRate = money.ParseNumber(q.ExchangeRate)
	}
	if strings.TrimSpace(q.ICMSRate) != "" {
		cfg.ICMSRate = money.ParseOptional(q.ICMSRate)
	}
	return cfg
}

// Format identifies a quote file format
type Format string

const (
	FormatHCL  Format = "hcl"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// Loader decodes one quote format
type Loader interface {
	Format() Format
	Load(r io.Reader, name string) (*Quote, error)
}

var loaders = map[Format]Loader{
	FormatHCL:  HCLLoader{},
	FormatCSV:  CSVLoader{},
	FormatXLSX: XLSXLoader{},
	FormatJSON: JSONLoader{},
}

// DetectFormat maps a file name to its format
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, ok := loaders[Format(ext)]; !ok {
		return "", errors.NotSupported("quote file extension " + filepath.Ext(path))
	}
	return Format(ext), nil
}

// LoaderFor returns the loader of a format
func LoaderFor(f Format) (Loader, error) {
	l, ok := loaders[f]
	if !ok {
		return nil, errors.NotSupported("quote format " + string(f))
	}
	return l, nil
}

// LoadFile reads a quote file, choosing the loader by extension
func LoadFile(path string) (*Quote, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "open quote file %s", path)
	}
	defer f.Close()

	loader, _ := LoaderFor(format)
	return loader.Load(f, filepath.Base(path))
}

// column positions of a tabular quote; -1 when absent
type columns struct {
	price, quantity, weight int
}

func headerColumns(header []string) (columns, error) {
	cols := columns{price: -1, quantity: -1, weight: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "price", "preço", "preco":
			cols.price = i
		case "quantity", "qty", "quantidade":
			cols.quantity = i
		case "weight", "weight_g", "grams", "peso":
			cols.weight = i
		}
	}
	if cols.price < 0 {
		return cols, errors.New(errors.TypeParsing, "quote header has no price column")
	}
	return cols, nil
}

// productsFromRows reads tabular rows whose first row is the header. Missing
// quantity or weight columns take the add-product defaults; blank cells read
// as zero and are flagged later.
func productsFromRows(rows [][]string) ([]types.ProductInput, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.TypeParsing, "quote has no header row")
	}
	cols, err := headerColumns(rows[0])
	if err != nil {
		return nil, err
	}

	products := make([]types.ProductInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		in := types.ProductInput{
			Price:    cell(row, cols.price),
			Quantity: ledger.DefaultQuantity,
			Weight:   ledger.DefaultWeight,
		}
		if cols.quantity >= 0 {
			in.Quantity = money.ParseNumber(cell(row, cols.quantity))
		}
		if cols.weight >= 0 {
			in.Weight = money.ParseNumber(cell(row, cols.weight))
		}
		products = append(products, in)
	}
	return products, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
