package quote

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"import-cost/internal/errors"
)

// SettingsSheet is the optional sheet holding key/value settings rows
const SettingsSheet = "Settings"

// XLSXLoader reads products from the first sheet of a workbook. A sheet
// named Settings may carry exchange_rate and icms_rate rows.
type XLSXLoader struct{}

// Format returns the format type
func (XLSXLoader) Format() Format { return FormatXLSX }

// Load parses an Excel quote
func (XLSXLoader) Load(r io.Reader, name string) (*Quote, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Parsing("open "+name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.TypeParsing, name+" has no sheets")
	}

	productSheet := sheets[0]
	if productSheet == SettingsSheet && len(sheets) > 1 {
		productSheet = sheets[1]
	}
	rows, err := f.GetRows(productSheet)
	if err != nil {
		return nil, errors.Parsing("read sheet "+productSheet, err)
	}
	products, err := productsFromRows(rows)
	if err != nil {
		return nil, err
	}
	q := &Quote{Products: products}

	if idx, _ := f.GetSheetIndex(SettingsSheet); idx >= 0 {
		settings, err := f.GetRows(SettingsSheet)
		if err != nil {
			return nil, errors.Parsing("read sheet "+SettingsSheet, err)
		}
		for _, row := range settings {
			if len(row) < 2 {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(row[0])) {
			case "exchange_rate", "rate":
				q.ExchangeRate = strings.TrimSpace(row[1])
			case "icms_rate", "icms":
				q.ICMSRate = strings.TrimSpace(row[1])
			}
		}
	}
	return q, nil
}
