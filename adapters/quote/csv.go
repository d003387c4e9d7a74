package quote

import (
	"bytes"
	"encoding/csv"
	"io"

	"import-cost/internal/errors"
)

// CSVLoader reads a header row followed by one product per row. Both comma
// and semicolon separated files are accepted.
type CSVLoader struct{}

// Format returns the format type
func (CSVLoader) Format() Format { return FormatCSV }

// Load parses a CSV quote
func (CSVLoader) Load(r io.Reader, name string) (*Quote, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "read quote", err)
	}

	reader := csv.NewReader(bytes.NewReader(src))
	reader.Comma = sniffComma(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Parsing("parse "+name, err)
	}
	products, err := productsFromRows(rows)
	if err != nil {
		return nil, err
	}
	return &Quote{Products: products}, nil
}

// sniffComma picks ';' when the header line has more semicolons than commas,
// as pt-BR spreadsheets export prices with decimal commas.
func sniffComma(src []byte) rune {
	commas, semis := 0, 0
	for _, b := range src {
		if b == '\n' {
			break
		}
		switch b {
		case ',':
			commas++
		case ';':
			semis++
		}
	}
	if semis > commas {
		return ';'
	}
	return ','
}
