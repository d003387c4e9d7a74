package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes the report as JSON. Decimal amounts are encoded as
// strings so that no precision is lost.
type JSONFormatter struct {
	Indent bool
}

// Format returns the format type
func (JSONFormatter) Format() Format { return FormatJSON }

// Render encodes the report
func (f JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
