// Package output formats calculation results for people and machines.
package output

import (
	"io"
	"sort"
	"sync"

	"import-cost/core/types"
	"import-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI report
	FormatCLI Format = "cli"

	// FormatText is the bare calculation trace
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatXLSX is an Excel workbook
	FormatXLSX Format = "xlsx"

	// FormatPDF is a printable report
	FormatPDF Format = "pdf"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is everything a formatter needs
type Report struct {
	// Result is the calculated breakdown
	Result *types.CalculationResult `json:"result"`

	// Trace is the plain-text calculation trail
	Trace string `json:"trace"`

	// Presenter carries the currency symbols
	Presenter Presenter `json:"-"`

	// Metadata contains execution context
	Metadata ReportMetadata `json:"metadata"`
}

// ReportMetadata contains execution context
type ReportMetadata struct {
	// SessionID identifies the calculator session
	SessionID string `json:"session_id"`

	// Timestamp is when the calculation ran
	Timestamp string `json:"timestamp"`

	// Version is the tool version
	Version string `json:"version"`

	// Source is the input source
	Source types.InputSource `json:"source"`

	// Stale is set when the last edit was rejected and Result predates it
	Stale bool `json:"stale,omitempty"`
}

// NewReport builds a report, rendering the trace with the presenter
func NewReport(result *types.CalculationResult, p Presenter, meta ReportMetadata) *Report {
	return &Report{
		Result:    result,
		Trace:     p.Trace(result),
		Presenter: p,
		Metadata:  meta,
	}
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[f.Format()] = f
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.NotSupported("output format " + string(format))
	}
	return f, nil
}

// Formats lists the registered formats in name order
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns a registry with every built-in formatter
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(NewCLIFormatter(false))
		defaultRegistry.Register(TextFormatter{})
		defaultRegistry.Register(JSONFormatter{Indent: true})
		defaultRegistry.Register(XLSXFormatter{})
		defaultRegistry.Register(PDFFormatter{})
	})
	return defaultRegistry
}

// IsBinary reports whether a format should not be written to a terminal
func IsBinary(f Format) bool {
	return f == FormatXLSX || f == FormatPDF
}
