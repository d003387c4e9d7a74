// Package ui - Terminal user interface
// CLI output with tables, colors and a quote summary box.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Raw writes text verbatim
func (w *Writer) Raw(text string) {
	io.WriteString(w.out, text)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Green, "✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Yellow, "⚠ "), fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Red, "✗ "), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Println("%s%s", w.color(Blue, "ℹ "), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Println("%s", w.color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := utf8.RuneCountInString(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	t.w.Println("%s", t.w.color(Bold, t.line(t.headers)))

	seps := make([]string, len(t.widths))
	for i, w := range t.widths {
		seps[i] = strings.Repeat("─", w)
	}
	t.w.Println("%s", strings.Join(seps, "─┼─"))

	for _, row := range t.rows {
		t.w.Println("%s", t.line(row))
	}
}

func (t *Table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", t.widths[i]-utf8.RuneCountInString(cell))
	}
	return strings.Join(parts, " │ ")
}

// QuoteSummary renders the headline figures of a quote
type QuoteSummary struct {
	w          *Writer
	Total      string
	TotalOther string
	UnitCost   string
	Units      string
	Products   int
	Flagged    int
	Degraded   bool
}

// NewQuoteSummary creates a quote summary
func (w *Writer) NewQuoteSummary() *QuoteSummary {
	return &QuoteSummary{w: w}
}

// Render prints the quote summary
func (s *QuoteSummary) Render() {
	s.w.Header("Import Cost Summary")

	s.w.Println("%s", s.w.color(Bold, "╭──────────────────────────────────────╮"))
	s.w.Println("%s%s%s", s.w.color(Bold, "│"), s.w.color(Green, pad("  Total:     "+s.Total, 38)), s.w.color(Bold, "│"))
	if !s.Degraded {
		s.w.Println("%s%s%s", s.w.color(Bold, "│"), s.w.color(Dim, pad("  Converted: "+s.TotalOther, 38)), s.w.color(Bold, "│"))
	}
	s.w.Println("%s%s%s", s.w.color(Bold, "│"), pad("  Per unit:  "+s.UnitCost, 38), s.w.color(Bold, "│"))
	s.w.Println("%s", s.w.color(Bold, "╰──────────────────────────────────────╯"))
	s.w.Println("")

	s.w.Println("%s", s.w.color(Dim, fmt.Sprintf("  Products: %d  Units: %s", s.Products, s.Units)))
	if s.Degraded {
		s.w.Warning("Exchange rate not provided: converted figures are shown as zero")
	}
	if s.Flagged > 0 {
		s.w.Warning("%d field(s) with non-positive quantity or weight", s.Flagged)
	}
}

func pad(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	return text + strings.Repeat(" ", width-n)
}
