package table

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 12,345.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Metrics is the row/column summary shown above a data table.
type Metrics struct {
	Rows    string `json:"rows"`
	Columns string `json:"columns"`
}

// Metrics returns the formatted row and column counts.
func (t *Table) Metrics() Metrics {
	return Metrics{Rows: FormatCount(len(t.Rows)), Columns: FormatCount(len(t.Columns))}
}
