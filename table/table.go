// Package table is the in-memory tabular result of one SQL execution,
// with per-column semantic types and export to delimited text and
// spreadsheets.
//
// Cell values are normalized on construction so that every table holds
// only nil, int64, float64, bool, string or time.Time (UTC) cells.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type of a column.
type Kind int

const (
	Categorical Kind = iota
	Numeric
	Temporal
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Temporal:
		return "temporal"
	default:
		return "categorical"
	}
}

// Column is a named column and its inferred kind.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"-"`
}

// Table is rows x named columns.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// New builds a table from raw driver values. Short rows are padded
// with nulls; extra cells are dropped.
func New(names []string, rows [][]any) *Table {
	t := &Table{
		Columns: make([]Column, len(names)),
		Rows:    make([][]any, len(rows)),
	}
	for i, r := range rows {
		row := make([]any, len(names))
		for j := range names {
			if j < len(r) {
				row[j] = normalize(r[j])
			}
		}
		t.Rows[i] = row
	}
	for j, name := range names {
		t.Columns[j] = Column{Name: name, Kind: t.settle(j)}
	}
	return t
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Distinct counts the distinct non-null values of column col.
func (t *Table) Distinct(col int) int {
	seen := make(map[any]struct{})
	for _, r := range t.Rows {
		if r[col] != nil {
			seen[r[col]] = struct{}{}
		}
	}
	return len(seen)
}

// AllNull reports whether every value of column col is null. A
// zero-row table counts as all null.
func (t *Table) AllNull(col int) bool {
	for _, r := range t.Rows {
		if r[col] != nil {
			return false
		}
	}
	return true
}

// NumericColumns lists the names of numeric columns.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Kind == Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Markdown renders up to maxRows rows as a pipe table. maxRows <= 0
// renders every row.
func (t *Table) Markdown(maxRows int) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(t.Names(), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(t.Columns)) + "\n")
	n := len(t.Rows)
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}
	for _, r := range t.Rows[:n] {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = strings.ReplaceAll(FormatCell(v), "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if n < len(t.Rows) {
		fmt.Fprintf(&b, "\n... %d more rows\n", len(t.Rows)-n)
	}
	return b.String()
}

// FormatCell renders a normalized cell as text. Floats always carry a
// decimal point or exponent so they read back as floats.
func FormatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Compare orders two cells of the same column. Nulls sort first.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := AsFloat(a); ok {
		if fb, ok := AsFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(FormatCell(a), FormatCell(b))
}

// AsFloat converts numeric cells to float64.
func AsFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// ExportName is the download name of an export made at now, e.g.
// export_20240309_140506.csv.
func ExportName(now time.Time, ext string) string {
	return "export_" + now.Format("20060102_150405") + "." + ext
}
