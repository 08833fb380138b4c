// Package chart picks a chart family for a tabular result and renders
// it as a Vega-Lite specification.
package chart

import (
	"github.com/DachengChen/paiAnalyst/table"
)

// Family is a chart type.
type Family string

const (
	Bar     Family = "bar"
	Line    Family = "line"
	Scatter Family = "scatter"
	Area    Family = "area"
	Pie     Family = "pie"
)

// Families lists every family in selector order.
func Families() []Family {
	return []Family{Bar, Line, Scatter, Area, Pie}
}

// Label is the selector text of a family.
func (f Family) Label() string {
	switch f {
	case Bar:
		return "Bar Chart"
	case Line:
		return "Line Chart"
	case Scatter:
		return "Scatter Plot"
	case Area:
		return "Area Chart"
	case Pie:
		return "Pie Chart"
	}
	return string(f)
}

// ParseFamily maps a family name onto a Family.
func ParseFamily(s string) (Family, bool) {
	for _, f := range Families() {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Suggest infers a chart family from the cardinality and kind of the
// chosen columns. The rules are evaluated in this order and the first
// match wins:
//
//  1. x has at most 8 distinct values and y is numeric: Bar
//  2. x is temporal or numeric and y is numeric: Line
//  3. x and y are numeric: Scatter
//  4. x has at most 6 distinct values and y is numeric: Pie
//  5. otherwise: Bar
//
// Rules 3 and 4 are shadowed by 1 and 2 and kept for the fixed order.
// Unknown columns fall through to the default.
func Suggest(t *table.Table, x, y string) Family {
	xi, yi := t.ColumnIndex(x), t.ColumnIndex(y)
	if xi < 0 || yi < 0 {
		return Bar
	}
	xk, yk := t.Columns[xi].Kind, t.Columns[yi].Kind
	distinct := t.Distinct(xi)
	yNumeric := yk == table.Numeric

	switch {
	case distinct <= 8 && yNumeric:
		return Bar
	case (xk == table.Temporal || xk == table.Numeric) && yNumeric:
		return Line
	case xk == table.Numeric && yNumeric:
		return Scatter
	case distinct <= 6 && yNumeric:
		return Pie
	default:
		return Bar
	}
}

// YOptions lists the candidate y columns for x: numeric columns other
// than x, or every other column when there are none.
func YOptions(t *table.Table, x string) []string {
	var out []string
	for _, name := range t.NumericColumns() {
		if name != x {
			out = append(out, name)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, c := range t.Columns {
		if c.Name != x {
			out = append(out, c.Name)
		}
	}
	return out
}

// ColorOptions lists the candidate color-by columns. The empty string
// stands for a single color.
func ColorOptions(t *table.Table, x, y string) []string {
	out := []string{""}
	for _, c := range t.Columns {
		if c.Name != x && c.Name != y {
			out = append(out, c.Name)
		}
	}
	return out
}

// Default picks the initial selectors for a result: the first column
// as x, the first candidate y, and the suggested family. ok is false
// when the table has fewer than two columns.
func Default(t *table.Table) (spec Spec, ok bool) {
	if len(t.Columns) < 2 {
		return Spec{}, false
	}
	x := t.Columns[0].Name
	ys := YOptions(t, x)
	if len(ys) == 0 {
		return Spec{}, false
	}
	return Spec{Family: Suggest(t, x, ys[0]), X: x, Y: ys[0], Sort: SortNone}, true
}
