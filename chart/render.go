package chart

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/DachengChen/paiAnalyst/table"
)

// Accent is the single-series color used when no color column is set.
const Accent = "#4B56D2"

// SortRule reorders rows before rendering.
type SortRule string

const (
	SortNone  SortRule = ""
	SortXAsc  SortRule = "x_asc"
	SortXDesc SortRule = "x_desc"
	SortYAsc  SortRule = "y_asc"
	SortYDesc SortRule = "y_desc"
)

// SortRules lists every rule in selector order.
func SortRules() []SortRule {
	return []SortRule{SortNone, SortXAsc, SortXDesc, SortYAsc, SortYDesc}
}

// Label is the selector text of a sort rule.
func (s SortRule) Label() string {
	switch s {
	case SortXAsc:
		return "X Ascending"
	case SortXDesc:
		return "X Descending"
	case SortYAsc:
		return "Y Ascending"
	case SortYDesc:
		return "Y Descending"
	}
	return "None"
}

// Spec is one chart selection. It is recomputed whenever a selector
// changes and never stored.
type Spec struct {
	Family Family   `json:"family"`
	X      string   `json:"x"`
	Y      string   `json:"y"`
	Color  string   `json:"color,omitempty"`
	Sort   SortRule `json:"sort,omitempty"`
}

// DataValidationError means the table cannot be drawn with the chosen
// columns. Guidance tells the user what to change.
type DataValidationError struct {
	Reason   string
	Guidance string
}

func (e *DataValidationError) Error() string {
	if e.Guidance == "" {
		return e.Reason
	}
	return e.Reason + ". " + e.Guidance
}

func invalid(guidance, format string, args ...any) error {
	return &DataValidationError{Reason: fmt.Sprintf(format, args...), Guidance: guidance}
}

// Artifact is a rendered chart: a Vega-Lite v5 specification with the
// data inlined.
type Artifact struct {
	Family Family         `json:"family"`
	Spec   map[string]any `json:"spec"`
	Rows   int            `json:"rows"`
}

// JSON returns the Vega-Lite document.
func (a *Artifact) JSON() ([]byte, error) {
	return json.Marshal(a.Spec)
}

// Render validates spec against t and builds the chart. No artifact is
// produced when validation fails.
func Render(t *table.Table, spec Spec) (*Artifact, error) {
	xi, yi, ci, err := validate(t, spec)
	if err != nil {
		return nil, err
	}

	if spec.Family == Pie {
		return renderPie(t, spec, xi, yi), nil
	}

	rows := sortRows(t.Rows, spec.Sort, xi, yi)
	values := make([]map[string]any, len(rows))
	for i, r := range rows {
		v := map[string]any{spec.X: cell(r[xi]), spec.Y: cell(r[yi])}
		if ci >= 0 {
			v[spec.Color] = cell(r[ci])
		}
		values[i] = v
	}

	xEnc := map[string]any{"field": spec.X, "type": axisType(t.Columns[xi].Kind)}
	if spec.Sort != SortNone {
		// keep row order instead of the default sorted domain
		xEnc["sort"] = nil
	}
	encoding := map[string]any{
		"x": xEnc,
		"y": map[string]any{"field": spec.Y, "type": axisType(t.Columns[yi].Kind)},
	}
	tooltip := []map[string]any{
		{"field": spec.X, "type": axisType(t.Columns[xi].Kind)},
		{"field": spec.Y, "type": axisType(t.Columns[yi].Kind)},
	}
	if ci >= 0 {
		colorEnc := map[string]any{"field": spec.Color, "type": axisType(t.Columns[ci].Kind)}
		encoding["color"] = colorEnc
		tooltip = append(tooltip, colorEnc)
	}
	encoding["tooltip"] = tooltip

	mark := map[string]any{"type": markType(spec.Family)}
	switch spec.Family {
	case Scatter:
		mark["size"] = 60
	case Area:
		mark["opacity"] = 0.7
	}
	if ci < 0 {
		mark["color"] = Accent
	}

	return &Artifact{
		Family: spec.Family,
		Rows:   len(values),
		Spec: map[string]any{
			"$schema":  "https://vega.github.io/schema/vega-lite/v5.json",
			"data":     map[string]any{"values": values},
			"mark":     mark,
			"encoding": encoding,
			"params": []map[string]any{
				{"name": "grid", "select": "interval", "bind": "scales"},
			},
			"width": "container",
		},
	}, nil
}

func validate(t *table.Table, spec Spec) (xi, yi, ci int, err error) {
	ci = -1
	if len(t.Columns) < 2 {
		return 0, 0, ci, invalid("Charts need at least two columns.", "result has %d column(s)", len(t.Columns))
	}
	if _, ok := ParseFamily(string(spec.Family)); !ok {
		return 0, 0, ci, invalid("Pick bar, line, scatter, area or pie.", "unknown chart type %q", spec.Family)
	}
	if xi = t.ColumnIndex(spec.X); xi < 0 {
		return 0, 0, ci, invalid("Choose an X axis from the result columns.", "unknown column %q", spec.X)
	}
	if yi = t.ColumnIndex(spec.Y); yi < 0 {
		return 0, 0, ci, invalid("Choose a Y axis from the result columns.", "unknown column %q", spec.Y)
	}
	if spec.Color != "" {
		if ci = t.ColumnIndex(spec.Color); ci < 0 {
			return 0, 0, -1, invalid("Choose a color column from the result or none.", "unknown column %q", spec.Color)
		}
	}
	if t.AllNull(xi) {
		return 0, 0, -1, invalid("Choose a different X axis.", "column %q contains only null values", spec.X)
	}
	if t.AllNull(yi) {
		return 0, 0, -1, invalid("Choose a different Y axis.", "column %q contains only null values", spec.Y)
	}
	if spec.Family == Pie {
		if spec.Sort != SortNone {
			return 0, 0, -1, invalid("Set sorting to None or pick another chart type.", "pie charts cannot be sorted")
		}
		if t.Columns[yi].Kind != table.Numeric {
			return 0, 0, -1, invalid("Choose a numeric Y axis for pie charts.", "column %q is not numeric", spec.Y)
		}
	}
	return xi, yi, ci, nil
}

// renderPie sums y by x in first-seen order of x. Rows with a null x
// belong to no slice.
func renderPie(t *table.Table, spec Spec, xi, yi int) *Artifact {
	var keys []any
	sums := make(map[any]float64)
	for _, r := range t.Rows {
		k := r[xi]
		if k == nil {
			continue
		}
		if _, ok := sums[k]; !ok {
			keys = append(keys, k)
		}
		f, _ := table.AsFloat(r[yi])
		sums[k] += f
	}
	values := make([]map[string]any, len(keys))
	for i, k := range keys {
		values[i] = map[string]any{spec.X: cell(k), spec.Y: sums[k]}
	}
	return &Artifact{
		Family: Pie,
		Rows:   len(values),
		Spec: map[string]any{
			"$schema": "https://vega.github.io/schema/vega-lite/v5.json",
			"data":    map[string]any{"values": values},
			"mark":    map[string]any{"type": "arc"},
			"encoding": map[string]any{
				"theta": map[string]any{"field": spec.Y, "type": "quantitative"},
				"color": map[string]any{"field": spec.X, "type": "nominal"},
				"tooltip": []map[string]any{
					{"field": spec.X, "type": "nominal"},
					{"field": spec.Y, "type": "quantitative"},
				},
			},
			"width":  400,
			"height": 400,
		},
	}
}

func sortRows(rows [][]any, rule SortRule, xi, yi int) [][]any {
	if rule == SortNone {
		return rows
	}
	out := slices.Clone(rows)
	col, desc := xi, false
	switch rule {
	case SortXDesc:
		desc = true
	case SortYAsc:
		col = yi
	case SortYDesc:
		col, desc = yi, true
	}
	slices.SortStableFunc(out, func(a, b []any) int {
		c := table.Compare(a[col], b[col])
		if desc {
			return -c
		}
		return c
	})
	return out
}

// Sorted returns the rows of t ordered by rule, for previews that draw
// the chart themselves.
func Sorted(t *table.Table, spec Spec) [][]any {
	return sortRows(t.Rows, spec.Sort, t.ColumnIndex(spec.X), t.ColumnIndex(spec.Y))
}

func axisType(k table.Kind) string {
	switch k {
	case table.Numeric:
		return "quantitative"
	case table.Temporal:
		return "temporal"
	}
	return "nominal"
}

func markType(f Family) string {
	switch f {
	case Line:
		return "line"
	case Scatter:
		return "circle"
	case Area:
		return "area"
	}
	return "bar"
}

func cell(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.Format(time.RFC3339Nano)
	}
	return v
}
