package chart

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiAnalyst/table"
)

func sample() *table.Table {
	return table.New([]string{"region", "deals", "closed", "sector"}, [][]any{
		{"EU", 3, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "tech"},
		{"US", 5, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "tech"},
		{"EU", 4, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "health"},
	})
}

func encodingOf(t *testing.T, a *Artifact, ch string) map[string]any {
	t.Helper()
	enc, ok := a.Spec["encoding"].(map[string]any)
	require.True(t, ok)
	m, ok := enc[ch].(map[string]any)
	require.True(t, ok, "channel %s", ch)
	return m
}

func TestRenderAxisTypesFollowColumnKinds(t *testing.T) {
	a, err := Render(sample(), Spec{Family: Line, X: "closed", Y: "deals"})
	require.NoError(t, err)
	assert.Equal(t, "temporal", encodingOf(t, a, "x")["type"])
	assert.Equal(t, "quantitative", encodingOf(t, a, "y")["type"])
	assert.Equal(t, map[string]any{"type": "line", "color": Accent}, a.Spec["mark"])

	a, err = Render(sample(), Spec{Family: Bar, X: "region", Y: "deals"})
	require.NoError(t, err)
	assert.Equal(t, "nominal", encodingOf(t, a, "x")["type"])
	assert.Equal(t, 3, a.Rows)
}

func TestRenderMarks(t *testing.T) {
	a, err := Render(sample(), Spec{Family: Scatter, X: "deals", Y: "deals"})
	require.NoError(t, err)
	assert.Equal(t, 60, a.Spec["mark"].(map[string]any)["size"])

	a, err = Render(sample(), Spec{Family: Area, X: "closed", Y: "deals"})
	require.NoError(t, err)
	assert.Equal(t, 0.7, a.Spec["mark"].(map[string]any)["opacity"])
}

func TestRenderColorOverridesAccent(t *testing.T) {
	a, err := Render(sample(), Spec{Family: Bar, X: "region", Y: "deals", Color: "sector"})
	require.NoError(t, err)
	assert.Equal(t, "sector", encodingOf(t, a, "color")["field"])
	_, hasColor := a.Spec["mark"].(map[string]any)["color"]
	assert.False(t, hasColor)
}

func TestRenderPieAggregates(t *testing.T) {
	a, err := Render(sample(), Spec{Family: Pie, X: "region", Y: "deals"})
	require.NoError(t, err)
	values := a.Spec["data"].(map[string]any)["values"].([]map[string]any)
	assert.Equal(t, []map[string]any{
		{"region": "EU", "deals": 7.0},
		{"region": "US", "deals": 5.0},
	}, values)
	assert.Equal(t, "deals", encodingOf(t, a, "theta")["field"])
	assert.Equal(t, "region", encodingOf(t, a, "color")["field"])
	assert.Equal(t, 400, a.Spec["width"])
}

func TestRenderPieSkipsNullCategories(t *testing.T) {
	tbl := table.New([]string{"x", "y"}, [][]any{{"a", 1}, {nil, 5}, {"a", 2}})
	a, err := Render(tbl, Spec{Family: Pie, X: "x", Y: "y"})
	require.NoError(t, err)
	values := a.Spec["data"].(map[string]any)["values"].([]map[string]any)
	assert.Equal(t, []map[string]any{{"x": "a", "y": 3.0}}, values)
	assert.Equal(t, 1, a.Rows)
}

func TestRenderSortReordersRows(t *testing.T) {
	a, err := Render(sample(), Spec{Family: Bar, X: "region", Y: "deals", Sort: SortYDesc})
	require.NoError(t, err)
	values := a.Spec["data"].(map[string]any)["values"].([]map[string]any)
	var got []any
	for _, v := range values {
		got = append(got, v["deals"])
	}
	assert.Equal(t, []any{int64(5), int64(4), int64(3)}, got)
	x := encodingOf(t, a, "x")
	sortVal, ok := x["sort"]
	assert.True(t, ok)
	assert.Nil(t, sortVal)
}

func TestRenderValidation(t *testing.T) {
	withNulls := table.New([]string{"a", "b"}, [][]any{{nil, 1}, {nil, 2}})
	tests := []struct {
		name string
		tbl  *table.Table
		spec Spec
	}{
		{"all null x", withNulls, Spec{Family: Bar, X: "a", Y: "b"}},
		{"unknown column", sample(), Spec{Family: Bar, X: "nope", Y: "deals"}},
		{"unknown color", sample(), Spec{Family: Bar, X: "region", Y: "deals", Color: "nope"}},
		{"sorted pie", sample(), Spec{Family: Pie, X: "region", Y: "deals", Sort: SortXAsc}},
		{"text pie", sample(), Spec{Family: Pie, X: "deals", Y: "region"}},
		{"one column", table.New([]string{"a"}, [][]any{{1}}), Spec{Family: Bar, X: "a", Y: "a"}},
		{"unknown family", sample(), Spec{Family: "radar", X: "region", Y: "deals"}},
	}
	for _, tt := range tests {
		a, err := Render(tt.tbl, tt.spec)
		assert.Nil(t, a, tt.name)
		var dve *DataValidationError
		require.ErrorAs(t, err, &dve, tt.name)
		assert.NotEmpty(t, dve.Guidance, tt.name)
	}
}

func TestRenderPartialNullsPassThrough(t *testing.T) {
	tbl := table.New([]string{"a", "b"}, [][]any{{"x", nil}, {"y", 2}})
	a, err := Render(tbl, Spec{Family: Bar, X: "a", Y: "b"})
	require.NoError(t, err)
	b, err := a.JSON()
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	values := doc["data"].(map[string]any)["values"].([]any)
	assert.Nil(t, values[0].(map[string]any)["b"])
}
