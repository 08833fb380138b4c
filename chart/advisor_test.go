package chart

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DachengChen/paiAnalyst/table"
)

func TestSuggestBarForLowCardinality(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	xGens := map[string]func(i int) any{
		"categorical": func(i int) any { return fmt.Sprintf("region-%d", i) },
		"numeric":     func(i int) any { return i * 10 },
		"temporal":    func(i int) any { return time.Date(2020, 1, 1+i, 0, 0, 0, 0, time.UTC) },
	}
	for name, gen := range xGens {
		for trial := 0; trial < 50; trial++ {
			distinct := 1 + r.Intn(8)
			rows := make([][]any, 1+r.Intn(40))
			for i := range rows {
				rows[i] = []any{gen(i % distinct), r.Float64() * 100}
			}
			tbl := table.New([]string{"x", "y"}, rows)
			assert.Equal(t, Bar, Suggest(tbl, "x", "y"), "%s x with %d distinct", name, tbl.Distinct(0))
		}
	}
}

func TestSuggestLineForTemporalHighCardinality(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for trial := 0; trial < 50; trial++ {
		n := 9 + r.Intn(100)
		rows := make([][]any, n)
		for i := range rows {
			rows[i] = []any{time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i), r.Int63n(1000)}
		}
		tbl := table.New([]string{"day", "revenue"}, rows)
		assert.Equal(t, Line, Suggest(tbl, "day", "revenue"))
	}
}

func TestSuggestNumericXIsLine(t *testing.T) {
	rows := make([][]any, 20)
	for i := range rows {
		rows[i] = []any{i, float64(i) * 1.5}
	}
	tbl := table.New([]string{"a", "b"}, rows)
	assert.Equal(t, Line, Suggest(tbl, "a", "b"))
}

func TestSuggestTenCategoriesFallsBackToBar(t *testing.T) {
	rows := make([][]any, 10)
	for i := range rows {
		rows[i] = []any{fmt.Sprintf("company-%d", i), int64(i * 3)}
	}
	tbl := table.New([]string{"company", "deals"}, rows)
	assert.Equal(t, Bar, Suggest(tbl, "company", "deals"))
}

func TestSuggestNonNumericY(t *testing.T) {
	tbl := table.New([]string{"a", "b"}, [][]any{{1, "x"}, {2, "y"}})
	assert.Equal(t, Bar, Suggest(tbl, "a", "b"))
	assert.Equal(t, Bar, Suggest(tbl, "a", "missing"))
}

func TestOptionsAndDefault(t *testing.T) {
	tbl := table.New([]string{"region", "deals", "value", "sector"}, [][]any{
		{"EU", 1, 2.5, "tech"},
		{"US", 2, 3.5, "health"},
	})
	assert.Equal(t, []string{"deals", "value"}, YOptions(tbl, "region"))
	assert.Equal(t, []string{"value"}, YOptions(tbl, "deals"))
	assert.Equal(t, []string{"", "value", "sector"}, ColorOptions(tbl, "region", "deals"))

	spec, ok := Default(tbl)
	assert.True(t, ok)
	assert.Equal(t, Spec{Family: Bar, X: "region", Y: "deals"}, spec)

	_, ok = Default(table.New([]string{"only"}, [][]any{{1}}))
	assert.False(t, ok)

	onlyText := table.New([]string{"a", "b"}, [][]any{{"x", "y"}})
	assert.Equal(t, []string{"b"}, YOptions(onlyText, "a"))
}
