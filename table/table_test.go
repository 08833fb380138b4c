package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesAndInfersKinds(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	tbl := New(
		[]string{"id", "amount", "mixed", "when", "name", "empty", "flag"},
		[][]any{
			{int32(1), 1.5, "a", ts, []byte("acme"), nil, true},
			{2, int64(3), 7, nil, "globex", nil, false},
			{uint8(3)}, // short row padded with nulls
		},
	)

	kinds := make([]Kind, len(tbl.Columns))
	for i, c := range tbl.Columns {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []Kind{Numeric, Numeric, Categorical, Temporal, Categorical, Categorical, Categorical}, kinds)

	assert.Equal(t, int64(1), tbl.Rows[0][0])
	assert.Equal(t, float64(3), tbl.Rows[1][1])
	assert.Equal(t, "7", tbl.Rows[1][2])
	assert.Equal(t, time.UTC, tbl.Rows[0][3].(time.Time).Location())
	assert.Equal(t, "acme", tbl.Rows[0][4])
	assert.Nil(t, tbl.Rows[2][6])

	assert.Equal(t, 3, tbl.Distinct(0))
	assert.True(t, tbl.AllNull(5))
	assert.False(t, tbl.AllNull(3))
	assert.Equal(t, []string{"id", "amount"}, tbl.NumericColumns())
	assert.Equal(t, 3, tbl.ColumnIndex("when"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
}

func TestNewKeepsLargeUnsignedPositive(t *testing.T) {
	tbl := New([]string{"big", "small"}, [][]any{
		{uint64(math.MaxUint64), uint(7)},
		{uint64(1), uint64(math.MaxInt64)},
	})
	assert.Equal(t, float64(math.MaxUint64), tbl.Rows[0][0])
	assert.Equal(t, float64(1), tbl.Rows[1][0])
	assert.Equal(t, int64(7), tbl.Rows[0][1])
	assert.Equal(t, int64(math.MaxInt64), tbl.Rows[1][1])
	assert.Equal(t, Numeric, tbl.Columns[0].Kind)
}

func TestFormatCellFloatsKeepDecimalPoint(t *testing.T) {
	assert.Equal(t, "3.0", FormatCell(3.0))
	assert.Equal(t, "2.5", FormatCell(2.5))
	assert.Equal(t, "1e+21", FormatCell(1e21))
	assert.Equal(t, "", FormatCell(nil))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(nil, int64(1)))
	assert.Equal(t, 1, Compare(2.5, int64(2)))
	assert.Equal(t, 0, Compare("a", "a"))
	assert.Equal(t, -1, Compare(time.Unix(0, 0), time.Unix(1, 0)))
}

func TestMarkdownTruncates(t *testing.T) {
	tbl := New([]string{"a", "b"}, [][]any{{1, "x|y"}, {2, "z"}, {3, "w"}})
	md := tbl.Markdown(2)
	assert.Contains(t, md, "| a | b |\n| --- | --- |\n")
	assert.Contains(t, md, `| 1 | x\|y |`)
	assert.NotContains(t, md, "| 3 |")
	assert.Contains(t, md, "1 more rows")
}

func TestMetricsUseThousandsSeparators(t *testing.T) {
	rows := make([][]any, 12345)
	for i := range rows {
		rows[i] = []any{i}
	}
	m := New([]string{"n"}, rows).Metrics()
	assert.Equal(t, Metrics{Rows: "12,345", Columns: "1"}, m)
}

func TestExportName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	assert.Equal(t, "export_20240309_140506.xlsx", ExportName(now, "xlsx"))
}

func TestCSVAndXLSXAreTotalOnEmptyTables(t *testing.T) {
	tbl := New([]string{"company", "deals"}, nil)

	b, err := tbl.CSV()
	require.NoError(t, err)
	assert.Equal(t, "company,deals\n", string(b))

	x, err := tbl.XLSX()
	require.NoError(t, err)
	assert.NotEmpty(t, x)
}
