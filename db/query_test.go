package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/table"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	d, err := Connect(context.Background(), config.WarehouseConfig{Driver: config.DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestSelectOneExportsSingleRow(t *testing.T) {
	d := openSQLite(t)
	tbl, err := d.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)

	require.Len(t, tbl.Columns, 1)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, int64(1), tbl.Rows[0][0])

	csv, err := tbl.CSV()
	require.NoError(t, err)
	assert.Equal(t, "1\n1\n", string(csv))
}

func TestExecuteTypedColumns(t *testing.T) {
	d := openSQLite(t)
	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE deals (company TEXT, region TEXT, value REAL, n INTEGER)`,
		`INSERT INTO deals VALUES ('Acme', 'EU', 10.5, 3), ('Globex', 'US', 7, 1), ('Initech', NULL, NULL, 2)`,
	} {
		_, err := d.SQL.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	tbl, err := d.Execute(ctx, "SELECT company, region, value, n FROM deals ORDER BY company")
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "region", "value", "n"}, tbl.Names())
	assert.Equal(t, table.Categorical, tbl.Columns[0].Kind)
	assert.Equal(t, table.Numeric, tbl.Columns[2].Kind)
	assert.Equal(t, table.Numeric, tbl.Columns[3].Kind)
	assert.Nil(t, tbl.Rows[2][1])
	assert.Equal(t, 7.0, tbl.Rows[1][2])
}

func TestExecuteErrors(t *testing.T) {
	d := openSQLite(t)
	_, err := d.Execute(context.Background(), "   ")
	assert.EqualError(t, err, "empty query")

	_, err = d.Execute(context.Background(), "SELECT * FROM missing_table")
	assert.Error(t, err)

	_, err = (&DB{}).Execute(context.Background(), "SELECT 1")
	assert.EqualError(t, err, "not connected")
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(context.Background(), config.WarehouseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unknown warehouse driver")
}

func TestPgValue(t *testing.T) {
	var n pgtype.Numeric
	require.NoError(t, n.Scan("12.5"))
	assert.Equal(t, 12.5, pgValue(n))
	assert.Nil(t, pgValue(pgtype.Numeric{}))

	id := [16]byte{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8}
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", pgValue(id))
	assert.Equal(t, int32(4), pgValue(int32(4)))
}
