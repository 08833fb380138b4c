// query.go executes generated SQL and collects the result into a
// table.Table.
//
// Errors are returned, never logged or printed.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/DachengChen/paiAnalyst/table"
)

// Execute runs one SQL statement and returns its rows.
func (d *DB) Execute(ctx context.Context, stmt string) (*table.Table, error) {
	stmt = strings.TrimSpace(stmt)
	if stmt == "" {
		return nil, errors.New("empty query")
	}
	switch {
	case d.Pool != nil:
		return d.executePgx(ctx, stmt)
	case d.SQL != nil:
		return d.executeSQL(ctx, stmt)
	}
	return nil, errors.New("not connected")
}

func (d *DB) executePgx(ctx context.Context, stmt string) (*table.Table, error) {
	rows, err := d.Pool.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for _, fd := range rows.FieldDescriptions() {
		names = append(names, fd.Name)
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = pgValue(v)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table.New(names, data), nil
}

// pgValue converts pgx values that table.New cannot interpret.
func pgValue(v any) any {
	switch v := v.(type) {
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(v).String()
	}
	return v
}

func (d *DB) executeSQL(ctx context.Context, stmt string) (*table.Table, error) {
	rows, err := d.SQL.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = textValue(v, types[i])
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table.New(names, data), nil
}

// textValue decodes the []byte cells MySQL's text protocol returns for
// numeric columns.
func textValue(v any, ct *sql.ColumnType) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	name := strings.ToUpper(ct.DatabaseTypeName())
	switch {
	case strings.Contains(name, "INT") || name == "YEAR":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case name == "DECIMAL" || name == "FLOAT" || name == "DOUBLE" || name == "REAL" || name == "NUMERIC":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// Executor runs SQL for the session controller.
type Executor interface {
	Execute(ctx context.Context, stmt string) (*table.Table, error)
}

var _ Executor = (*DB)(nil)

// String describes the connection for the status bar.
func (d *DB) String() string {
	if d == nil {
		return "not connected"
	}
	s := d.Driver
	if d.Tunnel != nil {
		s += " via ssh"
	}
	return fmt.Sprintf("warehouse: %s", s)
}
