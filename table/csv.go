package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteCSV writes the table as comma-separated UTF-8 text with a header
// row. Nulls are empty cells. A record made of one empty cell is written
// as a quoted empty field, since readers skip blank lines.
func (t *Table) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, v := range r {
			rec[i] = FormatCell(v)
		}
		if len(rec) == 1 && rec[0] == "" {
			cw.Flush()
			if _, err := bw.WriteString("\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// CSV returns the delimited-text export.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadCSV parses delimited text written by WriteCSV. Column types are
// inferred from the text: integers, then floats, then booleans, then
// RFC 3339 timestamps, else strings. Empty cells are nulls.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	cr.FieldsPerRecord = len(header)

	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromText(header, recs), nil
}

// fromText types string records column by column.
func fromText(header []string, recs [][]string) *Table {
	rows := make([][]any, len(recs))
	for i := range rows {
		rows[i] = make([]any, len(header))
	}
	for j := range header {
		parse := inferParser(recs, j)
		for i, rec := range recs {
			if j >= len(rec) || rec[j] == "" {
				continue
			}
			rows[i][j] = parse(rec[j])
		}
	}
	return New(header, rows)
}

type parser func(string) any

func inferParser(recs [][]string, j int) parser {
	candidates := []struct {
		ok    func(string) bool
		parse parser
	}{
		{
			func(s string) bool { _, err := strconv.ParseInt(s, 10, 64); return err == nil },
			func(s string) any { v, _ := strconv.ParseInt(s, 10, 64); return v },
		},
		{
			func(s string) bool { _, err := strconv.ParseFloat(s, 64); return err == nil },
			func(s string) any { v, _ := strconv.ParseFloat(s, 64); return v },
		},
		{
			func(s string) bool { return s == "true" || s == "false" },
			func(s string) any { return s == "true" },
		},
		{
			func(s string) bool { _, err := time.Parse(time.RFC3339Nano, s); return err == nil },
			func(s string) any { v, _ := time.Parse(time.RFC3339Nano, s); return v },
		},
	}

next:
	for _, c := range candidates {
		seen := false
		for _, rec := range recs {
			if j >= len(rec) || rec[j] == "" {
				continue
			}
			if !c.ok(rec[j]) {
				continue next
			}
			seen = true
		}
		if seen {
			return c.parse
		}
	}
	return func(s string) any { return s }
}
