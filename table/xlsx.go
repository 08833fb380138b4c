package table

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the only sheet of a spreadsheet export.
const SheetName = "Data"

// WriteXLSX writes the table as a workbook with a single "Data" sheet
// and a header row. Nulls are left as empty cells; booleans and
// timestamps are written as text so they read back unchanged.
func (t *Table) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	for j, c := range t.Columns {
		if err := setCell(f, j+1, 1, c.Name); err != nil {
			return err
		}
	}
	for i, r := range t.Rows {
		for j, v := range r {
			if v == nil {
				continue
			}
			var cell any = v
			switch v.(type) {
			case bool:
				cell = FormatCell(v)
			default:
				if t.Columns[j].Kind == Temporal {
					cell = FormatCell(v)
				}
			}
			if err := setCell(f, j+1, i+2, cell); err != nil {
				return err
			}
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func setCell(f *excelize.File, col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, name, v)
}

// XLSX returns the spreadsheet export.
func (t *Table) XLSX() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteXLSX(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadXLSX reads the "Data" sheet of a workbook written by WriteXLSX.
// Integral floats read back as integers when the whole column is
// integral; trailing rows that are entirely null are not stored by the
// format and are lost.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read xlsx: sheet %q has no header row", SheetName)
	}
	header := rows[0]
	recs := make([][]string, len(rows)-1)
	for i, r := range rows[1:] {
		rec := make([]string, len(header))
		copy(rec, r)
		recs[i] = rec
	}
	return fromText(header, recs), nil
}
