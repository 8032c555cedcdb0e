package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// IDColumn is the name of the first CSV column.
const IDColumn = "id"

// ReadCSV parses a table whose first column holds unit ids. Empty cells are
// read as NaN, marking missing data.
func ReadCSV(r io.Reader) (*Table, error) {
	rd := csv.NewReader(r)
	records, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading csv: no header")
	}
	header := records[0]
	if len(header) == 0 || header[0] != IDColumn {
		return nil, fmt.Errorf("reading csv: first column must be %q", IDColumn)
	}
	ids := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		ids = append(ids, rec[0])
	}
	t, err := New(ids, header[1:])
	if err != nil {
		return nil, err
	}
	for i, rec := range records[1:] {
		for j, cell := range rec[1:] {
			if cell == "" {
				t.SetAt(i, j, math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %q column %q: %w", rec[0], header[j+1], err)
			}
			t.SetAt(i, j, v)
		}
	}
	return t, nil
}

// WriteCSV writes t with the id column first.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{IDColumn}, t.columns...)); err != nil {
		return err
	}
	rec := make([]string, len(t.columns)+1)
	for i, id := range t.ids {
		rec[0] = id
		for j := range t.columns {
			v := t.At(i, j)
			if math.IsNaN(v) {
				rec[j+1] = ""
				continue
			}
			rec[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
