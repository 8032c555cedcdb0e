// Package table holds per-unit tables: one row per unit id, one named float
// column per quantity. Values live in a gonum dense matrix so tables can be
// multiplied directly.
package table

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnknownID is returned for lookups of ids a table does not contain.
	ErrUnknownID = errors.New("unknown id")

	// ErrUnknownColumn is returned for lookups of missing columns.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMisaligned is returned when two tables cannot be combined.
	ErrMisaligned = errors.New("tables are not aligned")
)

// Table is a dense ids x columns table of float64.
type Table struct {
	ids     []string
	columns []string
	rowIdx  map[string]int
	colIdx  map[string]int
	data    *mat.Dense
}

// New returns a zero-filled table.
func New(ids, columns []string) (*Table, error) {
	t := &Table{
		ids:     append([]string(nil), ids...),
		columns: append([]string(nil), columns...),
		rowIdx:  make(map[string]int, len(ids)),
		colIdx:  make(map[string]int, len(columns)),
	}
	for i, id := range ids {
		if _, dup := t.rowIdx[id]; dup {
			return nil, fmt.Errorf("duplicate id %q", id)
		}
		t.rowIdx[id] = i
	}
	for j, c := range columns {
		if _, dup := t.colIdx[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		t.colIdx[c] = j
	}
	if len(ids) > 0 && len(columns) > 0 {
		t.data = mat.NewDense(len(ids), len(columns), nil)
	}
	return t, nil
}

// MustNew is New for literal ids and columns known to be unique.
func MustNew(ids, columns []string) *Table {
	t, err := New(ids, columns)
	if err != nil {
		panic(err)
	}
	return t
}

// IDs returns the row ids in order.
func (t *Table) IDs() []string {
	return append([]string(nil), t.ids...)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Dims returns the number of rows and columns.
func (t *Table) Dims() (int, int) {
	return len(t.ids), len(t.columns)
}

// RowIndex returns the position of id.
func (t *Table) RowIndex(id string) (int, bool) {
	i, ok := t.rowIdx[id]
	return i, ok
}

// ColumnIndex returns the position of column name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	j, ok := t.colIdx[name]
	return j, ok
}

// HasColumn reports whether the table has column name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIdx[name]
	return ok
}

// At returns the value at row i, column j.
func (t *Table) At(i, j int) float64 {
	return t.data.At(i, j)
}

// SetAt assigns the value at row i, column j.
func (t *Table) SetAt(i, j int, v float64) {
	t.data.Set(i, j, v)
}

// Get returns the value for id and column.
func (t *Table) Get(id, column string) (float64, error) {
	i, j, err := t.index(id, column)
	if err != nil {
		return 0, err
	}
	return t.data.At(i, j), nil
}

// Set assigns the value for id and column.
func (t *Table) Set(id, column string, v float64) error {
	i, j, err := t.index(id, column)
	if err != nil {
		return err
	}
	t.data.Set(i, j, v)
	return nil
}

func (t *Table) index(id, column string) (int, int, error) {
	i, ok := t.rowIdx[id]
	if !ok {
		return 0, 0, fmt.Errorf("%q: %w", id, ErrUnknownID)
	}
	j, ok := t.colIdx[column]
	if !ok {
		return 0, 0, fmt.Errorf("%q: %w", column, ErrUnknownColumn)
	}
	return i, j, nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []float64 {
	out := make([]float64, len(t.columns))
	if t.data != nil {
		mat.Row(out, i, t.data)
	}
	return out
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	j, ok := t.colIdx[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownColumn)
	}
	out := make([]float64, len(t.ids))
	if t.data != nil {
		mat.Col(out, j, t.data)
	}
	return out, nil
}

// SetColumn overwrites the named column.
func (t *Table) SetColumn(name string, values []float64) error {
	j, ok := t.colIdx[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownColumn)
	}
	if len(values) != len(t.ids) {
		return fmt.Errorf("column %q has %d values for %d rows: %w", name, len(values), len(t.ids), ErrMisaligned)
	}
	if t.data != nil {
		t.data.SetCol(j, values)
	}
	return nil
}

// RowSum sums row i.
func (t *Table) RowSum(i int) float64 {
	return floats.Sum(t.Row(i))
}

// ColumnSum sums the named column.
func (t *Table) ColumnSum(name string) (float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	return floats.Sum(col), nil
}

// Total sums all values.
func (t *Table) Total() float64 {
	if t.data == nil {
		return 0
	}
	return mat.Sum(t.data)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := MustNew(t.ids, t.columns)
	if t.data != nil {
		out.data.Copy(t.data)
	}
	return out
}

// Select returns a table restricted to the given columns, in that order.
func (t *Table) Select(columns ...string) (*Table, error) {
	out, err := New(t.ids, columns)
	if err != nil {
		return nil, err
	}
	for _, c := range columns {
		col, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		if err := out.SetColumn(c, col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Reindex returns a table with rows in the order of ids. Ids missing from t
// are an error.
func (t *Table) Reindex(ids []string) (*Table, error) {
	out, err := New(ids, t.columns)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		src, ok := t.rowIdx[id]
		if !ok {
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownID)
		}
		if out.data != nil {
			out.data.SetRow(i, t.Row(src))
		}
	}
	return out, nil
}

// Rename returns a copy with columns renamed through fn.
func (t *Table) Rename(fn func(string) string) (*Table, error) {
	cols := make([]string, len(t.columns))
	for j, c := range t.columns {
		cols[j] = fn(c)
	}
	out, err := New(t.ids, cols)
	if err != nil {
		return nil, err
	}
	if t.data != nil {
		out.data.Copy(t.data)
	}
	return out, nil
}

// Join concatenates the columns of tables sharing the same ids. Rows of later
// tables are matched by id, so their order may differ.
func Join(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return MustNew(nil, nil), nil
	}
	ids := tables[0].ids
	var columns []string
	for _, tb := range tables {
		if len(tb.ids) != len(ids) {
			return nil, fmt.Errorf("joining %d rows with %d rows: %w", len(tb.ids), len(ids), ErrMisaligned)
		}
		columns = append(columns, tb.columns...)
	}
	out, err := New(ids, columns)
	if err != nil {
		return nil, err
	}
	for _, tb := range tables {
		aligned, err := tb.Reindex(ids)
		if err != nil {
			return nil, err
		}
		for _, c := range tb.columns {
			col, _ := aligned.Column(c)
			if err := out.SetColumn(c, col); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Product returns a·b, matching the columns of a with the ids of b. The
// result has the ids of a and the columns of b.
func Product(a, b *Table) (*Table, error) {
	bb, err := b.Reindex(a.columns)
	if err != nil {
		return nil, fmt.Errorf("aligning product operands: %w", err)
	}
	out, err := New(a.ids, b.columns)
	if err != nil {
		return nil, err
	}
	if out.data != nil && a.data != nil {
		out.data.Mul(a.data, bb.data)
	}
	return out, nil
}

// Apply replaces every value with fn(column, value).
func (t *Table) Apply(fn func(column string, v float64) float64) {
	if t.data == nil {
		return
	}
	t.data.Apply(func(_, j int, v float64) float64 {
		return fn(t.columns[j], v)
	}, t.data)
}
