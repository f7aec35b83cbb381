// Package dataset holds the in-memory tabular model and the preparation
// steps applied to it before plotting: column selection, renaming, dropping
// and date coercion. Rows are never filtered; missing values survive as
// nulls.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a single nullable cell.
type Value struct {
	str   string
	valid bool
}

// String wraps a non-null cell value.
func String(s string) Value {
	return Value{str: s, valid: true}
}

// Null returns the null cell value.
func Null() Value {
	return Value{}
}

// IsNull reports whether the cell holds no value.
func (v Value) IsNull() bool {
	return !v.valid
}

// Text returns the raw cell text, empty for null cells.
func (v Value) Text() string {
	return v.str
}

// Float parses the cell as a float64.
func (v Value) Float() (float64, error) {
	if !v.valid {
		return 0, fmt.Errorf("null value")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", v.str)
	}
	return f, nil
}

// Int parses the cell as an integer, accepting float notation for whole
// numbers (cluster labels often arrive as "1.0").
func (v Value) Int() (int, error) {
	f, err := v.Float()
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("not an integer: %q", v.str)
	}
	return n, nil
}

// Time parses the cell as a timestamp using the supported layouts.
func (v Value) Time() (time.Time, error) {
	if !v.valid {
		return time.Time{}, fmt.Errorf("null value")
	}
	return ParseTime(v.str)
}

// ColumnError reports a named column that is absent from a table.
type ColumnError struct {
	Column    string
	Available []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column '%s' not found. Available columns: %v", e.Column, e.Available)
}

// Table is an ordered set of named columns over rows of nullable cells.
// Column lookup is case-insensitive. The zero Table is not usable; build
// one with New.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Value
}

// New creates an empty table with the given column names.
func New(columns ...string) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table needs at least one column")
	}
	t := &Table{
		cols:  make([]string, len(columns)),
		index: make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		name := strings.TrimSpace(c)
		key := strings.ToLower(name)
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("duplicate column '%s'", name)
		}
		t.cols[i] = name
		t.index[key] = i
	}
	return t, nil
}

// AppendRow adds one row. The number of cells must match the column count.
func (t *Table) AppendRow(cells ...Value) error {
	if len(cells) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.cols))
	}
	row := make([]Value, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ColumnIndex resolves a column name to its index, or a *ColumnError.
func (t *Table) ColumnIndex(name string) (int, error) {
	i, ok := t.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, &ColumnError{Column: name, Available: t.Columns()}
	}
	return i, nil
}

// Value returns the cell at the given row for the named column.
func (t *Table) Value(row int, column string) (Value, error) {
	i, err := t.ColumnIndex(column)
	if err != nil {
		return Value{}, err
	}
	if row < 0 || row >= len(t.rows) {
		return Value{}, fmt.Errorf("row %d out of range (%d rows)", row, len(t.rows))
	}
	return t.rows[row][i], nil
}

// SetValue overwrites the cell at the given row for the named column.
func (t *Table) SetValue(row int, column string, v Value) error {
	i, err := t.ColumnIndex(column)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range (%d rows)", row, len(t.rows))
	}
	t.rows[row][i] = v
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		cols:  make([]string, len(t.cols)),
		index: make(map[string]int, len(t.index)),
		rows:  make([][]Value, len(t.rows)),
	}
	copy(out.cols, t.cols)
	for k, v := range t.index {
		out.index[k] = v
	}
	for i, r := range t.rows {
		row := make([]Value, len(r))
		copy(row, r)
		out.rows[i] = row
	}
	return out
}
