package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Timestamp layouts accepted by ParseTime and CoerceDates, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// canonicalLayout is the form date cells are normalized to by CoerceDates.
const canonicalLayout = "2006-01-02 15:04:05"

// ParseTime parses a timestamp string, trying each supported layout.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var ts time.Time
	var err error
	for _, layout := range timeLayouts {
		ts, err = time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp '%s': %w", s, err)
}

// DateErrorMode selects how CoerceDates treats unparseable date cells.
type DateErrorMode int

const (
	// DateErrorFail aborts coercion on the first malformed date.
	DateErrorFail DateErrorMode = iota
	// DateErrorNull replaces malformed dates with null cells.
	DateErrorNull
)

// Preparer transforms a table before plotting: select, rename, drop,
// optionally sort by a start-date column. Rows are preserved; nulls are
// kept as nulls.
type Preparer struct {
	// SelectedColumns keeps only the named columns, in the given order.
	// Empty means keep all columns.
	SelectedColumns []string
	// RenameColumns maps old names to new names. Every old name must exist.
	RenameColumns map[string]string
	// DropColumns removes the named columns after selection and renaming.
	// Every named column must exist.
	DropColumns []string
	// SortBy, when set, stably sorts rows by the named column's timestamp
	// value. Null cells sort last.
	SortBy string
}

// Prepare applies the configured steps in order and returns a new table.
// The input table is not modified.
func (p Preparer) Prepare(t *Table) (*Table, error) {
	out := t.Clone()

	if len(p.SelectedColumns) > 0 {
		indices := make([]int, len(p.SelectedColumns))
		for i, name := range p.SelectedColumns {
			idx, err := out.ColumnIndex(name)
			if err != nil {
				return nil, fmt.Errorf("select: %w", err)
			}
			indices[i] = idx
		}
		selected, err := New(p.SelectedColumns...)
		if err != nil {
			return nil, err
		}
		for _, row := range out.rows {
			cells := make([]Value, len(indices))
			for i, idx := range indices {
				cells[i] = row[idx]
			}
			if err := selected.AppendRow(cells...); err != nil {
				return nil, err
			}
		}
		out = selected
	}

	for old, renamed := range p.RenameColumns {
		idx, err := out.ColumnIndex(old)
		if err != nil {
			return nil, fmt.Errorf("rename: %w", err)
		}
		key := strings.ToLower(strings.TrimSpace(renamed))
		if existing, ok := out.index[key]; ok && existing != idx {
			return nil, fmt.Errorf("rename: column '%s' already exists", renamed)
		}
		delete(out.index, strings.ToLower(out.cols[idx]))
		out.cols[idx] = renamed
		out.index[key] = idx
	}

	for _, name := range p.DropColumns {
		idx, err := out.ColumnIndex(name)
		if err != nil {
			return nil, fmt.Errorf("drop: %w", err)
		}
		cols := append(append([]string{}, out.cols[:idx]...), out.cols[idx+1:]...)
		dropped, err := New(cols...)
		if err != nil {
			return nil, err
		}
		for _, row := range out.rows {
			cells := append(append([]Value{}, row[:idx]...), row[idx+1:]...)
			if err := dropped.AppendRow(cells...); err != nil {
				return nil, err
			}
		}
		out = dropped
	}

	if p.SortBy != "" {
		if err := sortByTime(out, p.SortBy); err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
	}

	return out, nil
}

// sortByTime stably sorts rows by the named column's parsed timestamp.
// Cells that are null or unparseable keep their relative order at the end.
func sortByTime(t *Table, column string) error {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return err
	}
	type keyed struct {
		ts time.Time
		ok bool
	}
	keys := make([]keyed, len(t.rows))
	for i, row := range t.rows {
		if row[idx].IsNull() {
			continue
		}
		ts, err := row[idx].Time()
		if err != nil {
			continue
		}
		keys[i] = keyed{ts: ts, ok: true}
	}
	perm := make([]int, len(t.rows))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ka, kb := keys[perm[a]], keys[perm[b]]
		switch {
		case ka.ok && kb.ok:
			return ka.ts.Before(kb.ts)
		case ka.ok:
			return true
		default:
			return false
		}
	})
	rows := make([][]Value, len(t.rows))
	for i, p := range perm {
		rows[i] = t.rows[p]
	}
	t.rows = rows
	return nil
}

// CoerceDates parses the named columns as timestamps and normalizes the
// cells to a canonical layout. Null cells pass through. Behavior on
// malformed values follows mode.
func CoerceDates(t *Table, columns []string, mode DateErrorMode) error {
	for _, col := range columns {
		idx, err := t.ColumnIndex(col)
		if err != nil {
			return err
		}
		for r, row := range t.rows {
			cell := row[idx]
			if cell.IsNull() || strings.TrimSpace(cell.Text()) == "" {
				t.rows[r][idx] = Null()
				continue
			}
			ts, err := ParseTime(cell.Text())
			if err != nil {
				if mode == DateErrorNull {
					t.rows[r][idx] = Null()
					continue
				}
				return fmt.Errorf("column '%s' row %d: %w", col, r, err)
			}
			t.rows[r][idx] = String(ts.Format(canonicalLayout))
		}
	}
	return nil
}
