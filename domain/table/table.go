package table

import "fmt"

// missingValue is the uniform marker for absent observations. Sources map
// their own sentinels (SQL NULL, blank cells, numeric missing codes) to this
// one value before a table leaves the adapter.
type missingValue struct{}

func (missingValue) String() string { return "." }

// Missing is the single missing-value marker used across all sources.
var Missing = missingValue{}

// IsMissing reports whether a cell holds the missing marker.
func IsMissing(v any) bool {
	_, ok := v.(missingValue)
	return ok
}

// Column is a named column of observations.
type Column struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

// Table is a column-major in-memory result set. All columns have equal
// length. The caller owns a returned table; nothing is cached or reused.
type Table struct {
	Columns []Column `json:"columns"`
}

// New creates an empty table with the given column names.
func New(names ...string) *Table {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name}
	}
	return &Table{Columns: cols}
}

// NumRows returns the number of observations.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// IsEmpty reports whether the table holds no observations.
func (t *Table) IsEmpty() bool {
	return t.NumRows() == 0
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil if no such column exists.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// AppendRow appends one observation. The number of values must match the
// number of columns.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	for i, v := range values {
		t.Columns[i].Values = append(t.Columns[i].Values, v)
	}
	return nil
}

// Row returns the i-th observation as a name-keyed map.
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		row[c.Name] = c.Values[i]
	}
	return row
}

// Head returns a copy of the first n observations (fewer if the table is
// shorter).
func (t *Table) Head(n int) *Table {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	out := New(t.ColumnNames()...)
	for i := range out.Columns {
		out.Columns[i].Values = append([]any(nil), t.Columns[i].Values[:n]...)
	}
	return out
}

// Float64s extracts the numeric values of a column, skipping missing cells.
// Non-numeric cells produce an error naming the column.
func (c *Column) Float64s() ([]float64, error) {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if IsMissing(v) {
			continue
		}
		f, ok := asFloat64(v)
		if !ok {
			return nil, fmt.Errorf("column %s holds non-numeric value %v", c.Name, v)
		}
		out = append(out, f)
	}
	return out, nil
}

// MissingCount returns the number of missing cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
