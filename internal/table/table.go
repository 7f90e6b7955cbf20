// Package table holds the in-memory tabular dataset passed between pipeline
// stages and the CSV/XLSX codecs that read and write it.
package table

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMissingColumn is returned when a named column is absent from a table.
var ErrMissingColumn = eris.New("table: missing column")

// missingTokens are cell values treated as missing when coercing to numbers.
var missingTokens = map[string]bool{
	"":      true,
	"na":    true,
	"n/a":   true,
	"#n/a":  true,
	"nan":   true,
	"null":  true,
	"none":  true,
	"-nan":  true,
	"<na>":  true,
	"#null": true,
}

// Column is a named column of raw cell values.
type Column struct {
	Name   string
	Values []string
}

// Table is a header plus string rows. Cells are kept raw; typed access goes
// through the numeric helpers so coercion rules live in one place.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// New builds a table from a header and rows. Short rows are padded with empty
// cells and long rows are truncated to the header width.
func New(header []string, rows [][]string) (*Table, error) {
	t := &Table{
		header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
		rows:   make([][]string, len(rows)),
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := t.index[h]; dup {
			return nil, eris.Errorf("table: duplicate column %q", h)
		}
		t.header[i] = h
		t.index[h] = i
	}
	for i, r := range rows {
		row := make([]string, len(header))
		copy(row, r)
		t.rows[i] = row
	}
	return t, nil
}

// Header returns a copy of the column names in order.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Value returns the raw cell at row i of the named column, or "" if the
// column does not exist.
func (t *Table) Value(i int, name string) string {
	idx, ok := t.index[name]
	if !ok {
		return ""
	}
	return t.rows[i][idx]
}

// Column returns a copy of the named column's raw values.
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.index[name]
	if !ok {
		return nil, eris.Wrapf(ErrMissingColumn, "column %q", name)
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Numeric returns the named column coerced to float64. Cells that cannot be
// parsed, or parse to a non-finite value, become NaN.
func (t *Table) Numeric(name string) ([]float64, error) {
	raw, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, ok := ParseFloat(s)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, nil
}

// WithColumns returns a new table with the given columns appended. A column
// whose name already exists replaces the existing values in place. The
// receiver is not modified.
func (t *Table) WithColumns(cols ...Column) (*Table, error) {
	header := t.Header()
	index := make(map[string]int, len(header)+len(cols))
	for k, v := range t.index {
		index[k] = v
	}
	for _, c := range cols {
		if len(c.Values) != len(t.rows) {
			return nil, eris.Errorf("table: column %q has %d values, table has %d rows", c.Name, len(c.Values), len(t.rows))
		}
		if _, ok := index[c.Name]; !ok {
			index[c.Name] = len(header)
			header = append(header, c.Name)
		}
	}

	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(header))
		copy(row, r)
		for _, c := range cols {
			row[index[c.Name]] = c.Values[i]
		}
		rows[i] = row
	}
	return &Table{header: header, index: index, rows: rows}, nil
}

// ParseFloat coerces a raw cell to a finite float64. The boolean is false for
// missing tokens, unparseable text, NaN and infinities.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if missingTokens[strings.ToLower(s)] {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatFloat renders a float in the shortest form that round-trips. NaN is
// written as an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
