package table

import (
	"sort"
	"strings"
)

// Row maps a column name to its raw string value
type Row map[string]string

// Get returns the value for key, or "" if the column is absent.
func (r Row) Get(key string) string {
	return r[key]
}

// Table is an ordered set of rows sharing one header. Every row carries
// exactly the header's keys.
type Table struct {
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
}

// Empty returns a table with no header and no rows.
func Empty() *Table {
	return &Table{Header: []string{}, Rows: []Row{}}
}

// Len returns the number of data rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether key is part of the header.
func (t *Table) HasColumn(key string) bool {
	for _, h := range t.Header {
		if h == key {
			return true
		}
	}
	return false
}

// Column returns the values of one column in row order.
func (t *Table) Column(key string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[key]
	}
	return values
}

// Distinct returns the distinct values of a column in first-seen order.
func (t *Table) Distinct(key string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.Rows {
		v := row[key]
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Filter returns a new table with the rows keep accepts. Rows are shared,
// not copied.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Header: t.Header, Rows: []Row{}}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n]}
}

// Tail returns the last n rows.
func (t *Table) Tail(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{Header: t.Header, Rows: t.Rows[len(t.Rows)-n:]}
}

// SortedBy returns a copy of the table ordered by the string value of key.
// The sort is stable so equal keys keep file order.
func (t *Table) SortedBy(key string) *Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][key] < rows[j][key]
	})
	return &Table{Header: t.Header, Rows: rows}
}

// Encode writes the table back as comma-delimited text, header first.
// Fields containing commas do not survive a re-parse.
func (t *Table) Encode() string {
	if len(t.Header) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, string(Delimiter)))
	fields := make([]string, len(t.Header))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		for i, h := range t.Header {
			fields[i] = row[h]
		}
		b.WriteString(strings.Join(fields, string(Delimiter)))
	}
	b.WriteByte('\n')
	return b.String()
}
