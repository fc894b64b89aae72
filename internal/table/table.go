// Package table holds the tabular input model shared by the CSV and Google
// Sheets loaders. The first column of every table identifies its rows.
package table

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned when a source has a header but no data rows.
	ErrEmpty = errors.New("table has no data rows")

	// ErrNotFound is returned when a selected item does not match any row.
	ErrNotFound = errors.New("item not found")
)

// Table is a header plus rows of string cells. Every row has exactly
// len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Row is a view of a single table row together with its column names.
type Row struct {
	Index   int
	Columns []string
	Values  []string
}

// Identifier returns the value of the first column.
func (r Row) Identifier() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// Fields returns the column/value pairs after the identifier column.
func (r Row) Fields() []Field {
	if len(r.Columns) <= 1 {
		return nil
	}
	fields := make([]Field, 0, len(r.Columns)-1)
	for i := 1; i < len(r.Columns); i++ {
		var v string
		if i < len(r.Values) {
			v = r.Values[i]
		}
		fields = append(fields, Field{Name: r.Columns[i], Value: v})
	}
	return fields
}

// Field is a single column name and its cell value.
type Field struct {
	Name  string
	Value string
}

// New builds a Table, normalizing every row to the header width.
func New(columns []string, rows [][]string) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	t := &Table{Columns: columns, Rows: make([][]string, len(rows))}
	for i, row := range rows {
		t.Rows[i] = normalizeRow(row, len(columns))
	}
	return t, nil
}

func normalizeRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.Columns) }

// IdentifierColumn returns the name of the first column.
func (t *Table) IdentifierColumn() string {
	if len(t.Columns) == 0 {
		return ""
	}
	return t.Columns[0]
}

// Row returns the row at position i.
func (t *Table) Row(i int) Row {
	return Row{Index: i, Columns: t.Columns, Values: t.Rows[i]}
}

// ItemNames returns the identifier of every row, in order.
func (t *Table) ItemNames() []string {
	names := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		names[i] = row[0]
	}
	return names
}

// Find returns the first row whose identifier equals name.
func (t *Table) Find(name string) (Row, bool) {
	for i, row := range t.Rows {
		if row[0] == name {
			return t.Row(i), true
		}
	}
	return Row{}, false
}

// Select resolves each name to its first matching row, keeping the order of
// names.
func (t *Table) Select(names []string) ([]Row, error) {
	rows := make([]Row, 0, len(names))
	for _, name := range names {
		row, ok := t.Find(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// All returns every row by position.
func (t *Table) All() []Row {
	rows := make([]Row, len(t.Rows))
	for i := range t.Rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// CleanValue trims v and substitutes placeholder for values that carry no
// information.
func CleanValue(v, placeholder string) string {
	s := strings.TrimSpace(v)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return placeholder
	}
	return s
}

var sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ExtractSheetID pulls the spreadsheet ID out of a Google Sheets URL.
func ExtractSheetID(url string) (string, bool) {
	m := sheetIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ColumnToLetter converts a 1-based column index to A1 notation letters.
func ColumnToLetter(n int) string {
	var letters []byte
	for n > 0 {
		rem := (n - 1) % 26
		n = (n - 1) / 26
		letters = append([]byte{byte('A' + rem)}, letters...)
	}
	return string(letters)
}

// FullRange returns the A1 range covering rows x cols from A1.
func FullRange(rows, cols int) string {
	return "A1:" + ColumnToLetter(cols) + strconv.Itoa(rows)
}
