package domain

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row maps a column name to a scalar value (string, float64, bool or nil),
// keeping the column order of the generator's response.
type Row = orderedmap.OrderedMap[string, any]

// Cell is a single column/value pair used to build a Row.
type Cell struct {
	Column string
	Value  any
}

// NewRow builds a row from cells in the given order.
func NewRow(cells ...Cell) *Row {
	row := orderedmap.New[string, any]()
	for _, c := range cells {
		row.Set(c.Column, c.Value)
	}
	return row
}

// Columns returns the rendered headers: the keys of the first row.
// An empty table has no headers.
func Columns(rows []*Row) []string {
	if len(rows) == 0 || rows[0] == nil {
		return nil
	}
	cols := make([]string, 0, rows[0].Len())
	for pair := rows[0].Oldest(); pair != nil; pair = pair.Next() {
		cols = append(cols, pair.Key)
	}
	return cols
}

// Cells returns the row's values in the order of columns.
// Missing columns render as nil.
func Cells(row *Row, columns []string) []any {
	out := make([]any, len(columns))
	if row == nil {
		return out
	}
	for i, col := range columns {
		if v, ok := row.Get(col); ok {
			out[i] = v
		}
	}
	return out
}

// CloneRows copies every row so the result can be handed to another block.
func CloneRows(rows []*Row) []*Row {
	if rows == nil {
		return nil
	}
	out := make([]*Row, len(rows))
	for i, r := range rows {
		if r == nil {
			continue
		}
		cp := orderedmap.New[string, any]()
		for pair := r.Oldest(); pair != nil; pair = pair.Next() {
			cp.Set(pair.Key, pair.Value)
		}
		out[i] = cp
	}
	return out
}
