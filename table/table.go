// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

// Package table applies coordinate normalization to tabular data.
package table

import "fmt"

// Table is an in-memory dataset of named columns. A nil cell is null.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// New returns an empty table with the given header.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row. Short rows are padded with nulls.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the first column with the given name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}

	return -1, false
}

// Cell returns the value at row and column, nil when the row is shorter than
// the header.
func (t *Table) Cell(row, col int) any {
	r := t.Rows[row]
	if col >= len(r) {
		return nil
	}

	return r[col]
}

func (t *Table) validate() error {
	for i, r := range t.Rows {
		if len(r) > len(t.Columns) {
			return &ConversionError{
				Type:    ErrorTypeMalformedTable,
				Message: fmt.Sprintf("row %d has %d cells but the header has %d columns", i, len(r), len(t.Columns)),
			}
		}
	}

	return nil
}

// uniqueName returns name, or name with the first free numeric suffix when
// the table already has such a column.
func uniqueName(columns []string, name string) string {
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}

	if !taken[name] {
		return name
	}

	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
