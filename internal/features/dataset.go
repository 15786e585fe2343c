// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Dataset is a columnar table whose schema varies by upload.
//
// Cell values are nil (missing), float64, string, bool or time.Time.
// Column order is preserved for display; lookups are by name.
type Dataset struct {
	names []string
	cols  map[string][]any
	rows  int
}

// NewDataset creates an empty dataset with the given row count.
func NewDataset(rows int) *Dataset {
	return &Dataset{
		cols: make(map[string][]any),
		rows: rows,
	}
}

// FromColumns builds a dataset from parallel column slices.
// Every column must have the same length.
func FromColumns(names []string, columns [][]any) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), len(columns))
	}

	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}

	ds := NewDataset(rows)
	for i, name := range names {
		if err := ds.SetColumn(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// FromRecords builds a dataset from row maps with columns in keyOrder.
// Keys absent from a record become missing cells; keys not in keyOrder are dropped.
func FromRecords(keyOrder []string, records []map[string]any) *Dataset {
	ds := NewDataset(len(records))
	for _, name := range keyOrder {
		col := make([]any, len(records))
		for i, rec := range records {
			col[i] = normalizeValue(rec[name])
		}
		ds.set(name, col)
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.rows
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Has reports whether the named column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Column returns the named column's values, or nil if absent.
// The returned slice must not be modified.
func (d *Dataset) Column(name string) []any {
	return d.cols[name]
}

// Value returns the cell at (name, row), or nil if the column is absent.
func (d *Dataset) Value(name string, row int) any {
	col, ok := d.cols[name]
	if !ok {
		return nil
	}
	return col[row]
}

// SetColumn adds or replaces a column. The slice length must equal Len.
func (d *Dataset) SetColumn(name string, values []any) error {
	if len(values) != d.rows {
		return fmt.Errorf("column %q has %d values, dataset has %d rows", name, len(values), d.rows)
	}
	d.set(name, values)
	return nil
}

// set adds or replaces a column whose length is already known to match.
func (d *Dataset) set(name string, values []any) {
	if _, ok := d.cols[name]; !ok {
		d.names = append(d.names, name)
	}
	d.cols[name] = values
}

// Float returns the numeric value of a cell. ok is false for missing or
// non-numeric cells. Non-finite floats are returned as-is.
func (d *Dataset) Float(name string, row int) (float64, bool) {
	return toFloat(d.Value(name, row))
}

// String returns the textual value of a cell. ok is false for missing cells.
func (d *Dataset) String(name string, row int) (string, bool) {
	return toString(d.Value(name, row))
}

// Floats returns the named column coerced to float64. Missing, non-numeric
// and non-finite cells become 0. An absent column yields all zeros.
func (d *Dataset) Floats(name string) []float64 {
	out := make([]float64, d.rows)
	for i := range out {
		if v, ok := d.Float(name, i); ok && isFinite(v) {
			out[i] = v
		}
	}
	return out
}

// Row returns row i as a map, for previews.
func (d *Dataset) Row(i int) map[string]any {
	row := make(map[string]any, len(d.names))
	for _, name := range d.names {
		row[name] = d.cols[name][i]
	}
	return row
}

// Clone returns a copy whose columns can be replaced or reordered without
// affecting d. Cell values are immutable scalars and are shared.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		names: make([]string, len(d.names)),
		cols:  make(map[string][]any, len(d.cols)),
		rows:  d.rows,
	}
	copy(out.names, d.names)
	for name, col := range d.cols {
		c := make([]any, len(col))
		copy(c, col)
		out.cols[name] = c
	}
	return out
}

// reorder permutes every column so that new row i is old row idx[i].
func (d *Dataset) reorder(idx []int) {
	for name, col := range d.cols {
		c := make([]any, len(col))
		for i, j := range idx {
			c[i] = col[j]
		}
		d.cols[name] = c
	}
}

// toFloat coerces a cell to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case float32:
		return toFloat(float64(x))
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toString renders a cell as text.
func toString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		if x.IsZero() {
			return "", false
		}
		return x.Format(time.RFC3339), true
	default:
		return fmt.Sprint(x), true
	}
}

// normalizeValue maps decoded scalars onto the dataset's cell types.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil, string, float64, bool, time.Time:
		return x
	default:
		if f, ok := toFloat(x); ok {
			return f
		}
		return fmt.Sprint(x)
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
