// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

// Package ingest converts uploaded CSV files and JSON record arrays into
// feature datasets.
//
// CSV cells are read as text and coerced afterwards: cells that parse as a
// number become float64, blank and NA-like cells become missing, and
// everything else stays a string. Dates are left as text for the feature
// engineer to parse.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/goccy/go-json"

	"github.com/tomtom215/postpredict/internal/features"
)

var (
	// ErrEmptyInput is returned when an upload holds no rows.
	ErrEmptyInput = errors.New("no rows in input")

	// ErrInvalidInput is returned when an upload cannot be parsed.
	ErrInvalidInput = errors.New("invalid input")
)

// naValues are CSV cells treated as missing.
var naValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<nil>"}

// ReadCSV parses a CSV document with a header row.
func ReadCSV(r io.Reader) (*features.Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, df.Err)
	}

	rows, cols := df.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyInput
	}

	names := df.Names()
	columns := make([][]any, len(names))
	for j, name := range names {
		s := df.Col(name)
		col := make([]any, rows)
		for i := 0; i < rows; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				continue
			}
			col[i] = coerceCell(e.String())
		}
		columns[j] = col
	}

	return features.FromColumns(names, columns)
}

// ReadJSON parses a JSON array of objects. Columns are the union of object
// keys in sorted order; absent keys become missing cells.
func ReadJSON(r io.Reader) (*features.Dataset, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	seen := make(map[string]struct{})
	var keys []string
	for _, rec := range records {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	return features.FromRecords(keys, records), nil
}

// coerceCell maps CSV text onto a dataset cell. Non-finite numbers stay text.
func coerceCell(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

// Preview returns up to n rows of ds as maps.
func Preview(ds *features.Dataset, n int) []map[string]any {
	if n > ds.Len() {
		n = ds.Len()
	}
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = ds.Row(i)
	}
	return out
}
