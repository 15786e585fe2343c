// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package features

import (
	"errors"
	"fmt"
)

// ErrColumnMissing is returned when a requested feature column is absent.
var ErrColumnMissing = errors.New("feature column missing")

// Matrix is a dense row-major feature matrix with named columns.
type Matrix struct {
	Names []string
	Rows  [][]float64
}

// BuildMatrix extracts the named columns from ds. Missing and non-numeric
// cells become 0.
func BuildMatrix(ds *Dataset, names []string) (*Matrix, error) {
	cols := make([][]float64, len(names))
	for j, name := range names {
		if !ds.Has(name) {
			return nil, fmt.Errorf("%w: %s", ErrColumnMissing, name)
		}
		cols[j] = ds.Floats(name)
	}

	rows := make([][]float64, ds.Len())
	for i := range rows {
		row := make([]float64, len(names))
		for j := range names {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}

	return &Matrix{
		Names: append([]string(nil), names...),
		Rows:  rows,
	}, nil
}

// Subset returns a matrix holding the given row indices.
func (m *Matrix) Subset(idx []int) *Matrix {
	rows := make([][]float64, len(idx))
	for i, j := range idx {
		rows[i] = m.Rows[j]
	}
	return &Matrix{Names: m.Names, Rows: rows}
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.Rows)
}
