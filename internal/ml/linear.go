// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// svdRankTolerance is the relative singular value cutoff for the
// rank-deficient fallback.
const svdRankTolerance = 1e-10

// LinearRegressor is ordinary least squares with an intercept.
type LinearRegressor struct {
	Coefficients []float64
	Intercept    float64
}

// Fit solves for the coefficients on centered data. Full-rank systems use a
// QR solve; rank-deficient or underdetermined systems use the minimum-norm
// SVD solution.
func (r *LinearRegressor) Fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || n != len(y) {
		return fmt.Errorf("linear fit: %d rows for %d targets", n, len(y))
	}
	p := len(x[0])

	xMeans := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		xMeans[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	r.Coefficients = make([]float64, p)
	r.Intercept = yMean
	if p == 0 {
		return nil
	}

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewDense(n, 1, nil)
	for i := range x {
		if len(x[i]) != p {
			return fmt.Errorf("linear fit: row %d has %d features, want %d", i, len(x[i]), p)
		}
		for j := 0; j < p; j++ {
			xc.Set(i, j, x[i][j]-xMeans[j])
		}
		yc.Set(i, 0, y[i]-yMean)
	}

	coef, err := solveLeastSquares(xc, yc)
	if err != nil {
		return err
	}

	for j := 0; j < p; j++ {
		r.Coefficients[j] = coef.At(j, 0)
		r.Intercept -= r.Coefficients[j] * xMeans[j]
	}
	return nil
}

func solveLeastSquares(a *mat.Dense, b *mat.Dense) (*mat.Dense, error) {
	n, p := a.Dims()

	if n >= p {
		var qr mat.QR
		qr.Factorize(a)
		var dst mat.Dense
		if err := qr.SolveTo(&dst, false, b); err == nil {
			return &dst, nil
		}
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, errors.New("linear fit: SVD factorization failed")
	}

	rank := svd.Rank(svdRankTolerance)
	if rank == 0 {
		return mat.NewDense(p, 1, nil), nil
	}

	var dst mat.Dense
	svd.SolveTo(&dst, b, rank)
	return &dst, nil
}

// Predict returns intercept + coefficients·row for each row.
func (r *LinearRegressor) Predict(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(r.Coefficients) {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrFeatureMismatch, i, len(row), len(r.Coefficients))
		}
		v := r.Intercept
		for j, c := range r.Coefficients {
			v += c * row[j]
		}
		out[i] = v
	}
	return out, nil
}
