// Package model provides the two interchangeable regressors fit against the
// standardized audio features and the log-transformed stream counts: a
// bootstrap-aggregated forest of variance-reduction trees and an
// ordinary-least-squares linear model. Both expose the same fit/predict
// capability so evaluation and explanation treat them uniformly.
package model

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Regressor is the shared capability of both model variants.
type Regressor interface {
	// Fit trains the model on features x and target y.
	Fit(x *mat.Dense, y *mat.VecDense) error
	// Predict returns one prediction per row of x.
	Predict(x *mat.Dense) (*mat.VecDense, error)
	// Name identifies the variant in artifacts and logs.
	Name() string
}

// Explanation is one row of a per-feature explainability table: an
// importance score for the forest, a signed coefficient for the linear
// model.
type Explanation struct {
	Feature string
	Value   float64
}

// sortExplanations orders rows by value descending, stable.
func sortExplanations(rows []Explanation) []Explanation {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value > rows[j].Value
	})
	return rows
}

// matrixRows copies x into row-major slices for tree fitting.
func matrixRows(x *mat.Dense) [][]float64 {
	n, p := x.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, p)
		mat.Row(rows[i], i, x)
	}
	return rows
}

// vectorValues copies y into a plain slice.
func vectorValues(y *mat.VecDense) []float64 {
	out := make([]float64, y.Len())
	for i := range out {
		out[i] = y.AtVec(i)
	}
	return out
}
