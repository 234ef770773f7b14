package model

import (
	"gonum.org/v1/gonum/mat"

	pipeerrors "github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
)

// LinearRegressor fits ordinary-least-squares coefficients (one weight per
// feature plus an intercept) minimizing squared error.
type LinearRegressor struct {
	coef      []float64
	intercept float64
	fitted    bool
}

// NewLinearRegressor returns an unfitted linear model.
func NewLinearRegressor() *LinearRegressor {
	return &LinearRegressor{}
}

// Name implements Regressor.
func (l *LinearRegressor) Name() string {
	return "linear"
}

// Fit solves the least-squares system via QR factorization over the design
// matrix augmented with an intercept column.
func (l *LinearRegressor) Fit(x *mat.Dense, y *mat.VecDense) error {
	if x == nil || y == nil {
		return pipeerrors.NewInvalidInputError(pipeerrors.StageModel, "training features and target are required")
	}
	n, p := x.Dims()
	if n == 0 {
		return pipeerrors.ErrEmptyDataset
	}
	if y.Len() != n {
		return pipeerrors.ErrDimensionMismatch
	}
	if n < p+1 {
		return pipeerrors.NewInvalidInputError(pipeerrors.StageModel,
			"need at least one more row than coefficients for least squares")
	}

	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}

	var beta mat.Dense
	if err := beta.Solve(design, y); err != nil {
		return pipeerrors.NewInternalError(pipeerrors.StageModel, err)
	}

	l.intercept = beta.At(0, 0)
	l.coef = make([]float64, p)
	for j := 0; j < p; j++ {
		l.coef[j] = beta.At(j+1, 0)
	}
	l.fitted = true
	return nil
}

// Predict implements Regressor.
func (l *LinearRegressor) Predict(x *mat.Dense) (*mat.VecDense, error) {
	if !l.fitted {
		return nil, pipeerrors.ErrNotFitted
	}
	if x == nil {
		return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageModel, "feature matrix is required")
	}
	n, p := x.Dims()
	if p != len(l.coef) {
		return nil, pipeerrors.ErrDimensionMismatch
	}

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := l.intercept
		for j := 0; j < p; j++ {
			v += l.coef[j] * x.At(i, j)
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// Coefficients returns the fitted per-feature weights in standardized
// feature space.
func (l *LinearRegressor) Coefficients() []float64 {
	return append([]float64(nil), l.coef...)
}

// Intercept returns the fitted intercept. It is reported separately and
// excluded from the per-feature ranking.
func (l *LinearRegressor) Intercept() float64 {
	return l.intercept
}

// Explain returns the coefficient table sorted by value descending.
func (l *LinearRegressor) Explain(featureNames []string) ([]Explanation, error) {
	if !l.fitted {
		return nil, pipeerrors.ErrNotFitted
	}
	if len(featureNames) != len(l.coef) {
		return nil, pipeerrors.ErrDimensionMismatch
	}
	rows := make([]Explanation, len(l.coef))
	for j, name := range featureNames {
		rows[j] = Explanation{Feature: name, Value: l.coef[j]}
	}
	return sortExplanations(rows), nil
}
