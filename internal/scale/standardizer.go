// Package scale standardizes features to zero mean and unit variance.
// Parameters are fit on the training subset only and applied unchanged to
// the holdout subset, so no holdout information leaks into the transform.
package scale

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	pipeerrors "github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
)

// stdFloor treats a standard deviation at or below this as zero variance.
const stdFloor = 1e-12

// StandardScaler rescales each feature by (x - mean) / std.
type StandardScaler struct {
	mean       []float64
	std        []float64
	degenerate []int
	fitted     bool
}

// NewStandardScaler returns an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-feature mean and population standard deviation from x.
// A zero-variance feature is recorded as degenerate and its deviation is
// substituted with 1, so Transform centers it without scaling and never
// divides by zero.
func (s *StandardScaler) Fit(x *mat.Dense) error {
	if x == nil {
		return pipeerrors.NewInvalidInputError(pipeerrors.StageScale, "training matrix is required")
	}
	n, p := x.Dims()
	if n == 0 {
		return pipeerrors.ErrEmptyDataset
	}

	s.mean = make([]float64, p)
	s.std = make([]float64, p)
	s.degenerate = nil

	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		s.mean[j] = stat.Mean(col, nil)
		s.std[j] = stat.PopStdDev(col, nil)
		if s.std[j] <= stdFloor {
			s.degenerate = append(s.degenerate, j)
			s.std[j] = 1
		}
	}
	s.fitted = true
	return nil
}

// Transform returns a new matrix with the fitted parameters applied
// elementwise per feature. The receiver's parameters are never refit here.
func (s *StandardScaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	if !s.fitted {
		return nil, pipeerrors.ErrNotFitted
	}
	if x == nil {
		return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageScale, "matrix is required")
	}
	n, p := x.Dims()
	if p != len(s.mean) {
		return nil, pipeerrors.ErrDimensionMismatch
	}

	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			out.Set(i, j, (x.At(i, j)-s.mean[j])/s.std[j])
		}
	}
	return out, nil
}

// FitTransform fits on x and returns its transformation.
func (s *StandardScaler) FitTransform(x *mat.Dense) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// Mean returns the fitted per-feature means.
func (s *StandardScaler) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}

// Std returns the fitted per-feature deviations (1 for degenerate features).
func (s *StandardScaler) Std() []float64 {
	return append([]float64(nil), s.std...)
}

// Degenerate returns the indices of zero-variance features observed during
// Fit; such features are centered but not scaled.
func (s *StandardScaler) Degenerate() []int {
	return append([]int(nil), s.degenerate...)
}
