// Package metrics computes goodness-of-fit measures for regression
// predictions on the holdout subset.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	pipeerrors "github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
)

// RMSE returns the root mean squared error between true and predicted
// values.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	n := yTrue.Len()
	var acc float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		acc += d * d
	}
	return math.Sqrt(acc / float64(n)), nil
}

// R2 returns the coefficient of determination. Predicting every value
// exactly yields 1; predicting the target mean yields 0; a model worse than
// the mean yields a negative value, which is a valid outcome rather than an
// error. A constant target has no variance to explain and is rejected.
func R2(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	n := yTrue.Len()
	var mean float64
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)

	var rss, tss float64
	for i := 0; i < n; i++ {
		r := yTrue.AtVec(i) - yPred.AtVec(i)
		t := yTrue.AtVec(i) - mean
		rss += r * r
		tss += t * t
	}
	if tss == 0 {
		return 0, pipeerrors.NewInvalidInputError(pipeerrors.StageEvaluate,
			"target has zero variance; R2 is undefined")
	}
	return 1 - rss/tss, nil
}

func checkPair(yTrue, yPred *mat.VecDense) error {
	if yTrue == nil || yPred == nil {
		return pipeerrors.NewInvalidInputError(pipeerrors.StageEvaluate, "true and predicted vectors are required")
	}
	if yTrue.Len() == 0 {
		return pipeerrors.ErrEmptyDataset
	}
	if yTrue.Len() != yPred.Len() {
		return pipeerrors.ErrDimensionMismatch
	}
	return nil
}
