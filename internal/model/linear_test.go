package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLinearRecoversExactCoefficients(t *testing.T) {
	// y = 3 + 2*x1 - x2, noiseless.
	x := mat.NewDense(6, 2, []float64{
		1, 0,
		0, 1,
		2, 1,
		3, 5,
		4, 2,
		1, 1,
	})
	y := mat.NewVecDense(6, nil)
	for i := 0; i < 6; i++ {
		y.SetVec(i, 3+2*x.At(i, 0)-x.At(i, 1))
	}

	l := NewLinearRegressor()
	require.NoError(t, l.Fit(x, y))

	assert.InDelta(t, 3, l.Intercept(), 1e-9)
	coef := l.Coefficients()
	require.Len(t, coef, 2)
	assert.InDelta(t, 2, coef[0], 1e-9)
	assert.InDelta(t, -1, coef[1], 1e-9)
}

func TestLinearPredict(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	y := mat.NewVecDense(4, []float64{1, 3, 5, 7}) // y = 1 + 2x

	l := NewLinearRegressor()
	require.NoError(t, l.Fit(x, y))

	pred, err := l.Predict(mat.NewDense(2, 1, []float64{10, -2}))
	require.NoError(t, err)
	assert.InDelta(t, 21, pred.AtVec(0), 1e-9)
	assert.InDelta(t, -3, pred.AtVec(1), 1e-9)
}

func TestLinearExplainSortsDescending(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{
		1, 2,
		2, 1,
		3, 3,
		4, 0,
		5, 4,
	})
	y := mat.NewVecDense(5, nil)
	for i := 0; i < 5; i++ {
		y.SetVec(i, -2*x.At(i, 0)+3*x.At(i, 1))
	}

	l := NewLinearRegressor()
	require.NoError(t, l.Fit(x, y))

	rows, err := l.Explain([]string{"down", "up"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "up", rows[0].Feature)
	assert.Equal(t, "down", rows[1].Feature)
	assert.Greater(t, rows[0].Value, rows[1].Value)
}

func TestLinearNotFitted(t *testing.T) {
	l := NewLinearRegressor()
	_, err := l.Predict(mat.NewDense(1, 1, []float64{1}))
	assert.Error(t, err)
	_, err = l.Explain([]string{"a"})
	assert.Error(t, err)
}

func TestLinearRejectsBadShapes(t *testing.T) {
	l := NewLinearRegressor()

	err := l.Fit(mat.NewDense(2, 2, nil), mat.NewVecDense(3, nil))
	assert.Error(t, err)

	// Too few rows for the coefficient count.
	err = l.Fit(mat.NewDense(2, 3, nil), mat.NewVecDense(2, nil))
	assert.Error(t, err)

	require.NoError(t, l.Fit(mat.NewDense(4, 1, []float64{1, 2, 3, 4}), mat.NewVecDense(4, []float64{1, 2, 3, 4})))
	_, err = l.Predict(mat.NewDense(2, 2, nil))
	assert.Error(t, err)

	_, err = l.Explain([]string{"a", "b"})
	assert.Error(t, err)
}

func TestLinearName(t *testing.T) {
	assert.Equal(t, "linear", NewLinearRegressor().Name())
}
