package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/common"
)

// syntheticData builds a deterministic regression problem where the first
// feature dominates the target.
func syntheticData(n int) (*mat.Dense, *mat.VecDense) {
	x := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		f0 := float64(i % 10)
		f1 := float64((i * 3) % 7)
		f2 := float64((i * 5) % 4)
		x.Set(i, 0, f0)
		x.Set(i, 1, f1)
		x.Set(i, 2, f2)
		y.SetVec(i, 10*f0+f1+0.5*f2)
	}
	return x, y
}

func TestForestFitPredict(t *testing.T) {
	x, y := syntheticData(80)

	f := NewForestRegressor(ForestConfig{Trees: 25, Seed: 42})
	require.NoError(t, f.Fit(x, y))

	pred, err := f.Predict(x)
	require.NoError(t, err)
	require.Equal(t, 80, pred.Len())

	values := make([]float64, y.Len())
	for i := range values {
		values[i] = y.AtVec(i)
	}
	minY, maxY := common.MinMax(values)
	for i := 0; i < pred.Len(); i++ {
		v := pred.AtVec(i)
		require.False(t, math.IsNaN(v))
		// Tree averages always stay inside the training target range.
		assert.GreaterOrEqual(t, v, minY)
		assert.LessOrEqual(t, v, maxY)
	}
}

func TestForestImportancesNormalized(t *testing.T) {
	x, y := syntheticData(60)

	f := NewForestRegressor(ForestConfig{Trees: 20, Seed: 7})
	require.NoError(t, f.Fit(x, y))

	imp, err := f.Importances()
	require.NoError(t, err)
	require.Len(t, imp, 3)

	var total float64
	for _, v := range imp {
		assert.GreaterOrEqual(t, v, 0.0)
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// The dominant feature earns the dominant importance.
	assert.Greater(t, imp[0], imp[1])
	assert.Greater(t, imp[0], imp[2])
}

func TestForestDeterministicAcrossRuns(t *testing.T) {
	x, y := syntheticData(50)

	a := NewForestRegressor(ForestConfig{Trees: 15, Seed: 42})
	require.NoError(t, a.Fit(x, y))
	b := NewForestRegressor(ForestConfig{Trees: 15, Seed: 42})
	require.NoError(t, b.Fit(x, y))

	predA, err := a.Predict(x)
	require.NoError(t, err)
	predB, err := b.Predict(x)
	require.NoError(t, err)

	for i := 0; i < predA.Len(); i++ {
		assert.Equal(t, predA.AtVec(i), predB.AtVec(i))
	}

	impA, err := a.Importances()
	require.NoError(t, err)
	impB, err := b.Importances()
	require.NoError(t, err)
	assert.Equal(t, impA, impB)
}

func TestForestParallelMatchesSequential(t *testing.T) {
	x, y := syntheticData(50)

	seq := NewForestRegressor(ForestConfig{Trees: 12, Seed: 9, Workers: 1})
	require.NoError(t, seq.Fit(x, y))
	par := NewForestRegressor(ForestConfig{Trees: 12, Seed: 9, Workers: 4})
	require.NoError(t, par.Fit(x, y))

	predSeq, err := seq.Predict(x)
	require.NoError(t, err)
	predPar, err := par.Predict(x)
	require.NoError(t, err)

	for i := 0; i < predSeq.Len(); i++ {
		assert.Equal(t, predSeq.AtVec(i), predPar.AtVec(i))
	}
}

func TestForestSeedChangesEnsemble(t *testing.T) {
	x, y := syntheticData(50)

	a := NewForestRegressor(ForestConfig{Trees: 15, Seed: 1})
	require.NoError(t, a.Fit(x, y))
	b := NewForestRegressor(ForestConfig{Trees: 15, Seed: 2})
	require.NoError(t, b.Fit(x, y))

	predA, err := a.Predict(x)
	require.NoError(t, err)
	predB, err := b.Predict(x)
	require.NoError(t, err)

	different := false
	for i := 0; i < predA.Len(); i++ {
		if predA.AtVec(i) != predB.AtVec(i) {
			different = true
			break
		}
	}
	assert.True(t, different)
}

func TestForestMaxDepthLimitsTrees(t *testing.T) {
	x, y := syntheticData(60)

	shallow := NewForestRegressor(ForestConfig{Trees: 10, MaxDepth: 1, Seed: 3})
	require.NoError(t, shallow.Fit(x, y))
	deep := NewForestRegressor(ForestConfig{Trees: 10, Seed: 3})
	require.NoError(t, deep.Fit(x, y))

	rmse := func(f *ForestRegressor) float64 {
		pred, err := f.Predict(x)
		require.NoError(t, err)
		var acc float64
		for i := 0; i < pred.Len(); i++ {
			d := pred.AtVec(i) - y.AtVec(i)
			acc += d * d
		}
		return math.Sqrt(acc / float64(pred.Len()))
	}

	// Depth-1 stumps cannot fit the signal as well as unbounded trees.
	assert.Greater(t, rmse(shallow), rmse(deep))
}

func TestForestExplainSorted(t *testing.T) {
	x, y := syntheticData(60)
	f := NewForestRegressor(ForestConfig{Trees: 10, Seed: 5})
	require.NoError(t, f.Fit(x, y))

	rows, err := f.Explain([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Value, rows[i].Value)
	}
}

func TestForestNotFitted(t *testing.T) {
	f := NewForestRegressor(DefaultForestConfig())
	_, err := f.Predict(mat.NewDense(1, 1, []float64{1}))
	assert.Error(t, err)
	_, err = f.Importances()
	assert.Error(t, err)
}

func TestForestRejectsBadShapes(t *testing.T) {
	f := NewForestRegressor(ForestConfig{Trees: 3, Seed: 1})
	err := f.Fit(mat.NewDense(4, 2, nil), mat.NewVecDense(3, nil))
	assert.Error(t, err)

	x, y := syntheticData(20)
	require.NoError(t, f.Fit(x, y))
	_, err = f.Predict(mat.NewDense(2, 5, nil))
	assert.Error(t, err)
}

func TestDefaultForestConfig(t *testing.T) {
	cfg := DefaultForestConfig()
	assert.Equal(t, 100, cfg.Trees)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, int64(42), cfg.Seed)
}
