package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sampleData(n, p int) (*mat.Dense, *mat.VecDense) {
	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			x.Set(i, j, float64(i*10+j))
		}
		y.SetVec(i, float64(i))
	}
	return x, y
}

func TestTrainTestSizes(t *testing.T) {
	x, y := sampleData(10, 3)
	s, err := TrainTest(x, y, 0.2, 42)
	require.NoError(t, err)

	assert.Len(t, s.TestIndex, 2)
	assert.Len(t, s.TrainIndex, 8)

	tr, tc := s.TrainX.Dims()
	assert.Equal(t, 8, tr)
	assert.Equal(t, 3, tc)
	assert.Equal(t, 8, s.TrainY.Len())
	assert.Equal(t, 2, s.TestY.Len())
}

func TestTrainTestDisjointCovering(t *testing.T) {
	x, y := sampleData(25, 2)
	s, err := TrainTest(x, y, 0.2, 7)
	require.NoError(t, err)

	seen := make(map[int]int)
	for _, i := range s.TrainIndex {
		seen[i]++
	}
	for _, i := range s.TestIndex {
		seen[i]++
	}
	require.Len(t, seen, 25)
	for i := 0; i < 25; i++ {
		assert.Equal(t, 1, seen[i], "row %d must appear exactly once", i)
	}
}

func TestTrainTestRowsAlign(t *testing.T) {
	x, y := sampleData(12, 2)
	s, err := TrainTest(x, y, 0.25, 3)
	require.NoError(t, err)

	for i, src := range s.TestIndex {
		assert.Equal(t, x.At(src, 0), s.TestX.At(i, 0))
		assert.Equal(t, y.AtVec(src), s.TestY.AtVec(i))
	}
	for i, src := range s.TrainIndex {
		assert.Equal(t, x.At(src, 1), s.TrainX.At(i, 1))
	}
}

func TestTrainTestDeterministic(t *testing.T) {
	x, y := sampleData(40, 4)

	a, err := TrainTest(x, y, 0.2, 42)
	require.NoError(t, err)
	b, err := TrainTest(x, y, 0.2, 42)
	require.NoError(t, err)

	assert.Equal(t, a.TrainIndex, b.TrainIndex)
	assert.Equal(t, a.TestIndex, b.TestIndex)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestTrainTestSeedChangesPartition(t *testing.T) {
	x, y := sampleData(40, 4)

	a, err := TrainTest(x, y, 0.2, 42)
	require.NoError(t, err)
	b, err := TrainTest(x, y, 0.2, 43)
	require.NoError(t, err)

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestTrainTestHoldoutRounds(t *testing.T) {
	// round(0.2 * 13) = 3
	x, y := sampleData(13, 1)
	s, err := TrainTest(x, y, 0.2, 1)
	require.NoError(t, err)
	assert.Len(t, s.TestIndex, 3)
}

func TestTrainTestRejectsBadInput(t *testing.T) {
	x, y := sampleData(10, 2)

	_, err := TrainTest(nil, y, 0.2, 1)
	assert.Error(t, err)

	_, err = TrainTest(x, mat.NewVecDense(3, nil), 0.2, 1)
	assert.Error(t, err)

	_, err = TrainTest(x, y, 0, 1)
	assert.Error(t, err)

	_, err = TrainTest(x, y, 1, 1)
	assert.Error(t, err)

	// round(0.01 * 10) = 0 leaves an empty holdout.
	_, err = TrainTest(x, y, 0.01, 1)
	assert.Error(t, err)
}
