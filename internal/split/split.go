// Package split partitions the feature matrix and target vector into
// training and holdout subsets with a seeded, reproducible shuffle.
package split

import (
	"encoding/binary"
	"math"
	"math/rand"

	xxhash "github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"

	pipeerrors "github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
)

// Split is a disjoint, covering partition of row indices and the row
// subsets extracted with it.
type Split struct {
	TrainX *mat.Dense
	TestX  *mat.Dense
	TrainY *mat.VecDense
	TestY  *mat.VecDense

	TrainIndex []int
	TestIndex  []int
}

// TrainTest partitions (x, y) into train and holdout subsets. The holdout
// holds round(fraction*n) rows; the seed fully determines which rows land
// where, so identical inputs and seed always produce an identical partition.
func TrainTest(x *mat.Dense, y *mat.VecDense, fraction float64, seed int64) (*Split, error) {
	if x == nil || y == nil {
		return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageSplit, "feature matrix and target vector are required")
	}
	n, p := x.Dims()
	if y.Len() != n {
		return nil, pipeerrors.ErrDimensionMismatch
	}
	if n == 0 {
		return nil, pipeerrors.ErrEmptyDataset
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageSplit, "holdout fraction must be in (0, 1)")
	}

	holdout := int(math.Round(fraction * float64(n)))
	if holdout == 0 || holdout == n {
		return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageSplit, "holdout fraction leaves an empty subset")
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rnd := rand.New(rand.NewSource(seed))
	rnd.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testIdx := append([]int(nil), idx[:holdout]...)
	trainIdx := append([]int(nil), idx[holdout:]...)

	return &Split{
		TrainX:     takeRows(x, trainIdx, p),
		TestX:      takeRows(x, testIdx, p),
		TrainY:     takeVec(y, trainIdx),
		TestY:      takeVec(y, testIdx),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
	}, nil
}

// Fingerprint hashes the partition's index assignment. Two splits of the
// same input agree on the fingerprint iff they assigned identical rows to
// identical positions.
func (s *Split) Fingerprint() uint64 {
	digest := xxhash.New()
	var buf [8]byte
	for _, i := range s.TrainIndex {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		_, _ = digest.Write(buf[:])
	}
	// Separator keeps (train=[1], test=[2]) distinct from (train=[1,2], test=[]).
	binary.LittleEndian.PutUint64(buf[:], math.MaxUint64)
	_, _ = digest.Write(buf[:])
	for _, i := range s.TestIndex {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64()
}

func takeRows(x *mat.Dense, idx []int, p int) *mat.Dense {
	out := mat.NewDense(len(idx), p, nil)
	row := make([]float64, p)
	for i, src := range idx {
		mat.Row(row, src, x)
		out.SetRow(i, row)
	}
	return out
}

func takeVec(y *mat.VecDense, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, src := range idx {
		out.SetVec(i, y.AtVec(src))
	}
	return out
}
