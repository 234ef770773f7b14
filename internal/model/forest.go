package model

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/common"
	pipeerrors "github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/parallel"
)

// ForestConfig configures the ensemble. Zero values fall back to the
// defaults noted per field.
type ForestConfig struct {
	Trees           int   // number of trees (default 100)
	MaxDepth        int   // maximum tree depth, 0 = unbounded
	MinSamplesSplit int   // smallest node the builder will split (default 2)
	MaxFeatures     int   // features considered per split, 0 = all
	Seed            int64 // seed controlling bootstrap sampling and feature subsets
	Workers         int   // worker goroutines for tree fitting, 0 or 1 = sequential
}

// DefaultForestConfig mirrors the reference configuration: 100 trees,
// unbounded depth, fixed seed.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:           100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Seed:            42,
	}
}

// ForestRegressor bootstrap-aggregates randomized regression trees grown by
// variance reduction. Per-tree seeds are pre-drawn from the root seed before
// any fitting starts, so parallel and sequential fits produce the same
// ensemble.
type ForestRegressor struct {
	cfg         ForestConfig
	trees       []*treeNode
	importances []float64
	nFeatures   int
	fitted      bool
}

// NewForestRegressor returns an unfitted forest with the given
// configuration; zero-valued fields take their defaults.
func NewForestRegressor(cfg ForestConfig) *ForestRegressor {
	def := DefaultForestConfig()
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = def.MinSamplesSplit
	}
	return &ForestRegressor{cfg: cfg}
}

// Name implements Regressor.
func (f *ForestRegressor) Name() string {
	return "forest"
}

// Fit implements Regressor.
func (f *ForestRegressor) Fit(x *mat.Dense, y *mat.VecDense) error {
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

	rows := matrixRows(x)
	target := vectorValues(y)

	maxFeatures := f.cfg.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > p {
		maxFeatures = p
	}

	// Derive every tree's seed up front from the root seed. Fitting order
	// then cannot influence the ensemble.
	seedSource := rand.New(rand.NewSource(f.cfg.Seed))
	seeds := make([]int64, f.cfg.Trees)
	for i := range seeds {
		seeds[i] = seedSource.Int63()
	}

	fitOne := func(_ int, seed int64) *fittedTree {
		rnd := rand.New(rand.NewSource(seed))
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rnd.Intn(n)
		}
		bx, by := subsetRows(rows, target, sample)
		imp := make([]float64, p)
		root := buildTree(bx, by, 0, f.cfg.MaxDepth, f.cfg.MinSamplesSplit, maxFeatures, rnd, imp)
		return &fittedTree{root: root, importances: imp}
	}

	var fits []*fittedTree
	if f.cfg.Workers > 1 {
		pool := parallel.NewWorkerPool(f.cfg.Workers)
		defer pool.Close()
		fits = parallel.ProcessIndexed(pool, seeds, fitOne)
	} else {
		fits = make([]*fittedTree, len(seeds))
		for i, seed := range seeds {
			fits[i] = fitOne(i, seed)
		}
	}

	f.trees = make([]*treeNode, len(fits))
	f.importances = make([]float64, p)
	for i, ft := range fits {
		f.trees[i] = ft.root
		for j, v := range ft.importances {
			f.importances[j] += v
		}
	}
	normalize(f.importances)

	f.nFeatures = p
	f.fitted = true
	return nil
}

// Predict implements Regressor; each prediction averages all trees.
func (f *ForestRegressor) Predict(x *mat.Dense) (*mat.VecDense, error) {
	if !f.fitted {
		return nil, pipeerrors.ErrNotFitted
	}
	if x == nil {
		return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageModel, "feature matrix is required")
	}
	n, p := x.Dims()
	if p != f.nFeatures {
		return nil, pipeerrors.ErrDimensionMismatch
	}

	out := mat.NewVecDense(n, nil)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		mat.Row(row, i, x)
		var sum float64
		for _, t := range f.trees {
			sum += predictTree(t, row)
		}
		out.SetVec(i, sum/float64(len(f.trees)))
	}
	return out, nil
}

// Importances returns per-feature importance scores accumulated from the
// impurity reduction of every split across all trees, normalized to sum
// to 1. Each score is non-negative.
func (f *ForestRegressor) Importances() ([]float64, error) {
	if !f.fitted {
		return nil, pipeerrors.ErrNotFitted
	}
	return append([]float64(nil), f.importances...), nil
}

// Explain returns the importance table sorted descending.
func (f *ForestRegressor) Explain(featureNames []string) ([]Explanation, error) {
	if !f.fitted {
		return nil, pipeerrors.ErrNotFitted
	}
	if len(featureNames) != f.nFeatures {
		return nil, pipeerrors.ErrDimensionMismatch
	}
	rows := make([]Explanation, f.nFeatures)
	for j, name := range featureNames {
		rows[j] = Explanation{Feature: name, Value: f.importances[j]}
	}
	return sortExplanations(rows), nil
}

type fittedTree struct {
	root        *treeNode
	importances []float64
}

// treeNode is one node of a regression tree; leaves carry feature == -1.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

// buildTree grows a tree by choosing, at each node, the split minimizing
// the summed child variance. The variance reduction achieved by each chosen
// split is accumulated into imp for the explainability table.
func buildTree(x [][]float64, y []float64, depth, maxDepth, minSamples, maxFeatures int, rnd *rand.Rand, imp []float64) *treeNode {
	if len(y) < minSamples || (maxDepth > 0 && depth >= maxDepth) {
		return &treeNode{feature: -1, value: common.Mean(y)}
	}

	nSamples := len(y)
	nCols := len(x[0])

	candidates := featureSubset(nCols, maxFeatures, rnd)
	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.Inf(1)
	var bestLeft, bestRight []int

	for _, feat := range candidates {
		thresholds := splitPoints(x, feat)
		for _, thr := range thresholds {
			left := make([]int, 0, nSamples/2)
			right := make([]int, 0, nSamples/2)
			for i := 0; i < nSamples; i++ {
				if x[i][feat] <= thr {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			score := float64(len(left))*varianceAt(y, left) + float64(len(right))*varianceAt(y, right)
			if score < bestScore {
				bestScore = score
				bestFeature = feat
				bestThreshold = thr
				bestLeft = left
				bestRight = right
			}
		}
	}

	if bestFeature == -1 {
		return &treeNode{feature: -1, value: common.Mean(y)}
	}

	// Impurity reduction of this split, weighted by node size.
	imp[bestFeature] += float64(nSamples)*common.Variance(y) - bestScore

	lx, ly := subsetRows(x, y, bestLeft)
	rx, ry := subsetRows(x, y, bestRight)
	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      buildTree(lx, ly, depth+1, maxDepth, minSamples, maxFeatures, rnd, imp),
		right:     buildTree(rx, ry, depth+1, maxDepth, minSamples, maxFeatures, rnd, imp),
		value:     common.Mean(y),
	}
}

func predictTree(node *treeNode, row []float64) float64 {
	for node.feature != -1 {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// splitPoints returns candidate thresholds for a feature: midpoints between
// consecutive distinct sorted values.
func splitPoints(x [][]float64, feat int) []float64 {
	values := make([]float64, len(x))
	for i := range x {
		values[i] = x[i][feat]
	}
	sort.Float64s(values)

	points := make([]float64, 0, len(values))
	for i := 0; i < len(values)-1; i++ {
		if values[i] != values[i+1] {
			points = append(points, (values[i]+values[i+1])/2)
		}
	}
	return points
}

// featureSubset draws k distinct feature indices; all of them when k covers
// the full set, keeping the draw out of the random stream entirely.
func featureSubset(n, k int, rnd *rand.Rand) []int {
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rnd.Perm(n)[:k]
}

func varianceAt(y []float64, idx []int) float64 {
	sub := make([]float64, len(idx))
	for i, j := range idx {
		sub[i] = y[j]
	}
	return common.Variance(sub)
}

func subsetRows(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	sx := make([][]float64, len(idx))
	sy := make([]float64, len(idx))
	for i, j := range idx {
		sx[i] = x[j]
		sy[i] = y[j]
	}
	return sx, sy
}

func normalize(values []float64) {
	total := common.Sum(values)
	if total <= 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
