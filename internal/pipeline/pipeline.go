// Package pipeline orchestrates the full analysis run: load, clean, derive,
// aggregate, split, standardize, fit both models, evaluate, explain. Stages
// run strictly forward; each consumes an immutable input and produces a new
// immutable output. The run either fails before modeling starts or finishes
// with artifacts for both model variants, never with a partial set.
package pipeline

import (
	"io"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/config"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/csvio"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/dataset"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/metrics"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/model"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/scale"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/schema"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/split"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/stats"
)

// Artifact holds one fitted model's holdout evaluation and explainability
// table, plus the raw prediction pairs for residual inspection.
type Artifact struct {
	Name        string
	R2          float64
	RMSE        float64
	Explanation []model.Explanation
	// Intercept is set for the linear model only; it is reported apart
	// from the per-feature ranking.
	Intercept *float64
	Actual    []float64
	Predicted []float64
}

// FeatureTable is the top-K ranking for one audio feature.
type FeatureTable struct {
	Feature string
	Rows    []stats.FeatureRanking
}

// Summary collects the descriptive statistics over the cleaned table.
type Summary struct {
	Rows         int
	DroppedRows  int
	Collab       stats.CollabBreakdown
	TopArtists   []stats.ArtistStreams
	TopTracks    []stats.TrackStreams
	TopByFeature []FeatureTable
	AgeStreams   []stats.AgePoint
	Correlations stats.CorrelationMatrix
}

// Result is everything one run produces for the presentation layer.
type Result struct {
	Table   *dataset.Table
	Summary Summary
	Forest  Artifact
	Linear  Artifact
}

// Run executes the pipeline over the configured input file.
func Run(cfg config.Config, logger *zap.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	raw, err := csvio.ReadFile(cfg.Input.Path, readerOptions(cfg))
	if err != nil {
		return nil, err
	}
	return run(raw, cfg, logger)
}

// RunReader executes the pipeline over catalog text from r, for callers
// that hold the data in memory.
func RunReader(r io.Reader, cfg config.Config, logger *zap.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	raw, err := csvio.NewReader(r, readerOptions(cfg)).Read()
	if err != nil {
		return nil, err
	}
	return run(raw, cfg, logger)
}

func readerOptions(cfg config.Config) csvio.Options {
	opts := csvio.DefaultOptions()
	opts.Delimiter = cfg.DelimiterRune()
	opts.Latin1 = cfg.Input.Latin1
	return opts
}

func run(raw *csvio.RawTable, cfg config.Config, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reference, err := cfg.ReferenceTime()
	if err != nil {
		return nil, err
	}

	buildOpts := dataset.DefaultBuildOptions()
	buildOpts.ReferenceDate = reference
	table, err := dataset.Build(raw, buildOpts, logger)
	if err != nil {
		return nil, err
	}

	summary := Summary{
		Rows:         table.Len(),
		DroppedRows:  table.Dropped(),
		Collab:       stats.Collaboration(table),
		TopArtists:   stats.TopArtists(table, cfg.TopK),
		TopTracks:    stats.TopTracks(table, cfg.TopK),
		AgeStreams:   stats.AgeStreams(table, cfg.MaxTrackAge),
		Correlations: stats.Correlations(table),
	}
	for _, f := range schema.AudioFeatures() {
		ranked, err := stats.TopByFeature(table, f, cfg.TopK)
		if err != nil {
			return nil, err
		}
		summary.TopByFeature = append(summary.TopByFeature, FeatureTable{
			Feature: f.String(),
			Rows:    ranked,
		})
	}

	features := table.FeatureMatrix()
	target := table.TargetVector()

	parts, err := split.TrainTest(features, target, cfg.Split.Fraction, cfg.Split.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info("partitioned dataset",
		zap.Int("train_rows", len(parts.TrainIndex)),
		zap.Int("holdout_rows", len(parts.TestIndex)),
		zap.Int64("seed", cfg.Split.Seed),
		zap.Uint64("fingerprint", parts.Fingerprint()))

	scaler := scale.NewStandardScaler()
	trainX, err := scaler.FitTransform(parts.TrainX)
	if err != nil {
		return nil, err
	}
	if degenerate := scaler.Degenerate(); len(degenerate) > 0 {
		names := table.FeatureNames()
		for _, j := range degenerate {
			logger.Warn("feature has zero variance in the training subset; centered without scaling",
				zap.String("feature", names[j]))
		}
	}
	testX, err := scaler.Transform(parts.TestX)
	if err != nil {
		return nil, err
	}

	forest := model.NewForestRegressor(model.ForestConfig{
		Trees:    cfg.Forest.Trees,
		MaxDepth: cfg.Forest.MaxDepth,
		Seed:     cfg.Forest.Seed,
		Workers:  cfg.Forest.Workers,
	})
	forestArtifact, err := evaluate(forest, trainX, testX, parts, logger)
	if err != nil {
		return nil, err
	}
	forestArtifact.Explanation, err = forest.Explain(table.FeatureNames())
	if err != nil {
		return nil, err
	}

	linear := model.NewLinearRegressor()
	linearArtifact, err := evaluate(linear, trainX, testX, parts, logger)
	if err != nil {
		return nil, err
	}
	linearArtifact.Explanation, err = linear.Explain(table.FeatureNames())
	if err != nil {
		return nil, err
	}
	intercept := linear.Intercept()
	linearArtifact.Intercept = &intercept

	return &Result{
		Table:   table,
		Summary: summary,
		Forest:  *forestArtifact,
		Linear:  *linearArtifact,
	}, nil
}

// evaluate fits one model variant on the scaled training data and scores it
// on the holdout subset. Predictions and metrics stay in log1p space.
func evaluate(m model.Regressor, trainX, testX *mat.Dense, parts *split.Split, logger *zap.Logger) (*Artifact, error) {
	if err := m.Fit(trainX, parts.TrainY); err != nil {
		return nil, err
	}
	predicted, err := m.Predict(testX)
	if err != nil {
		return nil, err
	}

	r2, err := metrics.R2(parts.TestY, predicted)
	if err != nil {
		return nil, err
	}
	rmse, err := metrics.RMSE(parts.TestY, predicted)
	if err != nil {
		return nil, err
	}

	logger.Info("evaluated model on holdout subset",
		zap.String("model", m.Name()),
		zap.Float64("r2", r2),
		zap.Float64("rmse", rmse))

	actual := make([]float64, parts.TestY.Len())
	preds := make([]float64, predicted.Len())
	for i := range actual {
		actual[i] = parts.TestY.AtVec(i)
		preds[i] = predicted.AtVec(i)
	}

	return &Artifact{
		Name:      m.Name(),
		R2:        r2,
		RMSE:      rmse,
		Actual:    actual,
		Predicted: preds,
	}, nil
}
