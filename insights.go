// Package insights analyzes the Spotify 2023 top-tracks catalog: it cleans
// the raw table, derives release dates, track ages and collaboration flags,
// computes descriptive summaries, and fits two regression models (a random
// forest and an OLS linear model) that test whether four audio features
// explain stream counts. This package is the sole public API; the heavy
// lifting lives in internal packages.
package insights

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/config"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/logging"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/pipeline"
)

// Config holds every knob of one analysis run.
type Config struct {
	// InputPath locates the raw catalog CSV.
	InputPath string
	// Delimiter is the CSV field separator.
	Delimiter rune
	// Latin1 decodes the input as ISO 8859-1, the catalog's published
	// encoding; disable for UTF-8 sources.
	Latin1 bool
	// SplitFraction is the holdout share of the dataset.
	SplitFraction float64
	// SplitSeed controls the train/holdout partition.
	SplitSeed int64
	// Trees is the forest's ensemble size.
	Trees int
	// MaxDepth bounds tree depth; 0 means unbounded.
	MaxDepth int
	// ForestSeed controls bootstrap sampling.
	ForestSeed int64
	// Workers fits trees concurrently when above 1; the ensemble is
	// identical either way.
	Workers int
	// TopK sizes the ranking tables.
	TopK int
	// MaxTrackAge bounds the age-versus-streams view, in years.
	MaxTrackAge int64
	// ReferenceDate anchors track age, formatted YYYY-MM-DD.
	ReferenceDate string
	// LogLevel sets the zap level for Run's logger.
	LogLevel string
}

// DefaultConfig returns the reference configuration: 80/20 split, 100
// trees, both seeds fixed at 42, ages anchored to 2023-12-31.
func DefaultConfig() Config {
	return fromInternal(config.Default())
}

// LoadConfig layers the configuration from defaults, an optional YAML file
// (skipped when path is empty), and INSIGHTS_* environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := config.FromEnv(&cfg); err != nil {
		return Config{}, err
	}
	return fromInternal(cfg), nil
}

// Track is one cleaned catalog entry.
type Track struct {
	Name          string
	Artists       string
	Streams       int64
	ReleaseDate   time.Time
	AgeYears      int64
	Collaboration bool
	Danceability  float64
	Valence       float64
	Energy        float64
	Acousticness  float64
}

// Breakdown summarizes solo versus collaboration tracks.
type Breakdown struct {
	Solo             int
	Collaboration    int
	SoloPct          float64
	CollaborationPct float64
}

// RankedArtist is one row of the top-artists table.
type RankedArtist struct {
	Artist  string
	Streams int64
}

// RankedTrack is one row of the top-tracks table.
type RankedTrack struct {
	Track   string
	Artist  string
	Streams int64
}

// RankedFeature is one row of a per-feature ranking table.
type RankedFeature struct {
	Track   string
	Artist  string
	Value   float64
	Streams int64
}

// FeatureTable is the top-K ranking for one audio feature.
type FeatureTable struct {
	Feature string
	Rows    []RankedFeature
}

// AgePoint is one row of the age-versus-streams view.
type AgePoint struct {
	Track       string
	Artist      string
	AgeYears    int64
	Streams     int64
	ReleaseDate time.Time
}

// Correlation is the pairwise Pearson correlation matrix over raw stream
// counts and the four audio features. Values is square and row-aligned
// with Labels.
type Correlation struct {
	Labels []string
	Values [][]float64
}

// ExplanationRow maps a feature to its importance or coefficient.
type ExplanationRow struct {
	Feature string
	Value   float64
}

// ModelReport carries one fitted model's holdout metrics, explainability
// table, and raw prediction pairs in log1p space.
type ModelReport struct {
	Name        string
	R2          float64
	RMSE        float64
	Explanation []ExplanationRow
	Intercept   *float64
	Actual      []float64
	Predicted   []float64
}

// Report is the full output of one run.
type Report struct {
	Rows         int
	DroppedRows  int
	Collab       Breakdown
	TopArtists   []RankedArtist
	TopTracks    []RankedTrack
	TopByFeature []FeatureTable
	AgeStreams   []AgePoint
	Correlations Correlation
	Tracks       []Track
	Forest       ModelReport
	Linear       ModelReport
}

// Run executes the pipeline over the configured input file.
func Run(cfg Config) (*Report, error) {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	res, err := pipeline.Run(toInternal(cfg), logger)
	if err != nil {
		return nil, err
	}
	return buildReport(res), nil
}

// RunReader executes the pipeline over catalog text from r with the given
// logger; a nil logger disables logging.
func RunReader(r io.Reader, cfg Config, logger *zap.Logger) (*Report, error) {
	res, err := pipeline.RunReader(r, toInternal(cfg), logger)
	if err != nil {
		return nil, err
	}
	return buildReport(res), nil
}

func toInternal(cfg Config) config.Config {
	return config.Config{
		Input: config.InputConfig{
			Path:      cfg.InputPath,
			Delimiter: string(cfg.Delimiter),
			Latin1:    cfg.Latin1,
		},
		Split: config.SplitConfig{
			Fraction: cfg.SplitFraction,
			Seed:     cfg.SplitSeed,
		},
		Forest: config.ForestConfig{
			Trees:    cfg.Trees,
			MaxDepth: cfg.MaxDepth,
			Seed:     cfg.ForestSeed,
			Workers:  cfg.Workers,
		},
		TopK:          cfg.TopK,
		MaxTrackAge:   cfg.MaxTrackAge,
		ReferenceDate: cfg.ReferenceDate,
		LogLevel:      cfg.LogLevel,
	}
}

func fromInternal(cfg config.Config) Config {
	return Config{
		InputPath:     cfg.Input.Path,
		Delimiter:     cfg.DelimiterRune(),
		Latin1:        cfg.Input.Latin1,
		SplitFraction: cfg.Split.Fraction,
		SplitSeed:     cfg.Split.Seed,
		Trees:         cfg.Forest.Trees,
		MaxDepth:      cfg.Forest.MaxDepth,
		ForestSeed:    cfg.Forest.Seed,
		Workers:       cfg.Forest.Workers,
		TopK:          cfg.TopK,
		MaxTrackAge:   cfg.MaxTrackAge,
		ReferenceDate: cfg.ReferenceDate,
		LogLevel:      cfg.LogLevel,
	}
}

func buildReport(res *pipeline.Result) *Report {
	defer res.Table.Release()

	report := &Report{
		Rows:        res.Summary.Rows,
		DroppedRows: res.Summary.DroppedRows,
		Collab: Breakdown{
			Solo:             res.Summary.Collab.Solo,
			Collaboration:    res.Summary.Collab.Collaboration,
			SoloPct:          res.Summary.Collab.SoloPct,
			CollaborationPct: res.Summary.Collab.CollaborationPct,
		},
		Forest: buildModelReport(res.Forest),
		Linear: buildModelReport(res.Linear),
	}

	for _, a := range res.Summary.TopArtists {
		report.TopArtists = append(report.TopArtists, RankedArtist{Artist: a.Artist, Streams: a.Streams})
	}
	for _, t := range res.Summary.TopTracks {
		report.TopTracks = append(report.TopTracks, RankedTrack{Track: t.Track, Artist: t.Artist, Streams: t.Streams})
	}
	for _, ft := range res.Summary.TopByFeature {
		table := FeatureTable{Feature: ft.Feature}
		for _, r := range ft.Rows {
			table.Rows = append(table.Rows, RankedFeature{
				Track: r.Track, Artist: r.Artist, Value: r.Value, Streams: r.Streams,
			})
		}
		report.TopByFeature = append(report.TopByFeature, table)
	}
	for _, p := range res.Summary.AgeStreams {
		report.AgeStreams = append(report.AgeStreams, AgePoint{
			Track:       p.Track,
			Artist:      p.Artist,
			AgeYears:    p.AgeYears,
			Streams:     p.Streams,
			ReleaseDate: p.ReleaseDate,
		})
	}
	report.Correlations = Correlation{
		Labels: res.Summary.Correlations.Labels,
		Values: res.Summary.Correlations.Values,
	}

	report.Tracks = make([]Track, res.Table.Len())
	for i := range report.Tracks {
		row := res.Table.Row(i)
		report.Tracks[i] = Track{
			Name:          row.Name,
			Artists:       row.Artists,
			Streams:       row.Streams,
			ReleaseDate:   row.ReleaseDate,
			AgeYears:      row.AgeYears,
			Collaboration: row.Collaboration,
			Danceability:  row.Danceability,
			Valence:       row.Valence,
			Energy:        row.Energy,
			Acousticness:  row.Acousticness,
		}
	}
	return report
}

func buildModelReport(a pipeline.Artifact) ModelReport {
	report := ModelReport{
		Name:      a.Name,
		R2:        a.R2,
		RMSE:      a.RMSE,
		Intercept: a.Intercept,
		Actual:    a.Actual,
		Predicted: a.Predicted,
	}
	for _, row := range a.Explanation {
		report.Explanation = append(report.Explanation, ExplanationRow{Feature: row.Feature, Value: row.Value})
	}
	return report
}
