package pipeline_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/config"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/pipeline"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/testutil"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Input.Latin1 = false
	cfg.Forest.Trees = 25
	cfg.TopK = 5
	return cfg
}

func runSynthetic(t *testing.T, n int, cfg config.Config) *pipeline.Result {
	t.Helper()
	text := testutil.CSV(testutil.SyntheticRows(n))
	res, err := pipeline.RunReader(strings.NewReader(text), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { res.Table.Release() })
	return res
}

func TestRunProducesBothArtifacts(t *testing.T) {
	cfg := testConfig()
	res := runSynthetic(t, 120, cfg)

	assert.Equal(t, 120, res.Summary.Rows)
	assert.Equal(t, 0, res.Summary.DroppedRows)
	assert.Equal(t, "forest", res.Forest.Name)
	assert.Equal(t, "linear", res.Linear.Name)

	holdout := int(math.Round(cfg.Split.Fraction * 120))
	for _, art := range []pipeline.Artifact{res.Forest, res.Linear} {
		assert.Len(t, art.Actual, holdout)
		assert.Len(t, art.Predicted, holdout)
		assert.False(t, math.IsNaN(art.R2), "%s R2", art.Name)
		assert.False(t, math.IsNaN(art.RMSE), "%s RMSE", art.Name)
		assert.GreaterOrEqual(t, art.RMSE, 0.0)
		assert.Len(t, art.Explanation, 4)
	}

	require.NotNil(t, res.Linear.Intercept)
	assert.Nil(t, res.Forest.Intercept)
}

func TestRunSummaryTables(t *testing.T) {
	cfg := testConfig()
	res := runSynthetic(t, 60, cfg)

	assert.Len(t, res.Summary.TopArtists, 5)
	assert.Len(t, res.Summary.TopTracks, 5)
	assert.NotEmpty(t, res.Summary.AgeStreams)

	total := res.Summary.Collab.Solo + res.Summary.Collab.Collaboration
	assert.Equal(t, 60, total)

	// Rankings come back sorted by total streams, descending.
	for i := 1; i < len(res.Summary.TopArtists); i++ {
		assert.GreaterOrEqual(t,
			res.Summary.TopArtists[i-1].Streams,
			res.Summary.TopArtists[i].Streams)
	}
}

func TestRunForestImportancesNormalized(t *testing.T) {
	res := runSynthetic(t, 120, testConfig())

	sum := 0.0
	for _, row := range res.Forest.Explanation {
		assert.GreaterOrEqual(t, row.Value, 0.0)
		sum += row.Value
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestRunDeterministic(t *testing.T) {
	cfg := testConfig()
	first := runSynthetic(t, 90, cfg)
	second := runSynthetic(t, 90, cfg)

	assert.Equal(t, first.Forest.R2, second.Forest.R2)
	assert.Equal(t, first.Forest.RMSE, second.Forest.RMSE)
	assert.Equal(t, first.Linear.R2, second.Linear.R2)
	assert.Equal(t, first.Forest.Predicted, second.Forest.Predicted)
}

func TestRunCountsDroppedRows(t *testing.T) {
	rows := testutil.SyntheticRows(50)
	rows[7].Streams = "not a number"
	rows[23].Streams = "-5"
	text := testutil.CSV(rows)

	res, err := pipeline.RunReader(strings.NewReader(text), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer res.Table.Release()

	assert.Equal(t, 48, res.Summary.Rows)
	assert.Equal(t, 2, res.Summary.DroppedRows)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Split.Fraction = 0

	_, err := pipeline.RunReader(strings.NewReader(testutil.CSV(testutil.SyntheticRows(10))), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRunMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.Input.Path = "no/such/catalog.csv"

	_, err := pipeline.Run(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRunSummaryFeatureTables(t *testing.T) {
	cfg := testConfig()
	res := runSynthetic(t, 60, cfg)

	require.Len(t, res.Summary.TopByFeature, 4)
	assert.Equal(t, "Danceability %", res.Summary.TopByFeature[0].Feature)
	for _, ft := range res.Summary.TopByFeature {
		require.Len(t, ft.Rows, cfg.TopK)
		for i := 1; i < len(ft.Rows); i++ {
			assert.GreaterOrEqual(t, ft.Rows[i-1].Value, ft.Rows[i].Value)
		}
	}
}

func TestRunSummaryCorrelations(t *testing.T) {
	res := runSynthetic(t, 60, testConfig())

	corr := res.Summary.Correlations
	require.Len(t, corr.Labels, 5)
	assert.Equal(t, "Streams", corr.Labels[0])
	require.Len(t, corr.Values, 5)
	for i := range corr.Values {
		assert.Equal(t, 1.0, corr.Values[i][i])
	}
	// Synthetic stream counts grow with danceability.
	assert.Greater(t, corr.At(0, 1), 0.0)
}
