// Package stats computes read-only descriptive summaries over the cleaned
// track table: solo/collaboration breakdown, per-artist stream totals,
// top-K rankings, and the streams/audio-feature correlation matrix. Nothing
// here mutates table state.
package stats

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/common"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/dataset"
	pipeerrors "github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/schema"
)

// CollabBreakdown summarizes solo versus collaboration tracks.
type CollabBreakdown struct {
	Solo             int
	Collaboration    int
	SoloPct          float64
	CollaborationPct float64
}

// Collaboration counts solo and multi-artist tracks. The two counts always
// sum to the table length and the percentages to 100 (up to rounding).
func Collaboration(t *dataset.Table) CollabBreakdown {
	var b CollabBreakdown
	for i := 0; i < t.Len(); i++ {
		if t.IsCollaboration(i) {
			b.Collaboration++
		} else {
			b.Solo++
		}
	}
	b.SoloPct = common.Percent(b.Solo, t.Len())
	b.CollaborationPct = common.Percent(b.Collaboration, t.Len())
	return b
}

// ArtistStreams is one row of the per-artist ranking.
type ArtistStreams struct {
	Artist  string
	Streams int64
}

// TopArtists sums streams per credited artist string and returns the top k
// descending. The sort is stable: artists tied on streams keep the order of
// their first appearance in the table.
func TopArtists(t *dataset.Table, k int) []ArtistStreams {
	acc := newStreamAccumulator()
	for i := 0; i < t.Len(); i++ {
		acc.add(t.Artists(i), t.Streams(i))
	}

	ranked := acc.entries()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Streams > ranked[j].Streams
	})
	return truncate(ranked, k)
}

// TrackStreams is one row of the per-track ranking.
type TrackStreams struct {
	Track   string
	Artist  string
	Streams int64
}

// TopTracks ranks individual tracks by streams descending, top k, ties in
// insertion order.
func TopTracks(t *dataset.Table, k int) []TrackStreams {
	ranked := make([]TrackStreams, t.Len())
	for i := 0; i < t.Len(); i++ {
		ranked[i] = TrackStreams{
			Track:   t.TrackName(i),
			Artist:  t.Artists(i),
			Streams: t.Streams(i),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Streams > ranked[j].Streams
	})
	return truncate(ranked, k)
}

// FeatureRanking is one row of a per-feature top-K table.
type FeatureRanking struct {
	Track   string
	Artist  string
	Value   float64
	Streams int64
}

// TopByFeature ranks tracks by one of the four audio features descending,
// top k, ties in insertion order. Fields outside the model's feature set
// are rejected.
func TopByFeature(t *dataset.Table, f schema.Field, k int) ([]FeatureRanking, error) {
	if _, ok := t.Feature(f, 0); !ok && t.Len() > 0 {
		return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageDerive,
			"field "+f.String()+" is not an audio feature column")
	}
	ranked := make([]FeatureRanking, t.Len())
	for i := 0; i < t.Len(); i++ {
		v, _ := t.Feature(f, i)
		ranked[i] = FeatureRanking{
			Track:   t.TrackName(i),
			Artist:  t.Artists(i),
			Value:   v,
			Streams: t.Streams(i),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	return truncate(ranked, k), nil
}

// CorrelationMatrix holds pairwise Pearson correlations between stream
// counts and the four audio features. Values is square and row-aligned
// with Labels.
type CorrelationMatrix struct {
	Labels []string
	Values [][]float64
}

// At returns the correlation between columns i and j.
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Correlations computes the pairwise Pearson correlation matrix over raw
// stream counts and the four audio features. The diagonal is exactly 1 and
// the matrix is exactly symmetric; a zero-variance column yields NaN
// against every other column.
func Correlations(t *dataset.Table) CorrelationMatrix {
	features := schema.AudioFeatures()
	labels := make([]string, 0, len(features)+1)
	labels = append(labels, schema.FieldStreams.String())
	for _, f := range features {
		labels = append(labels, f.String())
	}

	n := t.Len()
	cols := make([][]float64, len(labels))
	cols[0] = make([]float64, n)
	for i := 0; i < n; i++ {
		cols[0][i] = float64(t.Streams(i))
	}
	for fi, f := range features {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i], _ = t.Feature(f, i)
		}
		cols[fi+1] = col
	}

	values := make([][]float64, len(cols))
	for i := range values {
		values[i] = make([]float64, len(cols))
		values[i][i] = 1
	}
	for i := range cols {
		for j := i + 1; j < len(cols); j++ {
			r := stat.Correlation(cols[i], cols[j], nil)
			values[i][j] = r
			values[j][i] = r
		}
	}
	return CorrelationMatrix{Labels: labels, Values: values}
}

// AgePoint is one row of the age-versus-streams view.
type AgePoint struct {
	Track       string
	Artist      string
	AgeYears    int64
	Streams     int64
	ReleaseDate time.Time
}

// AgeStreams returns (age, streams) rows for tracks no older than maxAge,
// in table order.
func AgeStreams(t *dataset.Table, maxAge int64) []AgePoint {
	points := make([]AgePoint, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if t.AgeYears(i) > maxAge {
			continue
		}
		points = append(points, AgePoint{
			Track:       t.TrackName(i),
			Artist:      t.Artists(i),
			AgeYears:    t.AgeYears(i),
			Streams:     t.Streams(i),
			ReleaseDate: t.ReleaseDate(i),
		})
	}
	return points
}

func truncate[T any](rows []T, k int) []T {
	if k >= 0 && len(rows) > k {
		return rows[:k]
	}
	return rows
}
