// Package dataset builds the cleaned, canonical track table from the raw
// catalog and projects it into the numeric form the modeling stages consume.
// A Table is created in a single pass and immutable thereafter.
package dataset

import (
	"math"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"gonum.org/v1/gonum/mat"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/schema"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/series"
)

// Track is one cleaned catalog entry, keyed by track name.
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

// Table is the cleaned track collection: Arrow-backed columns plus a
// track-name index. Instances are built once by Build and never mutated.
type Table struct {
	names   *series.Series[string]
	artists *series.Series[string]
	streams *series.Series[int64]
	release *series.Series[arrow.Date32]
	age     *series.Series[int64]
	collab  *series.Series[bool]
	// audio feature columns in schema.AudioFeatures order
	features []*series.Series[float64]

	index   map[string]int
	dropped int
}

// Len returns the number of tracks.
func (t *Table) Len() int {
	return t.names.Len()
}

// Dropped returns how many raw rows were excluded because their stream
// count could not be parsed.
func (t *Table) Dropped() int {
	return t.dropped
}

// TrackName returns the primary key of row i.
func (t *Table) TrackName(i int) string {
	return t.names.Value(i)
}

// Artists returns the credited artist name(s) of row i.
func (t *Table) Artists(i int) string {
	return t.artists.Value(i)
}

// Streams returns the cumulative play count of row i.
func (t *Table) Streams(i int) int64 {
	return t.streams.Value(i)
}

// ReleaseDate returns the reconstructed calendar date of row i.
func (t *Table) ReleaseDate(i int) time.Time {
	return t.release.Value(i).ToTime()
}

// AgeYears returns the derived track age of row i.
func (t *Table) AgeYears(i int) int64 {
	return t.age.Value(i)
}

// IsCollaboration reports whether row i credits more than one artist.
func (t *Table) IsCollaboration(i int) bool {
	return t.collab.Value(i)
}

// Feature returns the audio feature value of row i for one of the four
// model features; ok is false for any other field.
func (t *Table) Feature(f schema.Field, i int) (float64, bool) {
	for fi, af := range schema.AudioFeatures() {
		if af == f {
			return t.features[fi].Value(i), true
		}
	}
	return 0, false
}

// Row materializes row i as a Track value.
func (t *Table) Row(i int) Track {
	return Track{
		Name:          t.names.Value(i),
		Artists:       t.artists.Value(i),
		Streams:       t.streams.Value(i),
		ReleaseDate:   t.release.Value(i).ToTime(),
		AgeYears:      t.age.Value(i),
		Collaboration: t.collab.Value(i),
		Danceability:  t.features[0].Value(i),
		Valence:       t.features[1].Value(i),
		Energy:        t.features[2].Value(i),
		Acousticness:  t.features[3].Value(i),
	}
}

// Index returns the row number of the named track.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// FeatureNames returns the model feature column names in matrix order.
func (t *Table) FeatureNames() []string {
	fields := schema.AudioFeatures()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return names
}

// FeatureMatrix projects the table onto the four audio feature columns,
// row-aligned with the table's ordering.
func (t *Table) FeatureMatrix() *mat.Dense {
	n := t.Len()
	p := len(t.features)
	x := mat.NewDense(n, p, nil)
	for j, col := range t.features {
		for i := 0; i < n; i++ {
			x.Set(i, j, col.Value(i))
		}
	}
	return x
}

// TargetVector returns log1p-transformed stream counts, row-aligned with the
// table. The log transform reduces the heavy right skew of play counts.
func (t *Table) TargetVector() *mat.VecDense {
	n := t.Len()
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		y.SetVec(i, math.Log1p(float64(t.streams.Value(i))))
	}
	return y
}

// Release frees the Arrow memory behind every column. The table must not be
// used afterwards.
func (t *Table) Release() {
	t.names.Release()
	t.artists.Release()
	t.streams.Release()
	t.release.Release()
	t.age.Release()
	t.collab.Release()
	for _, f := range t.features {
		f.Release()
	}
}
