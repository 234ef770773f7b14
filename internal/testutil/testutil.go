// Package testutil provides shared fixtures for pipeline tests: canned raw
// catalogs in the published CSV layout and helpers that build cleaned tables
// from them.
package testutil

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/csvio"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/dataset"
)

// Header is the raw catalog header row with every expected column.
const Header = "track_name,artist(s)_name,artist_count,released_year,released_month,released_day," +
	"in_spotify_playlists,in_spotify_charts,streams,in_apple_playlists,in_apple_charts," +
	"in_deezer_playlists,in_deezer_charts,in_shazam_charts,bpm,key,mode," +
	"danceability_%,valence_%,energy_%,acousticness_%,instrumentalness_%,liveness_%,speechiness_%"

// RawRow holds the fields a test cares about; the discarded platform
// columns are filled with placeholders.
type RawRow struct {
	Track        string
	Artists      string
	ArtistCount  int
	Year         int
	Month        int
	Day          int
	Streams      string // raw text, possibly with grouping commas
	Danceability float64
	Valence      float64
	Energy       float64
	Acousticness float64
}

// CSV renders a complete raw catalog for the given rows. Fields containing
// separators are quoted the way the published file quotes them.
func CSV(rows []RawRow) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')

	w := csv.NewWriter(&b)
	for _, r := range rows {
		record := []string{
			r.Track, r.Artists,
			strconv.Itoa(r.ArtistCount),
			strconv.Itoa(r.Year), strconv.Itoa(r.Month), strconv.Itoa(r.Day),
			"100", "10",
			r.Streams,
			"50", "5", "40", "4", "30", "120", "C", "Major",
			formatFloat(r.Danceability), formatFloat(r.Valence),
			formatFloat(r.Energy), formatFloat(r.Acousticness),
			"0", "10", "5",
		}
		if err := w.Write(record); err != nil {
			panic(err)
		}
	}
	w.Flush()
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SyntheticRows generates n distinct cleanable rows with deterministic
// feature values and stream counts related to the features, so models have
// signal to find.
func SyntheticRows(n int) []RawRow {
	rows := make([]RawRow, n)
	for i := 0; i < n; i++ {
		dance := float64(20 + (i*7)%70)
		valence := float64(10 + (i*13)%80)
		energy := float64(30 + (i*5)%60)
		acoustic := float64((i * 11) % 90)
		streams := 1_000_000 + int64(dance)*40_000 + int64(energy)*25_000 + int64(i%17)*9_000
		rows[i] = RawRow{
			Track:        fmt.Sprintf("Track %03d", i),
			Artists:      fmt.Sprintf("Artist %d", i%12),
			ArtistCount:  1 + i%3,
			Year:         2015 + i%9,
			Month:        1 + i%12,
			Day:          1 + i%28,
			Streams:      fmt.Sprintf("%d", streams),
			Danceability: dance,
			Valence:      valence,
			Energy:       energy,
			Acousticness: acoustic,
		}
	}
	return rows
}

// ReadRaw parses catalog text into a raw table.
func ReadRaw(t *testing.T, text string) *csvio.RawTable {
	t.Helper()
	opts := csvio.DefaultOptions()
	opts.Latin1 = false
	raw, err := csvio.NewReader(strings.NewReader(text), opts).Read()
	require.NoError(t, err)
	return raw
}

// BuildTable cleans catalog text into a track table, failing the test on
// any build error.
func BuildTable(t *testing.T, text string) *dataset.Table {
	t.Helper()
	table, err := dataset.Build(ReadRaw(t, text), dataset.DefaultBuildOptions(), zap.NewNop())
	require.NoError(t, err)
	return table
}
