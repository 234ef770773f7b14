// Package schema defines the canonical field vocabulary for the Spotify 2023
// track catalog. Raw input headers are renamed into this fixed enumeration
// exactly once at load time; every downstream stage references fields through
// the enumeration, never by re-parsing header strings.
package schema

import (
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
)

// Field identifies one canonical column of the cleaned table.
type Field int

const (
	FieldTrackName Field = iota
	FieldArtistNames
	FieldArtistCount
	FieldStreams
	FieldReleasedYear
	FieldReleasedMonth
	FieldReleasedDay
	FieldDanceability
	FieldValence
	FieldEnergy
	FieldAcousticness

	numFields
)

// rawHeaders maps each canonical field to the header it renames from.
var rawHeaders = [numFields]string{
	FieldTrackName:     "track_name",
	FieldArtistNames:   "artist(s)_name",
	FieldArtistCount:   "artist_count",
	FieldStreams:       "streams",
	FieldReleasedYear:  "released_year",
	FieldReleasedMonth: "released_month",
	FieldReleasedDay:   "released_day",
	FieldDanceability:  "danceability_%",
	FieldValence:       "valence_%",
	FieldEnergy:        "energy_%",
	FieldAcousticness:  "acousticness_%",
}

// names maps each canonical field to its display name.
var names = [numFields]string{
	FieldTrackName:     "Track Name",
	FieldArtistNames:   "Artist(s) Name",
	FieldArtistCount:   "Artist Count",
	FieldStreams:       "Streams",
	FieldReleasedYear:  "Released Year",
	FieldReleasedMonth: "Released Month",
	FieldReleasedDay:   "Released Day",
	FieldDanceability:  "Danceability %",
	FieldValence:       "Valence %",
	FieldEnergy:        "Energy %",
	FieldAcousticness:  "Acousticness %",
}

// droppedHeaders lists raw columns that are read and discarded: platform
// playlist/chart counters, musical key and mode, tempo, and the three audio
// feature percentages the model does not use.
var droppedHeaders = map[string]struct{}{
	"in_spotify_playlists": {},
	"in_spotify_charts":    {},
	"in_apple_playlists":   {},
	"in_apple_charts":      {},
	"in_deezer_playlists":  {},
	"in_deezer_charts":     {},
	"in_shazam_charts":     {},
	"bpm":                  {},
	"key":                  {},
	"mode":                 {},
	"instrumentalness_%":   {},
	"liveness_%":           {},
	"speechiness_%":        {},
}

// String returns the field's display name.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return names[f]
}

// RawHeader returns the raw input header this field renames from.
func (f Field) RawHeader() string {
	if f < 0 || f >= numFields {
		return ""
	}
	return rawHeaders[f]
}

// Fields returns every canonical field in declaration order.
func Fields() []Field {
	fields := make([]Field, numFields)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// AudioFeatures returns the model's feature columns in matrix order.
func AudioFeatures() []Field {
	return []Field{FieldDanceability, FieldValence, FieldEnergy, FieldAcousticness}
}

// IsDropped reports whether a raw header is discarded at load time.
func IsDropped(header string) bool {
	_, ok := droppedHeaders[header]
	return ok
}

// Validate checks that every canonical field's raw header is present exactly
// once in the input header row. A missing column is fatal: the pipeline
// cannot rename into its canonical vocabulary without it.
func Validate(headers []string) error {
	seen := make(map[string]int, len(headers))
	for _, h := range headers {
		seen[h]++
	}
	for f := Field(0); f < numFields; f++ {
		raw := rawHeaders[f]
		switch seen[raw] {
		case 0:
			return errors.NewSchemaError(raw, "expected input column is absent")
		case 1:
			// ok
		default:
			return errors.NewSchemaError(raw, "input column appears more than once")
		}
	}
	return nil
}
