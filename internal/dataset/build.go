package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/csvio"
	pipeerrors "github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/errors"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/schema"
	"github.com/zmazen/Spotify-Top-Tracks-Insights-2023/internal/series"
)

// BuildOptions configures cleaning and derivation.
type BuildOptions struct {
	// ReferenceDate is the fixed instant track age is measured against,
	// conventionally the last day of the analysis year.
	ReferenceDate time.Time
	// Allocator backs the table's Arrow columns; nil uses the Go allocator.
	Allocator memory.Allocator
}

// DefaultBuildOptions returns options anchored to the 2023 analysis year.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		ReferenceDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// ParseStreams coerces a raw stream count: grouping commas are stripped and
// the remainder must parse as a non-negative base-10 integer.
func ParseStreams(raw string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, pipeerrors.NewRowParseError(schema.FieldStreams.RawHeader(), raw)
	}
	if v < 0 {
		return 0, pipeerrors.NewRowParseError(schema.FieldStreams.RawHeader(), raw)
	}
	return v, nil
}

// AgeYears returns the whole years elapsed between release and the
// reference instant, truncated toward zero.
func AgeYears(release, reference time.Time) int64 {
	days := reference.Sub(release).Hours() / 24
	return int64(math.Floor(days / 365.25))
}

// Build cleans the raw catalog and derives the canonical track table in a
// single pass.
//
// Rows whose stream count fails coercion are excluded and counted, never
// retained with a placeholder. Any row whose date parts cannot form a valid
// calendar date aborts the build: date integrity is a correctness
// precondition, and one malformed date signals a schema problem worth
// surfacing. Duplicate track names abort the build as well, since the track
// name is the table's primary index.
func Build(raw *csvio.RawTable, opts BuildOptions, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReferenceDate.IsZero() {
		opts.ReferenceDate = DefaultBuildOptions().ReferenceDate
	}

	if err := schema.Validate(raw.Headers()); err != nil {
		return nil, err
	}

	canonical := make(map[string]struct{})
	for _, f := range schema.Fields() {
		canonical[f.RawHeader()] = struct{}{}
	}
	for _, h := range raw.Headers() {
		if _, ok := canonical[h]; ok || schema.IsDropped(h) {
			continue
		}
		logger.Warn("ignoring unrecognized input column", zap.String("column", h))
	}

	col := func(f schema.Field) []string {
		c, _ := raw.Column(f.RawHeader())
		return c
	}

	trackCol := col(schema.FieldTrackName)
	artistCol := col(schema.FieldArtistNames)
	countCol := col(schema.FieldArtistCount)
	streamCol := col(schema.FieldStreams)
	yearCol := col(schema.FieldReleasedYear)
	monthCol := col(schema.FieldReleasedMonth)
	dayCol := col(schema.FieldReleasedDay)

	featureFields := schema.AudioFeatures()
	featureCols := make([][]string, len(featureFields))
	for i, f := range featureFields {
		featureCols[i] = col(f)
	}

	n := raw.Len()
	names := make([]string, 0, n)
	artists := make([]string, 0, n)
	streams := make([]int64, 0, n)
	releases := make([]arrow.Date32, 0, n)
	ages := make([]int64, 0, n)
	collabs := make([]bool, 0, n)
	features := make([][]float64, len(featureFields))
	for i := range features {
		features[i] = make([]float64, 0, n)
	}
	index := make(map[string]int, n)

	dropped := 0
	for row := 0; row < n; row++ {
		streamCount, err := ParseStreams(streamCol[row])
		if err != nil {
			dropped++
			continue
		}

		name := trackCol[row]
		if _, dup := index[name]; dup {
			return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageClean,
				fmt.Sprintf("duplicate track name %q cannot index the table", name))
		}

		release, err := reconstructDate(name, yearCol[row], monthCol[row], dayCol[row])
		if err != nil {
			return nil, err
		}
		age := AgeYears(release, opts.ReferenceDate)
		if age < 0 {
			return nil, pipeerrors.NewDateConstructionError(name,
				fmt.Sprintf("release date %s is after the reference instant", release.Format(time.DateOnly)))
		}

		artistCount, err := strconv.ParseInt(strings.TrimSpace(countCol[row]), 10, 64)
		if err != nil || artistCount < 1 {
			return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageClean,
				fmt.Sprintf("track %q: artist count %q is not a positive integer", name, countCol[row]))
		}

		rowFeatures := make([]float64, len(featureFields))
		for fi, f := range featureFields {
			v, err := strconv.ParseFloat(strings.TrimSpace(featureCols[fi][row]), 64)
			if err != nil || v < 0 || v > 100 {
				return nil, pipeerrors.NewInvalidInputError(pipeerrors.StageClean,
					fmt.Sprintf("track %q: %s value %q is not a percentage", name, f, featureCols[fi][row]))
			}
			rowFeatures[fi] = v
		}

		index[name] = len(names)
		names = append(names, name)
		artists = append(artists, artistCol[row])
		streams = append(streams, streamCount)
		releases = append(releases, arrow.Date32FromTime(release))
		ages = append(ages, age)
		collabs = append(collabs, artistCount > 1)
		for fi := range featureFields {
			features[fi] = append(features[fi], rowFeatures[fi])
		}
	}

	logger.Info("cleaned raw catalog",
		zap.Int("raw_rows", n),
		zap.Int("kept", len(names)),
		zap.Int("dropped", dropped))

	mem := opts.Allocator
	featureSeries := make([]*series.Series[float64], len(featureFields))
	for fi, f := range featureFields {
		featureSeries[fi] = series.New(f.String(), features[fi], mem)
	}

	return &Table{
		names:    series.New(schema.FieldTrackName.String(), names, mem),
		artists:  series.New(schema.FieldArtistNames.String(), artists, mem),
		streams:  series.New(schema.FieldStreams.String(), streams, mem),
		release:  series.New("Release Date", releases, mem),
		age:      series.New("Track Age Years", ages, mem),
		collab:   series.New("Collaboration", collabs, mem),
		features: featureSeries,
		index:    index,
		dropped:  dropped,
	}, nil
}

// reconstructDate combines the year/month/day part columns into one calendar
// date, rejecting parts that do not round-trip (e.g. February 30th).
func reconstructDate(track, rawYear, rawMonth, rawDay string) (time.Time, error) {
	year, errY := strconv.Atoi(strings.TrimSpace(rawYear))
	month, errM := strconv.Atoi(strings.TrimSpace(rawMonth))
	day, errD := strconv.Atoi(strings.TrimSpace(rawDay))
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, pipeerrors.NewDateConstructionError(track,
			fmt.Sprintf("date parts %q/%q/%q are not integers", rawYear, rawMonth, rawDay))
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, pipeerrors.NewDateConstructionError(track,
			fmt.Sprintf("date parts %d/%d/%d are out of range", year, month, day))
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, pipeerrors.NewDateConstructionError(track,
			fmt.Sprintf("date parts %d/%d/%d do not form a calendar date", year, month, day))
	}
	return date, nil
}
