package stats

import (
	xxhash "github.com/cespare/xxhash/v2"
)

// streamAccumulator groups stream totals by artist key using an
// xxhash-bucketed map with full-key collision chains, preserving first-seen
// order for stable tie-breaking downstream.
type streamAccumulator struct {
	buckets map[uint64][]*ArtistStreams
	order   []*ArtistStreams
}

func newStreamAccumulator() *streamAccumulator {
	return &streamAccumulator{
		buckets: make(map[uint64][]*ArtistStreams),
	}
}

func (a *streamAccumulator) add(artist string, streams int64) {
	hash := xxhash.Sum64String(artist)
	for _, entry := range a.buckets[hash] {
		if entry.Artist == artist {
			entry.Streams += streams
			return
		}
	}
	entry := &ArtistStreams{Artist: artist, Streams: streams}
	a.buckets[hash] = append(a.buckets[hash], entry)
	a.order = append(a.order, entry)
}

// entries returns the accumulated totals in first-seen order.
func (a *streamAccumulator) entries() []ArtistStreams {
	out := make([]ArtistStreams, len(a.order))
	for i, entry := range a.order {
		out[i] = *entry
	}
	return out
}
