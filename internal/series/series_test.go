package series

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSeries(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := New("artists", []string{"Bad Bunny", "Taylor Swift", "Beyoncé"}, mem)
	defer s.Release()

	assert.Equal(t, "artists", s.Name())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "Beyoncé", s.Value(2))
	assert.Equal(t, []string{"Bad Bunny", "Taylor Swift", "Beyoncé"}, s.Values())
	assert.False(t, s.IsNull(0))
}

func TestInt64Series(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := New("streams", []int64{3703895074, 0, 141381703}, mem)
	defer s.Release()

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(3703895074), s.Value(0))
	assert.Equal(t, []int64{3703895074, 0, 141381703}, s.Values())
}

func TestFloat64Series(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := New("danceability", []float64{71.5, 50, 0}, mem)
	defer s.Release()

	assert.Equal(t, []float64{71.5, 50, 0}, s.Values())
}

func TestBoolSeries(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := New("collab", []bool{true, false}, mem)
	defer s.Release()

	assert.True(t, s.Value(0))
	assert.False(t, s.Value(1))
}

func TestDate32Series(t *testing.T) {
	mem := memory.NewGoAllocator()
	release := time.Date(2023, time.July, 14, 0, 0, 0, 0, time.UTC)
	s := New("release", []arrow.Date32{arrow.Date32FromTime(release)}, mem)
	defer s.Release()

	assert.Equal(t, 1, s.Len())
	assert.True(t, release.Equal(s.Value(0).ToTime()))
}

func TestValueOutOfRange(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := New("streams", []int64{1}, mem)
	defer s.Release()

	assert.Zero(t, s.Value(-1))
	assert.Zero(t, s.Value(5))
}

func TestEmptySeries(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := New("empty", []string{}, mem)
	defer s.Release()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Values())
}

func TestNewSafeUnsupportedType(t *testing.T) {
	mem := memory.NewGoAllocator()
	_, err := NewSafe("bad", []int32{1, 2}, mem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported element type")
}

func TestNilAllocatorFallsBack(t *testing.T) {
	s := New("ok", []float64{1, 2}, nil)
	defer s.Release()
	assert.Equal(t, 2, s.Len())
}
