package parallel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessIndexedPreservesOrder(t *testing.T) {
	wp := NewWorkerPool(4)
	defer wp.Close()

	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	results := ProcessIndexed(wp, items, func(_ int, v int) int {
		return v * v
	})

	assert.Len(t, results, 100)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestProcessIndexedPassesIndex(t *testing.T) {
	wp := NewWorkerPool(2)
	defer wp.Close()

	results := ProcessIndexed(wp, []string{"a", "b", "c"}, func(i int, v string) string {
		return v + string(rune('0'+i))
	})

	assert.Equal(t, []string{"a0", "b1", "c2"}, results)
}

func TestProcessIndexedEmptyInput(t *testing.T) {
	wp := NewWorkerPool(0)
	defer wp.Close()

	results := ProcessIndexed(wp, []int(nil), func(_ int, v int) int { return v })
	assert.Nil(t, results)
}

func TestWorkerPoolDefaultsToCPUCount(t *testing.T) {
	wp := NewWorkerPool(-1)
	defer wp.Close()
	assert.Positive(t, wp.numWorkers)
}
