// Package common provides small shared numeric helpers used across the
// pipeline's statistics and modeling stages.
package common

import (
	"golang.org/x/exp/constraints"
)

// Number covers the numeric types the pipeline computes over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum returns the sum of xs; zero for an empty slice.
func Sum[T Number](xs []T) T {
	var total T
	for _, x := range xs {
		total += x
	}
	return total
}

// Mean returns the arithmetic mean of xs as float64; zero for an empty slice.
func Mean[T Number](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	return float64(Sum(xs)) / float64(len(xs))
}

// Variance returns the population variance of xs; zero for fewer than two
// values.
func Variance[T Number](xs []T) float64 {
	if len(xs) < 2 {
		return 0
	}
	mu := Mean(xs)
	var acc float64
	for _, x := range xs {
		d := float64(x) - mu
		acc += d * d
	}
	return acc / float64(len(xs))
}

// Percent returns part as a percentage of total; zero when total is zero.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// MinMax returns the smallest and largest values in xs. It panics on an
// empty slice; callers guard the empty case.
func MinMax[T Number](xs []T) (T, T) {
	minV, maxV := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
	}
	return minV, maxV
}
