package random

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// ErrInvalidDistribution is returned when a distribution cannot be sampled.
var ErrInvalidDistribution = errors.New("invalid distribution")

// Weighted pairs an item with its (unnormalized) weight.
type Weighted[T any] struct {
	Item   T
	Weight float64
}

// Normalize scales probabilities in place so they sum to 1.
// Zero, negative, NaN and infinite weights are rejected.
func Normalize(probabilities []float64) error {
	if err := checkWeights(probabilities); err != nil {
		return err
	}
	var sum float64
	for _, p := range probabilities {
		sum += p
	}
	for i := range probabilities {
		probabilities[i] /= sum
	}
	return nil
}

func checkWeights(probabilities []float64) error {
	for i, p := range probabilities {
		if p <= 0 || math.IsInf(p, 0) || math.IsNaN(p) {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidDistribution, i, p)
		}
	}
	return nil
}

// Cumulative returns the running sums of probabilities.
func Cumulative(probabilities []float64) []float64 {
	out := make([]float64, len(probabilities))
	var sum float64
	for i, p := range probabilities {
		sum += p
		out[i] = sum
	}
	return out
}

// Sample draws n distinct items from dist. After each draw the chosen item is
// removed and the remaining weights are renormalized.
func Sample[T any](src *Source, n int, dist []Weighted[T]) ([]T, error) {
	if n < 0 || n > len(dist) {
		return nil, fmt.Errorf("%w: cannot draw %d items from %d", ErrInvalidDistribution, n, len(dist))
	}

	items := make([]T, len(dist))
	probabilities := make([]float64, len(dist))
	for i, w := range dist {
		items[i] = w.Item
		probabilities[i] = w.Weight
	}
	if err := checkWeights(probabilities); err != nil {
		return nil, err
	}

	return draw(src, n, items, probabilities), nil
}

// Permute returns items in a random order.
func Permute[T any](src *Source, items []T) []T {
	if len(items) == 0 {
		return []T{}
	}

	working := make([]T, len(items))
	copy(working, items)
	probabilities := make([]float64, len(items))
	for i := range probabilities {
		probabilities[i] = 1 / float64(len(items))
	}

	return draw(src, len(items), working, probabilities)
}

// draw consumes items and probabilities, which must already be valid.
func draw[T any](src *Source, n int, items []T, probabilities []float64) []T {
	choices := make([]T, 0, n)
	for i := 0; i < n; i++ {
		// remaining weights are positive and finite, so this cannot fail
		_ = Normalize(probabilities)
		point := src.Next()
		cd := Cumulative(probabilities)

		index := len(cd) - 1
		for j, p := range cd {
			if p > point {
				index = j
				break
			}
		}

		choices = append(choices, items[index])
		items = append(items[:index], items[index+1:]...)
		probabilities = append(probabilities[:index], probabilities[index+1:]...)
	}
	return choices
}

// Subsets yields every size-k combination of items, in lexicographic order of
// indices. The yielded slice is reused between iterations; copy it to keep it.
func Subsets[T any](k int, items []T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if k < 0 || k > len(items) {
			return
		}
		current := make([]T, 0, k)

		var walk func(start int) bool
		walk = func(start int) bool {
			if len(current) == k {
				return yield(current)
			}
			// leave room for the remaining picks
			for i := start; i <= len(items)-(k-len(current)); i++ {
				current = append(current, items[i])
				if !walk(i + 1) {
					return false
				}
				current = current[:len(current)-1]
			}
			return true
		}
		walk(0)
	}
}
