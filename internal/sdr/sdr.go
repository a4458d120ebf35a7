// Package sdr carries the shared data contract for Sparse Distributed
// Representations: validation, the binarize primitive used to turn a noisy
// accumulator into a sparse SDR, a seeded random-SDR generator for tests
// and benchmarks, and a couple of similarity helpers the engines' callers
// use to judge recall quality.
package sdr

import (
	"math/rand/v2"
	"slices"

	"github.com/Blimpyway/sdr-machine/internal/sdrerr"
)

// Validate checks that x is a legal SDR over universe size n: strictly
// ascending, and every element in [0, n). It is the precondition every
// engine operation runs before touching any table.
func Validate(x []int, n int) error {
	for i, v := range x {
		if v < 0 || v >= n {
			return &sdrerr.ShapeError{Field: "sdr", Reason: "position out of range [0,N)"}
		}
		if i > 0 && x[i-1] >= v {
			return &sdrerr.ShapeError{Field: "sdr", Reason: "positions must be strictly ascending (sorted, unique)"}
		}
	}
	return nil
}

// Binarize selects the sparse SDR encoded by a numeric accumulator: the
// positions whose value is at least the P-th largest value in sums. Ties
// at the threshold are included, so the result may have more than P
// positions; if the threshold is zero, every nonzero position is returned
// instead, which may be fewer than P. sums is never mutated.
//
// This mirrors the reference implementation's approach of sorting a copy
// of the accumulator to find the threshold rather than a true linear-time
// selection algorithm — acceptable since the universe sizes this module
// targets (a few thousand at most) make O(n log n) cheap.
func Binarize(sums []int, p int) []int {
	if p <= 0 || len(sums) == 0 {
		return nil
	}

	sorted := slices.Clone(sums)
	slices.Sort(sorted)

	k := p
	if k > len(sorted) {
		k = len(sorted)
	}
	threshold := sorted[len(sorted)-k]

	result := make([]int, 0, p)
	if threshold == 0 {
		for i, v := range sums {
			if v != 0 {
				result = append(result, i)
			}
		}
		return result
	}

	for i, v := range sums {
		if v >= threshold {
			result = append(result, i)
		}
	}
	return result
}

// Random draws one SDR of length p over universe size width, using rng for
// deterministic, repeatable test fixtures.
func Random(rng *rand.Rand, width, p int) []int {
	idx := rng.Perm(width)[:p]
	slices.Sort(idx)
	return idx
}

// RandomN draws count independent SDRs, each of length p over universe
// size width.
func RandomN(rng *rand.Rand, count, width, p int) [][]int {
	out := make([][]int, count)
	for i := range out {
		out[i] = Random(rng, width, p)
	}
	return out
}

// Overlap counts the shared on-bit positions between two sorted SDRs using
// a two-pointer merge, the same algorithm the reference implementation
// compares against a naive numpy overlap count.
func Overlap(a, b []int) int {
	i, j, n := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			n++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return n
}

// OverlapRatio normalizes Overlap by the smaller SDR's length, giving a
// value in [0,1] usable to judge whether a recalled SDR matches a stored
// one closely enough.
func OverlapRatio(a, b []int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	return float64(Overlap(a, b)) / float64(minLen)
}
