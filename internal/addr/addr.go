// Package addr implements the pairing arithmetic shared by the dyadic and
// value-map engines: translating an SDR's on-bit positions into the
// strictly-lower-triangular enumeration of position pairs.
package addr

// PairAddr maps one strictly-lower-triangular pair (xi, xj), xj < xi, into
// a dense address in [0, N(N-1)/2) for the universe size N the pair was
// drawn from. It is a bijection from {(a,b): 0 <= b < a < N} onto that
// range, independent of N itself.
func PairAddr(xi, xj int) int {
	return xi*(xi-1)/2 + xj
}

// TruncatedPairAddr reduces PairAddr(xi, xj) modulo tableSize, for backing
// tables smaller than the canonical N(N-1)/2.
func TruncatedPairAddr(xi, xj, tableSize int) int {
	return PairAddr(xi, xj) % tableSize
}

// PairCount returns the number of pair addresses an SDR of length k
// produces: k*(k-1)/2.
func PairCount(k int) int {
	return k * (k - 1) / 2
}

// Pairs iterates the pair addresses of a sorted SDR x in the fixed double
// loop order (i from 1, j from 0 to i-1), yielding the dense address for
// each pair. The sequence is reproducible for a given x regardless of how
// it was constructed, and it is generated lazily: no []int of addresses is
// ever materialized, so a caller processing a dense SDR does not pay for
// an O(k^2) allocation it discards immediately after iterating it once.
func Pairs(x []int) func(yield func(addr int) bool) {
	return func(yield func(addr int) bool) {
		for i := 1; i < len(x); i++ {
			xi := x[i]
			base := xi * (xi - 1) / 2
			for j := 0; j < i; j++ {
				if !yield(base + x[j]) {
					return
				}
			}
		}
	}
}

// TruncatedPairs is Pairs reduced modulo tableSize, for backing tables
// smaller than the canonical N(N-1)/2.
func TruncatedPairs(x []int, tableSize int) func(yield func(addr int) bool) {
	return func(yield func(addr int) bool) {
		for a := range Pairs(x) {
			if !yield(a % tableSize) {
				return
			}
		}
	}
}
