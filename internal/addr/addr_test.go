package addr

import (
	"fmt"
	"testing"
)

// TestPairAddr_Bijection verifies addr(a,b) is unique and lies in
// [0, N(N-1)/2) for every strictly-lower-triangular pair under N.
func TestPairAddr_Bijection(t *testing.T) {
	sizes := []int{5, 16, 64, 200}

	for _, n := range sizes {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			seen := make(map[int]bool)
			limit := n * (n - 1) / 2

			for a := 1; a < n; a++ {
				for b := 0; b < a; b++ {
					addr := PairAddr(a, b)
					if addr < 0 || addr >= limit {
						t.Fatalf("PairAddr(%d,%d)=%d out of range [0,%d)", a, b, addr, limit)
					}
					if seen[addr] {
						t.Fatalf("PairAddr(%d,%d)=%d collides with a previous pair", a, b, addr)
					}
					seen[addr] = true
				}
			}

			if len(seen) != limit {
				t.Fatalf("expected %d distinct addresses, got %d", limit, len(seen))
			}
		})
	}
}

func TestPairs_OrderAndCount(t *testing.T) {
	x := []int{2, 5, 9, 20}

	var got []int
	for a := range Pairs(x) {
		got = append(got, a)
	}

	want := []int{
		PairAddr(5, 2),
		PairAddr(9, 2), PairAddr(9, 5),
		PairAddr(20, 2), PairAddr(20, 5), PairAddr(20, 9),
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d addresses, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("addr[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if got, want := len(got), PairCount(len(x)); got != want {
		t.Errorf("PairCount(%d) = %d, want %d", len(x), want, got)
	}
}

func TestPairs_EarlyStop(t *testing.T) {
	x := []int{1, 2, 3, 4, 5}

	n := 0
	for range Pairs(x) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("expected iteration to stop after 2 yields, got %d", n)
	}
}

func TestTruncatedPairAddr(t *testing.T) {
	got := TruncatedPairAddr(20, 5, 7)
	want := PairAddr(20, 5) % 7
	if got != want {
		t.Errorf("TruncatedPairAddr = %d, want %d", got, want)
	}
}
