package dyadic

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/Blimpyway/sdr-machine/internal/sdr"
)

// TestStoreQuery_S1 is scenario S1 from the spec: a single store/query
// round trip must recover the stored y exactly.
func TestStoreQuery_S1(t *testing.T) {
	m, err := New(1000, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	x := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	y := []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}

	if err := m.Store(x, y); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := m.Query(x)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !reflect.DeepEqual(got, y) {
		t.Errorf("Query(x) = %v, want %v", got, y)
	}
}

// TestStoreQuery_Property is property 2: with many pairwise-dissimilar x
// SDRs stored once each, at least 99% of queries recover the stored y.
func TestStoreQuery_Property(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large recall test in short mode")
	}

	const n, p, count = 1000, 10, 5000
	m, err := New(n, p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rng := rand.New(rand.NewPCG(1, 1))
	xs := sdr.RandomN(rng, count, n, p)
	ys := sdr.RandomN(rng, count, n, p)

	for i := range xs {
		if err := m.Store(xs[i], ys[i]); err != nil {
			t.Fatalf("Store[%d]: %v", i, err)
		}
	}

	mismatches := 0
	for i := range xs {
		got, err := m.Query(xs[i])
		if err != nil {
			t.Fatalf("Query[%d]: %v", i, err)
		}
		if !reflect.DeepEqual(got, ys[i]) {
			mismatches++
		}
	}

	rate := float64(mismatches) / float64(count)
	if rate > 0.01 {
		t.Errorf("mismatch rate %.4f exceeds 1%% (%d/%d)", rate, mismatches, count)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		n, p int
	}{
		{"n too small", 1, 1},
		{"p zero", 10, 0},
		{"p exceeds n", 10, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.n, c.p); err == nil {
				t.Errorf("New(%d,%d) expected error, got nil", c.n, c.p)
			}
		})
	}
}

func TestStore_ShapeError(t *testing.T) {
	m, err := New(100, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Store([]int{3, 1}, []int{1, 2}); err == nil {
		t.Error("expected shape error for unsorted x")
	}
	if err := m.Store([]int{1, 2}, []int{200}); err == nil {
		t.Error("expected shape error for out-of-range y")
	}
}

func TestLockedMemory_ConcurrentStore(t *testing.T) {
	const n, p = 500, 8
	lm, err := NewLocked(n, p, 16)
	if err != nil {
		t.Fatalf("NewLocked: %v", err)
	}

	rng := rand.New(rand.NewPCG(2, 2))
	xs := sdr.RandomN(rng, 200, n, p)
	ys := sdr.RandomN(rng, 200, n, p)

	done := make(chan error, len(xs))
	for i := range xs {
		i := i
		go func() {
			done <- lm.Store(xs[i], ys[i])
		}()
	}
	for range xs {
		if err := <-done; err != nil {
			t.Errorf("concurrent Store: %v", err)
		}
	}

	if _, err := lm.Query(xs[0]); err != nil {
		t.Errorf("Query after concurrent stores: %v", err)
	}
}
