package dyadic

import (
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/Blimpyway/sdr-machine/internal/addr"
	"github.com/Blimpyway/sdr-machine/internal/sdr"
)

// stripeLock is a single mutex padded to a cache line, so that two
// adjacent stripes' locks never share a cache line and contend under
// concurrent writers to unrelated rows. Mirrors the cache-line-aware
// layout the teacher's SIMD backend selection cared about, repurposed
// here for lock striping instead of vector width.
type stripeLock struct {
	mu sync.Mutex
	_  cpu.CacheLinePad
}

// LockedMemory wraps Memory with an optional fine-grained locking mode, for
// callers that need concurrent writers into the same engine (spec allows,
// but does not require, such a mode — the default Memory stays lock-free).
// Rows are striped across a fixed number of locks; two writers touching
// different rows that happen to land in different stripes proceed without
// contending.
type LockedMemory struct {
	*Memory
	stripes []stripeLock
}

// NewLocked wraps a freshly constructed dyadic memory with row-striped
// locking. stripes controls how many locks rows are spread across; a
// larger count reduces contention among writers touching unrelated rows
// at the cost of more memory.
func NewLocked(n, p, stripes int) (*LockedMemory, error) {
	m, err := New(n, p)
	if err != nil {
		return nil, err
	}
	if stripes < 1 {
		stripes = 1
	}
	return &LockedMemory{Memory: m, stripes: make([]stripeLock, stripes)}, nil
}

func (lm *LockedMemory) stripeFor(row int) *stripeLock {
	return &lm.stripes[row%len(lm.stripes)]
}

// Store behaves like Memory.Store, but serializes writers per row-stripe
// so that concurrent callers may safely store into the same engine.
func (lm *LockedMemory) Store(x, y []int) error {
	if err := sdr.Validate(x, lm.n); err != nil {
		return err
	}
	if err := sdr.Validate(y, lm.n); err != nil {
		return err
	}

	for a := range addr.Pairs(x) {
		lock := lm.stripeFor(a)
		lock.mu.Lock()
		row := lm.data[a*lm.n : a*lm.n+lm.n]
		for _, j := range y {
			if row[j] < maxCounter {
				row[j]++
			}
		}
		lock.mu.Unlock()
	}
	return nil
}
