package triadic

import (
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/Blimpyway/sdr-machine/internal/sdr"
)

type stripeLock struct {
	mu sync.Mutex
	_  cpu.CacheLinePad
}

// LockedMemory wraps Memory with an optional fine-grained locking mode,
// striping the cube's i-axis across a fixed number of cache-line-padded
// locks so concurrent writers touching different x positions don't
// contend. Plain Memory stays the lock-free default; see dyadic.LockedMemory
// for the same pattern applied to the dyadic engine.
type LockedMemory struct {
	*Memory
	stripes []stripeLock
}

// NewLocked wraps a freshly constructed triadic memory with i-striped
// locking.
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

func (lm *LockedMemory) stripeFor(i int) *stripeLock {
	return &lm.stripes[i%len(lm.stripes)]
}

// Store behaves like Memory.Store, serializing writers per i-stripe so
// multiple goroutines may safely store into the same engine concurrently.
func (lm *LockedMemory) Store(x, y, z []int) error {
	if err := sdr.Validate(x, lm.n); err != nil {
		return err
	}
	if err := sdr.Validate(y, lm.n); err != nil {
		return err
	}
	if err := sdr.Validate(z, lm.n); err != nil {
		return err
	}

	for _, i := range x {
		lock := lm.stripeFor(i)
		lock.mu.Lock()
		for _, j := range y {
			base := (i*lm.n + j) * lm.n
			for _, k := range z {
				if lm.data[base+k] < maxCounter {
					lm.data[base+k]++
				}
			}
		}
		lock.mu.Unlock()
	}
	return nil
}
