// Package valuemap implements the bit-pair value (correlator) map: a
// one-dimensional accumulator over the bit-pair addresses of a single SDR,
// supporting add/query/score/mean.
package valuemap

import (
	"github.com/Blimpyway/sdr-machine/internal/addr"
	"github.com/Blimpyway/sdr-machine/internal/sdrerr"
)

// Map is a vector of M signed 32-bit accumulators, addressed by the
// truncated bit-pair addresses of the SDRs it is fed.
type Map struct {
	vmap    []int32
	totals  int64
	memSize int
}

// Option configures New.
type Option func(*config)

type config struct {
	sdrSize int
	memSize int
}

// WithSDRSize sizes the map as the canonical number of bit-pairs available
// in an sdrSize-wide space: sdrSize*(sdrSize-1)/2.
func WithSDRSize(sdrSize int) Option {
	return func(c *config) { c.sdrSize = sdrSize }
}

// WithMemSize caps the map at memBytes worth of int32 accumulators.
func WithMemSize(memBytes int) Option {
	return func(c *config) { c.memSize = memBytes }
}

// New builds a value map. At least one of WithSDRSize / WithMemSize must be
// given. If both are given, the smaller of the two resulting sizes wins —
// WithMemSize is then a not-to-exceed cap rather than an exact size.
func New(opts ...Option) (*Map, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	var size int
	switch {
	case c.sdrSize == 0 && c.memSize == 0:
		return nil, &sdrerr.ConfigError{Field: "size", Reason: "at least one of sdr size or mem size must be specified"}
	case c.sdrSize == 0:
		size = c.memSize / 4
	case c.memSize == 0:
		size = c.sdrSize * (c.sdrSize - 1) / 2
	default:
		bySDR := c.sdrSize * (c.sdrSize - 1) / 2
		byMem := c.memSize / 4
		size = min(bySDR, byMem)
	}

	if size <= 0 {
		return nil, &sdrerr.ConfigError{Field: "size", Reason: "resolved map size must be positive"}
	}

	return &Map{vmap: make([]int32, size), memSize: size}, nil
}

// Size returns M, the number of addressable accumulators.
func (m *Map) Size() int { return len(m.vmap) }

// RawTable exposes the backing accumulator vector for a caller to
// checkpoint (spec §3: "a caller may checkpoint raw tables"). The slice
// aliases the map's own storage; callers that persist it must not mutate
// it concurrently with Add.
func (m *Map) RawTable() []int32 { return m.vmap }

// Add increments every bit-pair address of sdr by value, and returns the
// number of pairs touched along with the running total of all values
// written to this map so far (value times the number of addresses touched,
// accumulated across every Add call).
func (m *Map) Add(sdr []int, value int32) (pairsAdded int, runningTotal int64) {
	for a := range addr.TruncatedPairs(sdr, len(m.vmap)) {
		m.vmap[a] += value
		pairsAdded++
	}
	m.totals += int64(pairsAdded) * int64(value)
	return pairsAdded, m.totals
}

// PairValue is one (i,j) bit-pair paired with its accumulator value,
// yielded lazily by Query.
type PairValue struct {
	I, J  int
	Value int32
}

// Query yields, lazily, the accumulator value at every bit-pair address of
// sdr. The table is only read, never copied.
func (m *Map) Query(sdr []int) func(yield func(PairValue) bool) {
	return func(yield func(PairValue) bool) {
		for i := 1; i < len(sdr); i++ {
			xi := sdr[i]
			base := xi * (xi - 1) / 2
			for j := 0; j < i; j++ {
				a := (base + sdr[j]) % len(m.vmap)
				if !yield(PairValue{I: sdr[i], J: sdr[j], Value: m.vmap[a]}) {
					return
				}
			}
		}
	}
}

// Score returns the mean accumulator value over every bit pair of sdr,
// accumulated in 64 bits before dividing. It is undefined (returns an
// error) for an SDR with fewer than two on-bits, since there is no pair to
// average over.
func (m *Map) Score(sdr []int) (float64, error) {
	if len(sdr) < 2 {
		return 0, &sdrerr.ShapeError{Field: "sdr", Reason: "score requires at least two on-bits"}
	}

	var sum int64
	var count int64
	for pv := range m.Query(sdr) {
		sum += int64(pv.Value)
		count++
	}
	return float64(sum) / float64(count), nil
}

// Mean returns the global mean value per cell: runningTotal / M. Callers
// use it as a baseline to detect unusually-scored SDRs.
func (m *Map) Mean() float64 {
	return float64(m.totals) / float64(len(m.vmap))
}
