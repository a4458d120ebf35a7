// Package dyadic implements the dyadic associative memory: storing an
// association x -> y between two sparse binary vectors and recalling y
// given x.
package dyadic

import (
	"github.com/Blimpyway/sdr-machine/internal/addr"
	"github.com/Blimpyway/sdr-machine/internal/sdr"
	"github.com/Blimpyway/sdr-machine/internal/sdrerr"
)

const maxCounter = 255 // 8-bit saturating counter ceiling

// Memory is a flat N(N-1)/2 x N table of saturating 8-bit counters, keyed
// by the pair addresses of x and columns over the y universe. The table is
// stored as a single []uint8 (rows*N) rather than [][]uint8, following the
// flatten-to-one-slice layout the rest of this codebase uses for dense
// numeric arrays: one allocation, predictable strides.
type Memory struct {
	n    int
	p    int
	rows int // N(N-1)/2
	data []uint8
}

// New allocates a dyadic memory for universe size n and recall sparsity p.
func New(n, p int) (*Memory, error) {
	if n < 2 {
		return nil, &sdrerr.ConfigError{Field: "N", Reason: "must be at least 2"}
	}
	if p <= 0 {
		return nil, &sdrerr.ConfigError{Field: "P", Reason: "must be positive"}
	}
	if p > n {
		return nil, &sdrerr.ConfigError{Field: "P", Reason: "must not exceed N"}
	}

	rows := n * (n - 1) / 2
	return &Memory{
		n:    n,
		p:    p,
		rows: rows,
		data: make([]uint8, rows*n),
	}, nil
}

// N returns the configured universe size.
func (m *Memory) N() int { return m.n }

// P returns the configured recall sparsity.
func (m *Memory) P() int { return m.p }

// RawTable exposes the backing counter array for a caller to checkpoint
// (spec §3: "a caller may checkpoint raw tables"). The slice aliases the
// memory's own storage; callers that persist it must not mutate it
// concurrently with Store.
func (m *Memory) RawTable() []uint8 { return m.data }

// Store records the association x -> y: for every pair address a of x,
// and every on-bit j of y, table[a][j] is incremented, saturating at 255.
// Storing the same pair repeatedly is not idempotent — counters keep
// climbing until they saturate.
func (m *Memory) Store(x, y []int) error {
	if err := sdr.Validate(x, m.n); err != nil {
		return err
	}
	if err := sdr.Validate(y, m.n); err != nil {
		return err
	}

	for a := range addr.Pairs(x) {
		row := m.data[a*m.n : a*m.n+m.n]
		for _, j := range y {
			if row[j] < maxCounter {
				row[j]++
			}
		}
	}
	return nil
}

// Query recalls the SDR associated with x: every row addressed by x's
// pairs is summed into an N-length accumulator, then binarized to the
// configured sparsity P.
func (m *Memory) Query(x []int) ([]int, error) {
	if err := sdr.Validate(x, m.n); err != nil {
		return nil, err
	}

	sums := make([]int, m.n)
	for a := range addr.Pairs(x) {
		row := m.data[a*m.n : a*m.n+m.n]
		for j, v := range row {
			sums[j] += int(v)
		}
	}

	return sdr.Binarize(sums, m.p), nil
}
