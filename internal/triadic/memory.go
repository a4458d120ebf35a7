// Package triadic implements the triadic associative memory: storing a
// triple (x, y, z) of sparse binary vectors and recalling any one operand
// given the other two.
package triadic

import (
	"github.com/Blimpyway/sdr-machine/internal/sdr"
	"github.com/Blimpyway/sdr-machine/internal/sdrerr"
)

const maxCounter = 255

// Memory is a flat N x N x N cube of saturating 8-bit counters, addressed
// directly by (i,j,k) triples — no pairing function collapses three
// dimensions, so the cube is O(N^3) memory and callers size N accordingly
// (typically N <= 1000).
type Memory struct {
	n    int
	p    int
	data []uint8
}

// New allocates a triadic memory for universe size n and recall sparsity p.
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

	return &Memory{n: n, p: p, data: make([]uint8, n*n*n)}, nil
}

// N returns the configured universe size.
func (m *Memory) N() int { return m.n }

// P returns the configured recall sparsity.
func (m *Memory) P() int { return m.p }

// RawTable exposes the backing counter cube for a caller to checkpoint
// (spec §3: "a caller may checkpoint raw tables"). The slice aliases the
// memory's own storage; callers that persist it must not mutate it
// concurrently with Store.
func (m *Memory) RawTable() []uint8 { return m.data }

func (m *Memory) idx(i, j, k int) int {
	return (i*m.n+j)*m.n + k
}

// Store records the triple (x, y, z): for every (i,j,k) in the Cartesian
// product x*y*z, cube[i][j][k] is incremented, saturating at 255.
func (m *Memory) Store(x, y, z []int) error {
	if err := sdr.Validate(x, m.n); err != nil {
		return err
	}
	if err := sdr.Validate(y, m.n); err != nil {
		return err
	}
	if err := sdr.Validate(z, m.n); err != nil {
		return err
	}

	for _, i := range x {
		for _, j := range y {
			base := (i*m.n + j) * m.n
			for _, k := range z {
				if m.data[base+k] < maxCounter {
					m.data[base+k]++
				}
			}
		}
	}
	return nil
}

// Query recalls the operand left nil among x, y, z, given the other two.
// Exactly one of the three must be nil; any other combination is an arity
// error.
func (m *Memory) Query(x, y, z []int) ([]int, error) {
	switch {
	case x == nil && y == nil, x == nil && z == nil, y == nil && z == nil:
		return nil, &sdrerr.ArityError{Reason: "exactly one of x, y, z must be absent, got two or more"}
	case x != nil && y != nil && z != nil:
		return nil, &sdrerr.ArityError{Reason: "exactly one of x, y, z must be absent, got none"}
	case z == nil:
		return m.queryZ(x, y)
	case y == nil:
		return m.queryY(x, z)
	default:
		return m.queryX(y, z)
	}
}

// StoreFromQuery treats a fully-specified (x, y, z) call as a store,
// rather than the arity error Query would return for it. Spec text allows
// this convenience but calls it optional; it is opt-in here rather than
// the Query default because a read-only-looking call silently mutating
// state is a sharp library edge (see DESIGN.md Open Questions).
func (m *Memory) StoreFromQuery(x, y, z []int) error {
	return m.Store(x, y, z)
}

func (m *Memory) queryZ(x, y []int) ([]int, error) {
	if err := sdr.Validate(x, m.n); err != nil {
		return nil, err
	}
	if err := sdr.Validate(y, m.n); err != nil {
		return nil, err
	}
	sums := make([]int, m.n)
	for _, i := range x {
		for _, j := range y {
			base := (i*m.n + j) * m.n
			row := m.data[base : base+m.n]
			for k, v := range row {
				sums[k] += int(v)
			}
		}
	}
	return sdr.Binarize(sums, m.p), nil
}

func (m *Memory) queryY(x, z []int) ([]int, error) {
	if err := sdr.Validate(x, m.n); err != nil {
		return nil, err
	}
	if err := sdr.Validate(z, m.n); err != nil {
		return nil, err
	}
	sums := make([]int, m.n)
	for _, i := range x {
		for j := 0; j < m.n; j++ {
			base := (i*m.n + j) * m.n
			for _, k := range z {
				sums[j] += int(m.data[base+k])
			}
		}
	}
	return sdr.Binarize(sums, m.p), nil
}

func (m *Memory) queryX(y, z []int) ([]int, error) {
	if err := sdr.Validate(y, m.n); err != nil {
		return nil, err
	}
	if err := sdr.Validate(z, m.n); err != nil {
		return nil, err
	}
	sums := make([]int, m.n)
	for i := 0; i < m.n; i++ {
		for _, j := range y {
			base := (i*m.n + j) * m.n
			for _, k := range z {
				sums[i] += int(m.data[base+k])
			}
		}
	}
	return sdr.Binarize(sums, m.p), nil
}
