// Package idslot implements the ID-keyed associative variant: instead of
// accumulating counts, each addressed slot cell is overwritten with a
// 32-bit identifier, and queries tally which IDs co-occur most across the
// slots a query SDR addresses (a heavy-hitters query over a sampled
// sketch).
package idslot

import (
	"sort"

	"github.com/Blimpyway/sdr-machine/internal/addr"
	"github.com/Blimpyway/sdr-machine/internal/sdr"
	"github.com/Blimpyway/sdr-machine/internal/sdrerr"
)

// Table is a flat numSlots x slotSize array of uint32 cells. 0 is the
// reserved "empty" sentinel and is never stored or returned.
type Table struct {
	numSlots int
	slotSize int
	data     []uint32
}

// New allocates a table sized from a byte budget: numSlots = memBytes /
// (slotSize*4), since each cell is a 4-byte id.
func New(memBytes, slotSize int) (*Table, error) {
	if slotSize <= 0 {
		return nil, &sdrerr.ConfigError{Field: "slotSize", Reason: "must be positive"}
	}
	numSlots := memBytes / (slotSize * 4)
	if numSlots <= 0 {
		return nil, &sdrerr.ConfigError{Field: "memBytes", Reason: "too small for even one slot at the given slot size"}
	}

	return &Table{
		numSlots: numSlots,
		slotSize: slotSize,
		data:     make([]uint32, numSlots*slotSize),
	}, nil
}

// NumSlots returns the number of addressable slots.
func (t *Table) NumSlots() int { return t.numSlots }

// SlotSize returns the number of cells per slot.
func (t *Table) SlotSize() int { return t.slotSize }

// RawTable exposes the backing ID array for a caller to checkpoint (spec
// §3: "a caller may checkpoint raw tables"). The slice aliases the
// table's own storage; callers that persist it must not mutate it
// concurrently with Store.
func (t *Table) RawTable() []uint32 { return t.data }

// MinSDRSize recommends a minimum SDR width so the full slot space is used
// reasonably: the number of distinct bit-pairs an SDR can produce should be
// comparable to NumSlots.
func (t *Table) MinSDRSize() int {
	// numSlots ~= w*(w-1)/2  =>  w ~= sqrt(2*numSlots) + 1
	w := 1
	for w*(w-1)/2 < t.numSlots {
		w++
	}
	return w
}

// Store writes id into every slot addressed by sdr's bit pairs, at a
// hash-selected cell within the slot so that collisions spread
// pseudo-randomly rather than always overwriting cell 0.
func (t *Table) Store(sd []int, id uint32) error {
	if id == 0 {
		return &sdrerr.ShapeError{Field: "id", Reason: "0 is the reserved empty sentinel"}
	}
	if err := sdr.Validate(sd, t.maxWidth()); err != nil {
		return err
	}

	for a := range addr.TruncatedPairs(sd, t.numSlots) {
		cell := int(uint64(id) * uint64(a) % uint64(t.slotSize))
		t.data[a*t.slotSize+cell] = id
	}
	return nil
}

// maxWidth returns an upper bound for sdr.Validate: the table truncates
// addresses modulo numSlots, so it places no real bound on SDR width
// beyond what callers consider meaningful. A width far larger than any
// realistic universe is used as a practical sentinel.
func (t *Table) maxWidth() int {
	return 1 << 30
}

// Hit is one (ID, count) result from Query, where count is the number of
// addressed slots in which ID appeared.
type Hit struct {
	ID    uint32
	Count int
}

// Query collects the IDs found across every slot addressed by sdr's bit
// pairs, tallies occurrences, and returns those whose count exceeds
// threshold, ordered by descending count (ties broken by ascending ID for
// a deterministic total order).
func (t *Table) Query(sd []int, threshold int) ([]Hit, error) {
	if err := sdr.Validate(sd, t.maxWidth()); err != nil {
		return nil, err
	}

	counts := make(map[uint32]int)
	for a := range addr.TruncatedPairs(sd, t.numSlots) {
		slot := t.data[a*t.slotSize : a*t.slotSize+t.slotSize]
		for _, id := range slot {
			if id == 0 {
				continue
			}
			counts[id]++
		}
	}

	hits := make([]Hit, 0, len(counts))
	for id, c := range counts {
		if c > threshold {
			hits = append(hits, Hit{ID: id, Count: c})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Count != hits[j].Count {
			return hits[i].Count > hits[j].Count
		}
		return hits[i].ID < hits[j].ID
	})
	return hits, nil
}
