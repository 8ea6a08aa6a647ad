package results

import (
	"fmt"
	"sort"
)

// DefaultCapacity bounds sample ids per run. The bound exists to surface
// corrupt ids loudly instead of growing without limit on garbage input.
const DefaultCapacity = 4_000_000

// Buffer collects results keyed by sample id. Appends for one id keep their
// order; ids are emitted in ascending order at drain time. The buffer grows
// with the ids actually seen rather than preallocating the full capacity.
type Buffer struct {
	capacity int64
	slots    map[int64][]string
	count    int
}

// NewBuffer returns an empty buffer accepting ids in [0, capacity). A
// non-positive capacity selects DefaultCapacity.
func NewBuffer(capacity int64) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity, slots: make(map[int64][]string)}
}

// Append records one result for the sample id.
func (b *Buffer) Append(id int64, result string) error {
	if id < 0 || id >= b.capacity {
		return fmt.Errorf("sample id %d outside buffer range [0, %d)", id, b.capacity)
	}
	b.slots[id] = append(b.slots[id], result)
	b.count++
	return nil
}

// Len returns the total number of buffered results across all ids.
func (b *Buffer) Len() int { return b.count }

// IDs returns the populated sample ids in ascending order.
func (b *Buffer) IDs() []int64 {
	ids := make([]int64, 0, len(b.slots))
	for id := range b.slots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Walk visits every populated id in ascending order, passing the results in
// append order. Iteration stops at the first error.
func (b *Buffer) Walk(fn func(id int64, results []string) error) error {
	for _, id := range b.IDs() {
		if err := fn(id, b.slots[id]); err != nil {
			return err
		}
	}
	return nil
}
