package chars

import (
	"fmt"
	"sort"
)

// RangeMap is an associative structure mapping closed key intervals to
// values, backed by a sorted slice. Lookups binary-search on the interval
// upper bound. Intervals may not overlap; Add fails if a new interval
// collides with one already present.
//
// The zero value is an empty map ready to use.
type RangeMap[V any] struct {
	entries []rangeMapEntry[V]
}

type rangeMapEntry[V any] struct {
	lo, hi rune
	val    V
}

// Add maps the closed interval [lo, hi] to val. Returns an error if lo > hi
// or if the interval overlaps one already in the map.
func (m *RangeMap[V]) Add(lo, hi rune, val V) error {
	if lo > hi {
		return fmt.Errorf("range start %q is after range end %q", lo, hi)
	}

	// find the first entry whose upper bound reaches lo; if it exists and
	// starts at or before hi, the two overlap.
	idx := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].hi >= lo
	})
	if idx < len(m.entries) && m.entries[idx].lo <= hi {
		e := m.entries[idx]
		return fmt.Errorf("range [%q, %q] overlaps existing range [%q, %q]", lo, hi, e.lo, e.hi)
	}

	m.entries = append(m.entries, rangeMapEntry[V]{})
	copy(m.entries[idx+1:], m.entries[idx:])
	m.entries[idx] = rangeMapEntry[V]{lo: lo, hi: hi, val: val}
	return nil
}

// TryFind looks up the value of the interval covering k. The second return
// is false if no interval covers it.
func (m *RangeMap[V]) TryFind(k rune) (V, bool) {
	idx := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].hi >= k
	})
	if idx < len(m.entries) && m.entries[idx].lo <= k {
		return m.entries[idx].val, true
	}
	var zero V
	return zero, false
}

// Len returns the number of intervals in the map.
func (m *RangeMap[V]) Len() int {
	return len(m.entries)
}

// Each calls fn for every interval in key order.
func (m *RangeMap[V]) Each(fn func(lo, hi rune, val V)) {
	for _, e := range m.entries {
		fn(e.lo, e.hi, e.val)
	}
}
