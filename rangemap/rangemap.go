// Package rangemap implements a generic sorted interval container keyed by
// address, shared by the segment and permission indices in corefile.
package rangemap

import "sort"

// Ranged is implemented by values stored in a RangeMap. Bounds reports the
// half-open range [base, end) the value occupies.
type Ranged interface {
	Bounds() (base, end uint64)
}

// RangeMap is a sorted, non-overlapping collection of ranged values. It does
// not coalesce automatically: callers that want adjacent-range merging (the
// segment index does; the permission index doesn't) implement it themselves
// on top of Append/Back/SetBack.
type RangeMap[V Ranged] struct {
	entries []V
}

// New returns an empty RangeMap.
func New[V Ranged]() *RangeMap[V] {
	return &RangeMap[V]{}
}

// Append pushes v to the end without maintaining sorted order.
func (r *RangeMap[V]) Append(v V) {
	r.entries = append(r.entries, v)
}

// Back returns the most recently appended entry, or ok=false if empty.
func (r *RangeMap[V]) Back() (v V, ok bool) {
	if len(r.entries) == 0 {
		return v, false
	}
	return r.entries[len(r.entries)-1], true
}

// SetBack overwrites the most recently appended entry in place. Callers use
// this to extend a coalesced range without appending a new one.
func (r *RangeMap[V]) SetBack(v V) {
	r.entries[len(r.entries)-1] = v
}

// Sort stably sorts entries by base address.
func (r *RangeMap[V]) Sort() {
	sort.SliceStable(r.entries, func(i, j int) bool {
		bi, _ := r.entries[i].Bounds()
		bj, _ := r.entries[j].Bounds()
		return bi < bj
	})
}

// Len reports the number of entries.
func (r *RangeMap[V]) Len() int {
	return len(r.entries)
}

// At returns the entry at index i.
func (r *RangeMap[V]) At(i int) V {
	return r.entries[i]
}

// firstEndingAfter returns the index of the first entry whose range ends
// strictly after addr, or len(entries) if none does. Requires Sort to have
// been called first.
func (r *RangeMap[V]) firstEndingAfter(addr uint64) int {
	return sort.Search(len(r.entries), func(i int) bool {
		_, end := r.entries[i].Bounds()
		return end > addr
	})
}

// FindContains returns the unique entry whose range includes addr.
func (r *RangeMap[V]) FindContains(addr uint64) (v V, ok bool) {
	i := r.firstEndingAfter(addr)
	if i >= len(r.entries) {
		return v, false
	}
	base, end := r.entries[i].Bounds()
	if base <= addr && addr < end {
		return r.entries[i], true
	}
	return v, false
}

// FindContainsOrFollows returns the entry whose range contains addr, or
// failing that, the entry with the smallest base greater than addr.
func (r *RangeMap[V]) FindContainsOrFollows(addr uint64) (v V, ok bool) {
	i := r.firstEndingAfter(addr)
	if i >= len(r.entries) {
		return v, false
	}
	return r.entries[i], true
}
