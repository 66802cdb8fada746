package diskscan

import "sort"

// hintSetCapacity is the hint set's fixed capacity (§3): insertion beyond
// this is silently dropped, a performance concern only (§7).
const hintSetCapacity = 1024

// HintSet is a sorted, deduplicated, capacity-bounded multiset of candidate
// byte offsets to probe ahead of the linear cursor (§3, §4.2). The driver
// keeps two independent instances: one for general hints, one for MD-RAID
// trailing-superblock offsets (§4.5); they never cross over.
type HintSet struct {
	offsets []uint64
}

// NewHintSet returns an empty hint set.
func NewHintSet() *HintSet {
	return &HintSet{offsets: make([]uint64, 0, 64)}
}

// Insert performs a binary-search insertion, skipping exact duplicates and
// dropping the insertion once the set is at capacity.
func (h *HintSet) Insert(offset uint64) {
	i := sort.Search(len(h.offsets), func(i int) bool { return h.offsets[i] >= offset })
	if i < len(h.offsets) && h.offsets[i] == offset {
		return // already present: idempotent
	}
	if len(h.offsets) >= hintSetCapacity {
		return // silently dropped, §7
	}
	h.offsets = append(h.offsets, 0)
	copy(h.offsets[i+1:], h.offsets[i:])
	h.offsets[i] = offset
}

// PeekLEQ returns the largest offset <= cursor, if any.
func (h *HintSet) PeekLEQ(cursor uint64) (uint64, bool) {
	// offsets is ascending; find the last element <= cursor.
	i := sort.Search(len(h.offsets), func(i int) bool { return h.offsets[i] > cursor })
	if i == 0 {
		return 0, false
	}
	return h.offsets[i-1], true
}

// PeekGT returns the smallest offset strictly greater than cursor, if any —
// used by the driver to compute the next candidate position (§4.5 step 6).
func (h *HintSet) PeekGT(cursor uint64) (uint64, bool) {
	i := sort.Search(len(h.offsets), func(i int) bool { return h.offsets[i] > cursor })
	if i == len(h.offsets) {
		return 0, false
	}
	return h.offsets[i], true
}

// DrainLEQ removes and returns every offset <= cursor, and separately
// reports whether any offset was exactly equal to cursor (the driver's
// search_now gate, §4.5 step 3).
func (h *HintSet) DrainLEQ(cursor uint64) (drained []uint64, hitCursor bool) {
	i := sort.Search(len(h.offsets), func(i int) bool { return h.offsets[i] > cursor })
	if i == 0 {
		return nil, false
	}
	drained = append(drained, h.offsets[:i]...)
	h.offsets = h.offsets[i:]
	if len(drained) > 0 && drained[len(drained)-1] == cursor {
		hitCursor = true
	}
	return drained, hitCursor
}

// Len reports the number of pending hints.
func (h *HintSet) Len() int { return len(h.offsets) }
