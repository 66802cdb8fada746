package diskscan

import (
	"sort"

	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/google/uuid"
)

// TypeCodes carries the architecture-specific type byte/code for every
// layout the scanner might report under (§3). I386 is go-diskfs's own
// mbr.Type, the same type its partition/mbr.Table entries carry, so a
// recovered partition's type byte is always expressed in the library's own
// vocabulary rather than a parallel uint8 the rest of the ecosystem doesn't
// recognize.
type TypeCodes struct {
	I386  mbr.Type
	Mac   uint8
	Sun   uint8
	Xbox  uint8
	Humax uint8
}

// Partition is the in-memory descriptor the scanner populates for every
// candidate it admits (§3). It is never serialized to on-media format by
// this package; downstream writers own that.
type Partition struct {
	Start  uint64
	Size   uint64
	Kind   FSKind
	Status PartitionStatus
	Types  TypeCodes

	GPTPartitionGUID uuid.UUID
	GPTTypeGUID      uuid.UUID

	SuperblockErr SuperblockError

	// SBOffset is the distance from the partition start to the backup
	// structure that matched; zero if the match was at the front (§3).
	SBOffset uint64

	// Order is 1..4 for MBR primaries, otherwise a sequential index
	// assigned by the architecture policy's init_part_order (§4.3).
	Order int
}

// partNode is one doubly-linked node; prev/next are exposed only within the
// package, matching §9's guidance that no consumer may rely on pointer
// stability across insertions — callers use PartitionList's slice-returning
// methods instead.
type partNode struct {
	part       Partition
	prev, next *partNode
}

// PartitionList is a doubly-linked, order-preserving list of partition
// descriptors whose Insert rejects exact (start, size, kind) duplicates
// (§3).
type PartitionList struct {
	head, tail *partNode
	len        int
}

// NewPartitionList returns an empty list.
func NewPartitionList() *PartitionList {
	return &PartitionList{}
}

// Insert appends p to the list in discovery order (§5), unless an entry
// with the identical (Start, Size, Kind) already exists, in which case the
// insertion is a silent no-op (§3, §7). Reports whether it inserted.
func (l *PartitionList) Insert(p Partition) bool {
	for n := l.head; n != nil; n = n.next {
		if n.part.Start == p.Start && n.part.Size == p.Size && n.part.Kind == p.Kind {
			return false
		}
	}
	node := &partNode{part: p}
	if l.tail == nil {
		l.head, l.tail = node, node
	} else {
		node.prev = l.tail
		l.tail.next = node
		l.tail = node
	}
	l.len++
	return true
}

// Len reports the number of partitions currently in the list.
func (l *PartitionList) Len() int { return l.len }

// Slice returns partitions in discovery (insertion) order.
func (l *PartitionList) Slice() []Partition {
	out := make([]Partition, 0, l.len)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.part)
	}
	return out
}

// Sorted returns partitions ordered ascending by Start (§3, §5's
// "post-scan sorting imposes ascending-start order").
func (l *PartitionList) Sorted() []Partition {
	out := l.Slice()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// UpdateSize rewrites the Size of the (first, by Start) partition matching
// start, used by AlignList (§4.1) to grow an entry up to its rounded
// boundary in place.
func (l *PartitionList) UpdateSize(start uint64, newSize uint64) bool {
	for n := l.head; n != nil; n = n.next {
		if n.part.Start == start {
			n.part.Size = newSize
			return true
		}
	}
	return false
}

// RemoveStatus removes every partition with the given status, returning how
// many were removed. Used by extended-partition synthesis (§4.7) to drop
// stale `extended` entries before recomputing them.
func (l *PartitionList) RemoveStatus(status PartitionStatus) int {
	removed := 0
	n := l.head
	for n != nil {
		next := n.next
		if n.part.Status == status {
			l.remove(n)
			removed++
		}
		n = next
	}
	return removed
}

func (l *PartitionList) remove(n *partNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.len--
}

// Rebuild replaces the list contents with parts, in the given order,
// re-linking from scratch. Used by reconciliation steps that compute a new
// sorted list (extended-partition synthesis, alignment).
func (l *PartitionList) Rebuild(parts []Partition) {
	l.head, l.tail, l.len = nil, nil, 0
	for _, p := range parts {
		l.Insert(p)
	}
}

// InsertSorted inserts p preserving ascending-Start order among the current
// contents (§4.7: "Insert into the list preserving sort order").
func (l *PartitionList) InsertSorted(p Partition) {
	if l.head == nil || p.Start <= l.head.part.Start {
		node := &partNode{part: p, next: l.head}
		if l.head != nil {
			l.head.prev = node
		} else {
			l.tail = node
		}
		l.head = node
		l.len++
		return
	}
	n := l.head
	for n.next != nil && n.next.part.Start < p.Start {
		n = n.next
	}
	node := &partNode{part: p, prev: n, next: n.next}
	if n.next != nil {
		n.next.prev = node
	} else {
		l.tail = node
	}
	n.next = node
	l.len++
}
