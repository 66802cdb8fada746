package diskscan

import "testing"

func TestPartitionListRejectsExactDuplicates(t *testing.T) {
	l := NewPartitionList()
	p := Partition{Start: 1024, Size: 2048, Kind: FSNTFS}

	if !l.Insert(p) {
		t.Fatal("first insert should succeed")
	}
	if l.Insert(p) {
		t.Fatal("exact duplicate insert should be rejected")
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}

	// same start/size, different kind is not a duplicate.
	p2 := p
	p2.Kind = FSExt4
	if !l.Insert(p2) {
		t.Fatal("same start/size but different kind should be accepted")
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
}

func TestPartitionListSortedAscending(t *testing.T) {
	l := NewPartitionList()
	l.Insert(Partition{Start: 300, Size: 10})
	l.Insert(Partition{Start: 100, Size: 10})
	l.Insert(Partition{Start: 200, Size: 10})

	sorted := l.Sorted()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Start > sorted[i].Start {
			t.Fatalf("sorted list not ascending: %+v", sorted)
		}
	}
}

func TestPartitionListDiscoveryOrderPreserved(t *testing.T) {
	l := NewPartitionList()
	l.Insert(Partition{Start: 300, Size: 10})
	l.Insert(Partition{Start: 100, Size: 10})
	l.Insert(Partition{Start: 200, Size: 10})

	disc := l.Slice()
	want := []uint64{300, 100, 200}
	for i, p := range disc {
		if p.Start != want[i] {
			t.Fatalf("discovery order[%d] = %d, want %d", i, p.Start, want[i])
		}
	}
}

func TestPartitionListInsertSortedPreservesOrder(t *testing.T) {
	l := NewPartitionList()
	l.InsertSorted(Partition{Start: 100})
	l.InsertSorted(Partition{Start: 300})
	l.InsertSorted(Partition{Start: 200})

	sorted := l.Slice()
	want := []uint64{100, 200, 300}
	for i, p := range sorted {
		if p.Start != want[i] {
			t.Fatalf("InsertSorted order[%d] = %d, want %d", i, p.Start, want[i])
		}
	}
}
