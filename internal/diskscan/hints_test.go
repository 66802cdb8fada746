package diskscan

import "testing"

func TestHintSetDedup(t *testing.T) {
	h := NewHintSet()
	h.Insert(100)
	h.Insert(100)
	h.Insert(50)
	h.Insert(200)

	drained, hit := h.DrainLEQ(100)
	if hit != true {
		t.Fatalf("expected cursor 100 to be hit")
	}
	if len(drained) != 2 {
		t.Fatalf("expected 2 offsets <= 100 (50, 100 deduped), got %v", drained)
	}
	if drained[0] != 50 || drained[1] != 100 {
		t.Fatalf("expected ascending order [50 100], got %v", drained)
	}
	if h.Len() != 1 {
		t.Fatalf("expected 1 remaining hint, got %d", h.Len())
	}
}

func TestHintSetOverflowDropped(t *testing.T) {
	h := NewHintSet()
	for i := uint64(0); i < hintSetCapacity+10; i++ {
		h.Insert(i)
	}
	if h.Len() != hintSetCapacity {
		t.Fatalf("expected capacity-bounded len %d, got %d", hintSetCapacity, h.Len())
	}
}

func TestHintSetPeekGT(t *testing.T) {
	h := NewHintSet()
	h.Insert(10)
	h.Insert(20)

	next, ok := h.PeekGT(10)
	if !ok || next != 20 {
		t.Fatalf("PeekGT(10) = %d, %v; want 20, true", next, ok)
	}
	if _, ok := h.PeekGT(20); ok {
		t.Fatalf("PeekGT(20) should find nothing past the last hint")
	}
}
