package clob

import "testing"

func TestPoolAllocateReleaseAccounting(t *testing.T) {
	p := NewPool(4)
	if p.Capacity() != 4 {
		t.Fatalf("Capacity() = %d, want 4", p.Capacity())
	}
	var handles []uint32
	for i := 0; i < 4; i++ {
		h, ok := p.Allocate()
		if !ok {
			t.Fatalf("allocate %d: pool unexpectedly exhausted", i)
		}
		handles = append(handles, h)
	}
	if _, ok := p.Allocate(); ok {
		t.Fatal("expected pool to be exhausted after 4 allocations of capacity 4")
	}
	if got := p.AllocatedCount() + p.AvailableCount(); got != p.Capacity() {
		t.Fatalf("allocated+available = %d, want capacity %d", got, p.Capacity())
	}

	p.Release(handles[0])
	if p.AvailableCount() != 1 {
		t.Fatalf("AvailableCount() = %d, want 1 after one release", p.AvailableCount())
	}
	h, ok := p.Allocate()
	if !ok {
		t.Fatal("expected a released slot to be reallocatable")
	}
	if h != handles[0] {
		t.Fatalf("Allocate() returned handle %d, want reused handle %d (LIFO free list)", h, handles[0])
	}
}

func TestPoolAllocatedSlotIsZeroedOnReuse(t *testing.T) {
	p := NewPool(1)
	h, _ := p.Allocate()
	o := p.Get(h)
	o.id = 999
	o.remaining = 42
	p.Release(h)

	h2, ok := p.Allocate()
	if !ok || h2 != h {
		t.Fatalf("expected the single slot to be reused, got handle=%d ok=%v", h2, ok)
	}
	fresh := p.Get(h2)
	if fresh.id != 0 || fresh.remaining != 0 {
		t.Fatalf("reused slot carried stale data: id=%d remaining=%d", fresh.id, fresh.remaining)
	}
}
