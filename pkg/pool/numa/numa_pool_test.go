package numa

import "testing"

func TestPoolSplitsCapacityAcrossShards(t *testing.T) {
	p := New(10, 3)
	if p.ShardCount() != 3 {
		t.Fatalf("ShardCount() = %d, want 3", p.ShardCount())
	}
	if p.Capacity() != 10 {
		t.Fatalf("Capacity() = %d, want 10", p.Capacity())
	}
}

func TestPoolAllocateSpillsToOtherShards(t *testing.T) {
	p := New(2, 2) // one slot per shard
	h1, ok := p.Allocate(0)
	if !ok {
		t.Fatal("expected first allocation to succeed")
	}
	if h1.Shard != 0 {
		t.Fatalf("expected preferred shard 0, got %d", h1.Shard)
	}
	h2, ok := p.Allocate(0)
	if !ok {
		t.Fatal("expected spillover allocation to succeed once shard 0 is exhausted")
	}
	if h2.Shard != 1 {
		t.Fatalf("expected spillover to land on shard 1, got %d", h2.Shard)
	}
	if _, ok := p.Allocate(0); ok {
		t.Fatal("expected pool to be fully exhausted after both slots are taken")
	}
}

func TestPoolReleaseReturnsToOriginatingShard(t *testing.T) {
	p := New(2, 2)
	h, _ := p.Allocate(1)
	if p.AllocatedCount() != 1 {
		t.Fatalf("AllocatedCount() = %d, want 1", p.AllocatedCount())
	}
	p.Release(h)
	if p.AllocatedCount() != 0 {
		t.Fatalf("AllocatedCount() = %d, want 0 after release", p.AllocatedCount())
	}
	if p.AvailableCount() != 2 {
		t.Fatalf("AvailableCount() = %d, want 2 after release", p.AvailableCount())
	}
}
