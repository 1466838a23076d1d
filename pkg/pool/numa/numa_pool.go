// Package numa provides a best-effort, NUMA-shaped drop-in replacement
// for a single clob.Pool. Go's runtime gives no portable way to pin a
// goroutine to a NUMA node or query the calling thread's node (that
// needs cgo and a real libnuma binding, which is not part of the
// ecosystem this module draws from), so instead of true NUMA affinity
// this shards the pool across runtime.GOMAXPROCS(0) partitions and lets
// the caller pass its own affinity hint — a P id, a CPU id, anything
// stable per worker — to pick a shard. It preserves the source's
// two behaviors that matter functionally: allocate-preferred-then-spill,
// and free-to-originating-shard.
package numa

import (
	"runtime"

	"github.com/clobcore/matching-engine/pkg/clob"
)

// Handle identifies an order slot within the sharded pool: which shard
// it lives in, plus the shard-local handle clob.Pool would hand back.
type Handle struct {
	Shard int
	Local uint32
}

// Pool partitions total capacity evenly across shards, each an
// independent clob.Pool. There is no synchronization at all: Allocate
// spills into other shards and the counters read every shard, so a Pool
// is not safe for concurrent use.
type Pool struct {
	shards []*clob.Pool
}

// New creates a sharded pool of shardCount partitions (defaulting to
// runtime.GOMAXPROCS(0) if shardCount <= 0), splitting totalCapacity as
// evenly as possible.
func New(totalCapacity uint64, shardCount int) *Pool {
	if shardCount <= 0 {
		shardCount = runtime.GOMAXPROCS(0)
	}
	if shardCount < 1 {
		shardCount = 1
	}
	perShard := totalCapacity / uint64(shardCount)
	remainder := totalCapacity % uint64(shardCount)

	p := &Pool{shards: make([]*clob.Pool, shardCount)}
	for i := 0; i < shardCount; i++ {
		cap := perShard
		if uint64(i) < remainder {
			cap++
		}
		p.shards[i] = clob.NewPool(cap)
	}
	return p
}

// ShardCount reports how many partitions the pool was built with.
func (p *Pool) ShardCount() int { return len(p.shards) }

// Allocate tries preferredShard first, then spills over to the next
// shard with room, mirroring the source's "preferred node, else scan the
// rest" fallback.
func (p *Pool) Allocate(preferredShard int) (Handle, bool) {
	n := len(p.shards)
	if preferredShard < 0 || preferredShard >= n {
		preferredShard = 0
	}
	if local, ok := p.shards[preferredShard].Allocate(); ok {
		return Handle{Shard: preferredShard, Local: local}, true
	}
	for i := 1; i < n; i++ {
		shard := (preferredShard + i) % n
		if local, ok := p.shards[shard].Allocate(); ok {
			return Handle{Shard: shard, Local: local}, true
		}
	}
	return Handle{}, false
}

// Release returns h to its originating shard — always known here since
// Handle carries it, unlike the source's address-range scan.
func (p *Pool) Release(h Handle) {
	p.shards[h.Shard].Release(h.Local)
}

// AllocatedCount sums allocated slots across all shards.
func (p *Pool) AllocatedCount() uint64 {
	var total uint64
	for _, s := range p.shards {
		total += s.AllocatedCount()
	}
	return total
}

// AvailableCount sums available slots across all shards.
func (p *Pool) AvailableCount() uint64 {
	var total uint64
	for _, s := range p.shards {
		total += s.AvailableCount()
	}
	return total
}

// Capacity sums the fixed size of every shard.
func (p *Pool) Capacity() uint64 {
	var total uint64
	for _, s := range p.shards {
		total += s.Capacity()
	}
	return total
}
