package clob

// noHandle marks the end of the free list and an order's "not linked"
// state on either side of the intrusive price-level list.
const noHandle uint32 = ^uint32(0)

// order is the heap-free record backing a live or resting order. Its
// lifetime is a pool slot: allocate, optionally link into a priceLevel,
// release. next/prev double as the free-list link (next only) while the
// slot is free and as the price-level's intrusive list links while
// resting. next/prev are handles (slot indices) rather than pointers, a
// Go-native stand-in for an intrusive pointer-linked free list.
type order struct {
	id        uint64
	side      Side
	kind      OrderType
	price     Price
	remaining Quantity
	original  Quantity
	status    OrderStatus
	// enqueueSeq is a monotonic sequence number assigned when the order is
	// admitted. Because the matcher is single-threaded, this is a cheaper
	// and more robust FIFO tie-breaker than a wall-clock timestamp would
	// be for price-time priority within a level.
	enqueueSeq uint64
	next       uint32
	prev       uint32
}

// Pool is a fixed-capacity allocator for order records: pre-allocated at
// construction, no heap activity afterward. Free slots are threaded
// through order.next into a LIFO free list.
type Pool struct {
	slots     []order
	freeHead  uint32
	allocated uint64
}

// NewPool pre-allocates capacity order slots and links them into the free
// list.
func NewPool(capacity uint64) *Pool {
	p := &Pool{slots: make([]order, capacity)}
	for i := range p.slots {
		if uint64(i) == capacity-1 {
			p.slots[i].next = noHandle
		} else {
			p.slots[i].next = uint32(i + 1)
		}
	}
	if capacity == 0 {
		p.freeHead = noHandle
	}
	return p
}

// Allocate pops a slot off the free list. ok is false iff the pool is
// exhausted.
func (p *Pool) Allocate() (handle uint32, ok bool) {
	if p.freeHead == noHandle {
		return 0, false
	}
	handle = p.freeHead
	slot := &p.slots[handle]
	p.freeHead = slot.next
	slot.next = noHandle
	slot.prev = noHandle
	p.allocated++
	return handle, true
}

// Release returns handle to the free list. The caller must have already
// unlinked it from any price level and cleared it from the id map.
func (p *Pool) Release(handle uint32) {
	slot := &p.slots[handle]
	*slot = order{next: p.freeHead, prev: noHandle}
	p.freeHead = handle
	p.allocated--
}

// Get returns a pointer to the order at handle for in-place mutation
// during matching.
func (p *Pool) Get(handle uint32) *order {
	return &p.slots[handle]
}

// AllocatedCount is the number of slots currently checked out (either
// transient during a NEW or resting in the book).
func (p *Pool) AllocatedCount() uint64 { return p.allocated }

// AvailableCount is the number of free slots remaining.
func (p *Pool) AvailableCount() uint64 { return uint64(len(p.slots)) - p.allocated }

// Capacity is the pool's fixed size, set once at construction.
func (p *Pool) Capacity() uint64 { return uint64(len(p.slots)) }
