package clob

// priceLevel is the aggregate resting liquidity at one price on one side:
// an intrusive FIFO of orders (oldest at head) plus the running volume
// sum. head == noHandle iff tail == noHandle iff volume == 0.
type priceLevel struct {
	head   uint32
	tail   uint32
	volume Quantity
	count  uint64
}

func (l *priceLevel) empty() bool { return l.head == noHandle }

// Book is a per-side, direct-indexed price grid: level lookup is O(1)
// array access rather than an ordered map's O(log n), at the cost of
// O(PriceLevels) memory. That trade only pays off for bounded-tick
// instruments where the price range is small enough to hold as an array.
type Book struct {
	pool *Pool

	priceMin Price
	priceMax Price

	bidLevels []priceLevel
	askLevels []priceLevel

	bestBid Price
	bestAsk Price
}

// NewBook constructs an empty book over [priceMin, priceMax] backed by
// pool for order-record storage. Both sides start empty.
func NewBook(pool *Pool, priceMin, priceMax Price) *Book {
	levels := int(priceMax-priceMin) + 1
	b := &Book{
		pool:      pool,
		priceMin:  priceMin,
		priceMax:  priceMax,
		bidLevels: make([]priceLevel, levels),
		askLevels: make([]priceLevel, levels),
		bestBid:   emptyPrice,
		bestAsk:   emptyPrice,
	}
	for i := range b.bidLevels {
		b.bidLevels[i].head, b.bidLevels[i].tail = noHandle, noHandle
	}
	for i := range b.askLevels {
		b.askLevels[i].head, b.askLevels[i].tail = noHandle, noHandle
	}
	return b
}

// InRange reports whether price is a valid tick for this book.
func (b *Book) InRange(price Price) bool {
	return price >= b.priceMin && price <= b.priceMax
}

func (b *Book) index(price Price) int { return int(price - b.priceMin) }

// LevelAt returns the price level for price on side. It is only valid to
// call with an in-range price; callers must check InRange first.
func (b *Book) LevelAt(price Price, side Side) *priceLevel {
	if side == Buy {
		return &b.bidLevels[b.index(price)]
	}
	return &b.askLevels[b.index(price)]
}

// BestBid is the highest bid price with resting volume, or the empty
// sentinel if the bid side has none.
func (b *Book) BestBid() Price { return b.bestBid }

// BestAsk is the lowest ask price with resting volume, or the empty
// sentinel if the ask side has none.
func (b *Book) BestAsk() Price { return b.bestAsk }

// levelAppend links handle onto the tail of level, updating aggregates.
func (b *Book) levelAppend(level *priceLevel, handle uint32) {
	o := b.pool.Get(handle)
	o.prev = level.tail
	o.next = noHandle
	if level.tail != noHandle {
		b.pool.Get(level.tail).next = handle
	} else {
		level.head = handle
	}
	level.tail = handle
	level.volume += o.remaining
	level.count++
}

// levelUnlink removes handle from level, updating aggregates. It does not
// touch the pool slot's own status/side/price fields.
func (b *Book) levelUnlink(level *priceLevel, handle uint32) {
	o := b.pool.Get(handle)
	level.volume -= o.remaining
	level.count--
	if o.prev != noHandle {
		b.pool.Get(o.prev).next = o.next
	} else {
		level.head = o.next
	}
	if o.next != noHandle {
		b.pool.Get(o.next).prev = o.prev
	} else {
		level.tail = o.prev
	}
	o.next, o.prev = noHandle, noHandle
}

// Insert appends handle to the tail of its side's price level and updates
// best-bid/best-ask if the new price strictly improves the current best,
// or the side was previously empty. Both sides use an explicit
// emptyPrice check rather than relying on the sign of a comparison to
// hold by coincidence when a side is empty.
func (b *Book) Insert(handle uint32) {
	o := b.pool.Get(handle)
	if o.side == Buy {
		level := b.LevelAt(o.price, Buy)
		b.levelAppend(level, handle)
		if b.bestBid == emptyPrice || o.price > b.bestBid {
			b.bestBid = o.price
		}
	} else {
		level := b.LevelAt(o.price, Sell)
		b.levelAppend(level, handle)
		if b.bestAsk == emptyPrice || o.price < b.bestAsk {
			b.bestAsk = o.price
		}
	}
}

// Remove unlinks handle from the book (used by cancellation and by the
// matching walk when a resting order is fully filled). If the level it
// occupied just emptied and was the current best, the best is rescanned
// outward.
func (b *Book) Remove(handle uint32) {
	o := b.pool.Get(handle)
	if o.side == Buy {
		level := b.LevelAt(o.price, Buy)
		price := o.price
		b.levelUnlink(level, handle)
		if level.empty() && price == b.bestBid {
			b.rescanBestBid()
		}
	} else {
		level := b.LevelAt(o.price, Sell)
		price := o.price
		b.levelUnlink(level, handle)
		if level.empty() && price == b.bestAsk {
			b.rescanBestAsk()
		}
	}
}

// rescanBestBid scans downward from priceMax looking for the new highest
// non-empty bid level. Each scan is bounded by the price range; it only
// runs when the top level clears.
func (b *Book) rescanBestBid() {
	b.bestBid = emptyPrice
	for price := b.priceMax; price >= b.priceMin; price-- {
		if !b.bidLevels[b.index(price)].empty() {
			b.bestBid = price
			return
		}
	}
}

// rescanBestAsk scans upward from priceMin looking for the new lowest
// non-empty ask level.
func (b *Book) rescanBestAsk() {
	b.bestAsk = emptyPrice
	for price := b.priceMin; price <= b.priceMax; price++ {
		if !b.askLevels[b.index(price)].empty() {
			b.bestAsk = price
			return
		}
	}
}

// LevelSnapshot is one row of a Level-2 view: aggregate resting volume and
// order count at a single price.
type LevelSnapshot struct {
	Price       Price
	Volume      Quantity
	OrderCount  uint64
}

// Snapshot returns up to depth levels per side: bids sorted descending
// from bestBid, asks ascending from bestAsk. This is the on-demand
// Level-2 view served outside the Trade/Level2Update event stream.
func (b *Book) Snapshot(depth int) (bids, asks []LevelSnapshot) {
	if depth <= 0 {
		return nil, nil
	}
	if b.bestBid != emptyPrice {
		for price := b.bestBid; price >= b.priceMin && len(bids) < depth; price-- {
			l := &b.bidLevels[b.index(price)]
			if !l.empty() {
				bids = append(bids, LevelSnapshot{Price: price, Volume: l.volume, OrderCount: l.count})
			}
		}
	}
	if b.bestAsk != emptyPrice {
		for price := b.bestAsk; price <= b.priceMax && len(asks) < depth; price++ {
			l := &b.askLevels[b.index(price)]
			if !l.empty() {
				asks = append(asks, LevelSnapshot{Price: price, Volume: l.volume, OrderCount: l.count})
			}
		}
	}
	return bids, asks
}
