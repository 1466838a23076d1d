package clob

import (
	"context"
	"time"

	"github.com/clobcore/matching-engine/pkg/util"
)

// Logger is the minimal side-channel logging surface the engine needs.
// pkg/telemetry's *zap.SugaredLogger satisfies it; nil is legal and
// simply drops warnings.
type Logger interface {
	Warnw(msg string, keysAndValues ...interface{})
}

// EngineConfig bundles the construction-time parameters an engine needs:
// PRICE_MIN/MAX, MAX_ORDERS, and (indirectly, via the caller supplying an
// already-sized Queue) RING_BUFFER_SIZE.
type EngineConfig struct {
	Instrument string
	PriceMin   Price
	PriceMax   Price
	MaxOrders  uint64
	Publisher  Publisher
	Logger     Logger
	Clock      util.Clock
}

// Engine is the single-threaded matcher: it owns the Book, the Pool, and
// the order_id -> handle map, and is the only thing that ever mutates
// any of them. Nothing about Engine is safe for concurrent use from more
// than one goroutine at a time.
type Engine struct {
	instrument string

	pool  *Pool
	book  *Book
	idMap []uint32

	publisher Publisher
	logger    Logger
	clock     util.Clock

	seq uint64

	stats Stats
}

// NewEngine constructs a matcher over a fresh Pool and Book sized per
// cfg. The returned Engine owns no Queue; Run takes one explicitly so the
// same engine can, in tests, be driven directly via HandleCommand instead.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Publisher == nil {
		cfg.Publisher = NopPublisher{}
	}
	if cfg.Clock == nil {
		cfg.Clock = util.RealClock{}
	}
	pool := NewPool(cfg.MaxOrders)
	book := NewBook(pool, cfg.PriceMin, cfg.PriceMax)
	idMap := make([]uint32, cfg.MaxOrders)
	for i := range idMap {
		idMap[i] = noHandle
	}
	return &Engine{
		instrument: cfg.Instrument,
		pool:       pool,
		book:       book,
		idMap:      idMap,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
		clock:      cfg.Clock,
		stats:      newStats(),
	}
}

// Stats returns a snapshot of the engine's counters, the only
// user-visible error surface the engine exposes.
func (e *Engine) Stats() Stats {
	snapshot := e.stats
	byType := make(map[OrderType]OrderTypeStats, len(e.stats.ByType))
	for k, v := range e.stats.ByType {
		byType[k] = v
	}
	snapshot.ByType = byType
	return snapshot
}

// Book exposes the underlying book for read-only snapshotting between
// events. Observers must never read it during mutation; this accessor is
// only safe to call from the same goroutine that drives Run, between
// processed commands.
func (e *Engine) Book() *Book { return e.book }

// Pool exposes the underlying pool for accounting checks: allocated plus
// available always equals MaxOrders.
func (e *Engine) Pool() *Pool { return e.pool }

// SetPublisher swaps the engine's event sink. It exists so a caller can
// build a Publisher that itself observes the engine (a market-data
// server snapshotting the Book) without a construction-order cycle; it
// must only be called before Run starts consuming commands.
func (e *Engine) SetPublisher(p Publisher) {
	if p == nil {
		p = NopPublisher{}
	}
	e.publisher = p
}

// Run drains queue until ctx is cancelled, processing one command to
// completion before dequeuing the next. On cancellation it drains
// whatever is already queued and then returns — it does not drop
// in-flight commands.
func (e *Engine) Run(ctx context.Context, queue *Queue) {
	for {
		select {
		case <-ctx.Done():
			for {
				cmd, ok := queue.Dequeue()
				if !ok {
					return
				}
				e.HandleCommand(cmd)
			}
		default:
		}
		if cmd, ok := queue.Dequeue(); ok {
			e.HandleCommand(cmd)
		}
	}
}

// HandleCommand processes a single command to completion. It is the
// engine's only mutation entry point; Run is a thin loop around it, and
// tests call it directly to avoid depending on queue timing.
func (e *Engine) HandleCommand(cmd Command) {
	t0 := e.clock.Now()
	if cmd.Kind == CommandNew {
		e.handleNew(cmd, t0)
	} else {
		e.handleCancel(cmd.OrderID)
	}
	e.stats.OrdersProcessed++
}

func (e *Engine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

// handleNew admits a NEW command. Validation (price range, non-zero
// quantity, in-range order id) happens before any slot is allocated, so
// an invalid command never leaks a pool slot.
func (e *Engine) handleNew(cmd Command, t0 time.Time) {
	if cmd.Quantity == 0 || !e.book.InRange(cmd.Price) || cmd.OrderID >= uint64(len(e.idMap)) {
		e.stats.OrdersRejected++
		return
	}

	handle, ok := e.pool.Allocate()
	if !ok {
		e.stats.OrdersRejected++
		if e.logger != nil {
			e.logger.Warnw("order pool exhausted, rejecting order", "order_id", cmd.OrderID)
		}
		return
	}

	o := e.pool.Get(handle)
	*o = order{
		id:         cmd.OrderID,
		side:       cmd.Side,
		kind:       cmd.Type,
		price:      cmd.Price,
		remaining:  cmd.Quantity,
		original:   cmd.Quantity,
		status:     Pending,
		enqueueSeq: e.nextSeq(),
		next:       noHandle,
		prev:       noHandle,
	}
	e.idMap[cmd.OrderID] = handle
	typeStats := e.stats.ByType[cmd.Type]
	typeStats.Submitted++
	e.stats.ByType[cmd.Type] = typeStats

	switch cmd.Type {
	case Limit:
		traded := e.match(handle, t0)
		o = e.pool.Get(handle)
		if o.remaining == 0 {
			e.finishFilled(handle, cmd.OrderID)
			return
		}
		if traded {
			o.status = Partial
			ts := e.stats.ByType[cmd.Type]
			ts.PartialFills++
			e.stats.ByType[cmd.Type] = ts
		} else {
			o.status = Pending
		}
		e.book.Insert(handle)

	case IOC:
		e.match(handle, t0)
		o = e.pool.Get(handle)
		if o.remaining == 0 {
			e.finishFilled(handle, cmd.OrderID)
			return
		}
		o.status = Cancelled
		ts := e.stats.ByType[cmd.Type]
		ts.Cancelled++
		e.stats.ByType[cmd.Type] = ts
		e.idMap[cmd.OrderID] = noHandle
		e.pool.Release(handle)

	case FOK:
		fillable := e.fillableQuantity(o.side, o.price, o.remaining)
		if fillable < o.remaining {
			id := o.id // capture before release: o is invalid once the slot is freed
			o.status = Rejected
			ts := e.stats.ByType[cmd.Type]
			ts.Rejected++
			e.stats.ByType[cmd.Type] = ts
			e.idMap[id] = noHandle
			e.pool.Release(handle)
			return
		}
		e.match(handle, t0)
		// Post-condition: remaining == 0, guaranteed by fillableQuantity's
		// accounting matching match()'s walk over the same levels.
		e.finishFilled(handle, cmd.OrderID)
	}
}

// finishFilled marks handle FILLED, records the stat, and returns the
// slot to the pool. Used whenever a NEW command's aggressor ends with
// zero remaining quantity, regardless of order type.
func (e *Engine) finishFilled(handle uint32, orderID uint64) {
	o := e.pool.Get(handle)
	o.status = Filled
	ts := e.stats.ByType[o.kind]
	ts.Filled++
	e.stats.ByType[o.kind] = ts
	e.idMap[orderID] = noHandle
	e.pool.Release(handle)
}

// handleCancel admits a CANCEL command. An unknown, already matched, or
// already cancelled id is a silent, idempotent no-op.
func (e *Engine) handleCancel(orderID uint64) {
	if orderID >= uint64(len(e.idMap)) {
		return
	}
	handle := e.idMap[orderID]
	if handle == noHandle {
		return
	}
	o := e.pool.Get(handle)
	kind := o.kind
	e.book.Remove(handle)
	o.status = Cancelled
	ts := e.stats.ByType[kind]
	ts.Cancelled++
	e.stats.ByType[kind] = ts
	e.idMap[orderID] = noHandle
	e.pool.Release(handle)
}

// match dispatches the aggressor at handle against the opposite side and
// reports whether it traded anything at all.
func (e *Engine) match(handle uint32, t0 time.Time) bool {
	o := e.pool.Get(handle)
	before := o.remaining
	if o.side == Buy {
		e.matchAgainstAsks(handle, t0)
	} else {
		e.matchAgainstBids(handle, t0)
	}
	return e.pool.Get(handle).remaining < before
}

// matchAgainstAsks walks ask levels from best_ask up to the aggressor's
// limit price, matching in strict price-time priority. This is the BUY
// side of the matching walk.
func (e *Engine) matchAgainstAsks(buyHandle uint32, t0 time.Time) {
	buy := e.pool.Get(buyHandle)
	for price := e.book.BestAsk(); price != emptyPrice && price <= buy.price && buy.remaining > 0; price++ {
		level := e.book.LevelAt(price, Sell)
		if level.empty() {
			continue
		}
		restingHandle := level.head
		for restingHandle != noHandle && buy.remaining > 0 {
			resting := e.pool.Get(restingHandle)
			next := resting.next
			tradeQty := min64(buy.remaining, resting.remaining)
			e.executeTrade(buyHandle, restingHandle, price, tradeQty, t0, Buy, level)
			buy.remaining -= tradeQty
			resting.remaining -= tradeQty
			if resting.remaining == 0 {
				e.book.Remove(restingHandle)
				e.idMap[resting.id] = noHandle
				e.pool.Release(restingHandle)
			}
			restingHandle = next
		}
	}
}

// matchAgainstBids is the symmetric SELL-aggressor walk: bid levels from
// best_bid down to the aggressor's limit price.
func (e *Engine) matchAgainstBids(sellHandle uint32, t0 time.Time) {
	sell := e.pool.Get(sellHandle)
	for price := e.book.BestBid(); price != emptyPrice && price >= sell.price && sell.remaining > 0; price-- {
		level := e.book.LevelAt(price, Buy)
		if level.empty() {
			continue
		}
		restingHandle := level.head
		for restingHandle != noHandle && sell.remaining > 0 {
			resting := e.pool.Get(restingHandle)
			next := resting.next
			tradeQty := min64(sell.remaining, resting.remaining)
			e.executeTrade(sellHandle, restingHandle, price, tradeQty, t0, Sell, level)
			sell.remaining -= tradeQty
			resting.remaining -= tradeQty
			if resting.remaining == 0 {
				e.book.Remove(restingHandle)
				e.idMap[resting.id] = noHandle
				e.pool.Release(restingHandle)
			}
			restingHandle = next
		}
	}
}

// executeTrade records a latency sample, updates matched-quantity
// totals, and publishes the Trade and the level's post-fill Level2Update.
func (e *Engine) executeTrade(aggressorHandle, restingHandle uint32, price Price, qty Quantity, t0 time.Time, aggressorSide Side, level *priceLevel) {
	aggressor := e.pool.Get(aggressorHandle)
	resting := e.pool.Get(restingHandle)

	level.volume -= qty

	now := e.clock.Now()
	e.stats.TradesExecuted++
	e.stats.TotalBuyQuantityMatched += qty
	e.stats.TotalSellQuantityMatched += qty

	e.publisher.PublishTrade(Trade{
		Instrument:    e.instrument,
		AggressorID:   aggressor.id,
		RestingID:     resting.id,
		AggressorSide: aggressorSide,
		Price:         price,
		Quantity:      qty,
		TimestampNs:   now.UnixNano(),
		LatencyNs:     now.Sub(t0).Nanoseconds(),
	})
	restingSide := aggressorSide.Opposite()
	orderCount := level.count
	if resting.remaining == qty {
		// This fill completes the resting order; the caller unlinks it next.
		orderCount--
	}
	e.publisher.PublishLevel2(Level2Update{
		Side:       restingSide,
		Price:      price,
		Volume:     level.volume,
		OrderCount: orderCount,
	})
}

// fillableQuantity sums resting volume reachable by an order at price on
// side, short-circuiting once it reaches target. It is the FOK
// feasibility check, performed without mutating the book.
func (e *Engine) fillableQuantity(side Side, limitPrice Price, target Quantity) Quantity {
	var sum Quantity
	if side == Buy {
		for price := e.book.BestAsk(); price != emptyPrice && price <= limitPrice; price++ {
			sum += e.book.LevelAt(price, Sell).volume
			if sum >= target {
				return sum
			}
		}
	} else {
		for price := e.book.BestBid(); price != emptyPrice && price >= limitPrice; price-- {
			sum += e.book.LevelAt(price, Buy).volume
			if sum >= target {
				return sum
			}
		}
	}
	return sum
}

func min64(a, b Quantity) Quantity {
	if a < b {
		return a
	}
	return b
}
