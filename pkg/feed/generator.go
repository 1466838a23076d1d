// Package feed implements the synthetic order-command producer used by
// the benchmark harness: an out-of-core collaborator that talks to the
// matcher only through the interface it presents (a stream of Commands
// enqueued onto the SPSC queue).
package feed

import (
	"math/rand"
	"runtime"

	"github.com/clobcore/matching-engine/pkg/clob"
	"github.com/clobcore/matching-engine/pkg/config"
	"github.com/clobcore/matching-engine/pkg/util"
)

// Generator produces a bounded stream of synthetic Commands honoring a
// configured order-type/cancel mix, and enqueues them onto a Queue,
// retrying a bounded number of times whenever the ring is momentarily
// full. A failed enqueue after retries is dropped, not fatal.
type Generator struct {
	mix       config.FeedMix
	priceMin  clob.Price
	priceMax  clob.Price
	rng       *rand.Rand
	clock     util.Clock
	liveOrder []uint64 // ids currently believed to be resting, for cancel targeting
	nextID    uint64
}

// NewGenerator builds a Generator seeded from seed, drawing prices from
// [priceMin, priceMax] and quantities uniformly from [1, 1000].
func NewGenerator(cfg config.Config, seed int64, clock util.Clock) *Generator {
	if clock == nil {
		clock = util.RealClock{}
	}
	return &Generator{
		mix:      cfg.FeedMix,
		priceMin: cfg.PriceMin,
		priceMax: cfg.PriceMax,
		rng:      rand.New(rand.NewSource(seed)),
		clock:    clock,
	}
}

// Next returns the next synthetic command. Cancels are only ever
// generated for order ids this Generator has itself already emitted as
// NEW, so a producer using nothing but this stream never targets an
// order id it doesn't itself believe is still live.
func (g *Generator) Next() clob.Command {
	r := g.rng.Float64()

	if r < g.mix.Cancel && len(g.liveOrder) > 0 {
		idx := g.rng.Intn(len(g.liveOrder))
		id := g.liveOrder[idx]
		g.liveOrder[idx] = g.liveOrder[len(g.liveOrder)-1]
		g.liveOrder = g.liveOrder[:len(g.liveOrder)-1]
		return clob.Command{
			Kind:                clob.CommandCancel,
			OrderID:             id,
			ProducerTimestampNs: g.clock.Now().UnixNano(),
		}
	}

	id := g.nextID
	g.nextID++

	side := clob.Buy
	if g.rng.Float64() < 0.5 {
		side = clob.Sell
	}

	typ := g.pickType(r)
	price := g.priceMin + clob.Price(g.rng.Int63n(int64(g.priceMax-g.priceMin+1)))
	qty := clob.Quantity(g.rng.Int63n(1000) + 1)

	if typ == clob.Limit {
		g.liveOrder = append(g.liveOrder, id)
	}

	return clob.Command{
		Kind:                clob.CommandNew,
		OrderID:             id,
		Side:                side,
		Type:                typ,
		Price:               price,
		Quantity:            qty,
		ProducerTimestampNs: g.clock.Now().UnixNano(),
	}
}

func (g *Generator) pickType(r float64) clob.OrderType {
	total := g.mix.Limit + g.mix.IOC + g.mix.FOK
	if total <= 0 {
		return clob.Limit
	}
	roll := g.rng.Float64() * total
	switch {
	case roll < g.mix.Limit:
		return clob.Limit
	case roll < g.mix.Limit+g.mix.IOC:
		return clob.IOC
	default:
		return clob.FOK
	}
}

// Run drives count commands from the Generator onto queue, spin-retrying
// an enqueue up to maxRetries times before giving up on that command and
// counting it dropped. It runs synchronously in the caller's goroutine;
// callers that want the SPSC queue's two sides on separate OS threads
// run it in its own goroutine against a matcher draining the same Queue.
func (g *Generator) Run(queue *clob.Queue, count uint64, maxRetries int) (enqueued, dropped uint64) {
	for i := uint64(0); i < count; i++ {
		cmd := g.Next()
		ok := false
		for attempt := 0; attempt < maxRetries; attempt++ {
			if queue.Enqueue(cmd) {
				ok = true
				break
			}
			runtime.Gosched()
		}
		if ok {
			enqueued++
		} else {
			dropped++
		}
	}
	return enqueued, dropped
}
