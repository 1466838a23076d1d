package feed

import (
	"testing"

	"github.com/clobcore/matching-engine/pkg/clob"
	"github.com/clobcore/matching-engine/pkg/config"
)

func TestGeneratorProducesInRangePrices(t *testing.T) {
	cfg := config.Default()
	cfg.PriceMin, cfg.PriceMax = 100, 200
	g := NewGenerator(cfg, 42, nil)

	for i := 0; i < 1000; i++ {
		cmd := g.Next()
		if cmd.Kind != clob.CommandNew {
			continue
		}
		if cmd.Price < cfg.PriceMin || cmd.Price > cfg.PriceMax {
			t.Fatalf("price %d outside configured range [%d,%d]", cmd.Price, cfg.PriceMin, cfg.PriceMax)
		}
		if cmd.Quantity == 0 {
			t.Fatal("generator must never emit a zero quantity")
		}
	}
}

func TestGeneratorOnlyCancelsItsOwnLiveOrders(t *testing.T) {
	cfg := config.Default()
	cfg.FeedMix = config.FeedMix{Limit: 1.0, Cancel: 0.5}
	g := NewGenerator(cfg, 7, nil)

	seen := make(map[uint64]bool)
	for i := 0; i < 2000; i++ {
		cmd := g.Next()
		if cmd.Kind == clob.CommandNew {
			seen[cmd.OrderID] = true
		} else {
			if !seen[cmd.OrderID] {
				t.Fatalf("cancel referenced order id %d that was never emitted as NEW", cmd.OrderID)
			}
		}
	}
}

func TestGeneratorRunReportsEnqueuedAndDropped(t *testing.T) {
	cfg := config.Default()
	q, err := clob.NewQueue(4)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(cfg, 1, nil)

	enqueued, dropped := g.Run(q, 10, 1)
	if enqueued+dropped != 10 {
		t.Fatalf("enqueued+dropped = %d, want 10", enqueued+dropped)
	}
	if enqueued > q.Cap() {
		t.Fatalf("enqueued %d exceeds queue capacity %d before any draining", enqueued, q.Cap())
	}
}
