package clob

import "testing"

func newTestBook(t *testing.T) (*Book, *Pool) {
	t.Helper()
	pool := NewPool(16)
	book := NewBook(pool, 0, 100)
	return book, pool
}

func insertOrder(t *testing.T, book *Book, pool *Pool, id uint64, side Side, price Price, qty Quantity) uint32 {
	t.Helper()
	h, ok := pool.Allocate()
	if !ok {
		t.Fatalf("pool exhausted inserting order %d", id)
	}
	*pool.Get(h) = order{id: id, side: side, price: price, remaining: qty, original: qty, status: Pending, next: noHandle, prev: noHandle}
	book.Insert(h)
	return h
}

func TestBookEmptyHasNoSentinelCrossing(t *testing.T) {
	book, _ := newTestBook(t)
	if book.BestBid() != emptyPrice || book.BestAsk() != emptyPrice {
		t.Fatal("a fresh book must report both sides empty")
	}
}

func TestBookInsertTracksBestOnBothSides(t *testing.T) {
	book, pool := newTestBook(t)
	insertOrder(t, book, pool, 1, Buy, 50, 10)
	if book.BestBid() != 50 {
		t.Fatalf("BestBid() = %d, want 50", book.BestBid())
	}
	insertOrder(t, book, pool, 2, Buy, 60, 10)
	if book.BestBid() != 60 {
		t.Fatalf("BestBid() = %d, want 60 after a better bid arrives", book.BestBid())
	}
	insertOrder(t, book, pool, 3, Sell, 70, 10)
	if book.BestAsk() != 70 {
		t.Fatalf("BestAsk() = %d, want 70", book.BestAsk())
	}
	insertOrder(t, book, pool, 4, Sell, 65, 10)
	if book.BestAsk() != 65 {
		t.Fatalf("BestAsk() = %d, want 65 after a better ask arrives", book.BestAsk())
	}
	if book.BestBid() >= book.BestAsk() {
		t.Fatalf("book crossed: bid %d >= ask %d", book.BestBid(), book.BestAsk())
	}
}

func TestBookRemoveRescansOnTopLevelClear(t *testing.T) {
	book, pool := newTestBook(t)
	h1 := insertOrder(t, book, pool, 1, Buy, 50, 10)
	insertOrder(t, book, pool, 2, Buy, 40, 10)
	if book.BestBid() != 50 {
		t.Fatalf("BestBid() = %d, want 50", book.BestBid())
	}
	book.Remove(h1)
	if book.BestBid() != 40 {
		t.Fatalf("BestBid() = %d, want 40 after the top level clears", book.BestBid())
	}
}

func TestBookRemoveNonBestLeavesBestUnchanged(t *testing.T) {
	book, pool := newTestBook(t)
	insertOrder(t, book, pool, 1, Buy, 50, 10)
	h2 := insertOrder(t, book, pool, 2, Buy, 40, 10)
	book.Remove(h2)
	if book.BestBid() != 50 {
		t.Fatalf("BestBid() = %d, want unchanged 50", book.BestBid())
	}
}

func TestBookFIFOWithinLevel(t *testing.T) {
	book, pool := newTestBook(t)
	h1 := insertOrder(t, book, pool, 1, Buy, 50, 10)
	h2 := insertOrder(t, book, pool, 2, Buy, 50, 10)
	level := book.LevelAt(50, Buy)
	if level.head != h1 || level.tail != h2 {
		t.Fatalf("expected FIFO order head=%d tail=%d, got head=%d tail=%d", h1, h2, level.head, level.tail)
	}
	if level.volume != 20 || level.count != 2 {
		t.Fatalf("level aggregate = (%d,%d), want (20,2)", level.volume, level.count)
	}
}

func TestBookSnapshotOrdering(t *testing.T) {
	book, pool := newTestBook(t)
	insertOrder(t, book, pool, 1, Buy, 50, 10)
	insertOrder(t, book, pool, 2, Buy, 60, 5)
	insertOrder(t, book, pool, 3, Sell, 70, 7)
	insertOrder(t, book, pool, 4, Sell, 80, 3)

	bids, asks := book.Snapshot(10)
	if len(bids) != 2 || bids[0].Price != 60 || bids[1].Price != 50 {
		t.Fatalf("bids not sorted descending from best: %+v", bids)
	}
	if len(asks) != 2 || asks[0].Price != 70 || asks[1].Price != 80 {
		t.Fatalf("asks not sorted ascending from best: %+v", asks)
	}
}
