package clob

// Trade is emitted exactly once per matched quantity slice, in matching
// order. AggressorSide is the side of the order that initiated the
// match; the resting order was necessarily on the opposite side.
type Trade struct {
	Instrument    string
	AggressorID   uint64
	RestingID     uint64
	AggressorSide Side
	Price         Price
	Quantity      Quantity
	TimestampNs   int64
	LatencyNs     int64
}

// Level2Update reports a change to one price level's aggregate during a
// matching walk. Volume == 0 signals the level emptied entirely.
type Level2Update struct {
	Side       Side
	Price      Price
	Volume     Quantity
	OrderCount uint64
}

// Level2Snapshot is the top-N-levels-per-side view of the book, available
// on demand outside the streamed Trade/Level2Update events.
type Level2Snapshot struct {
	Instrument string
	Bids       []LevelSnapshot
	Asks       []LevelSnapshot
}

// Publisher receives events emitted by the matcher between commands. It
// is the only channel through which anything outside the engine's owning
// goroutine observes book state — no implementation may reach back into
// the Book, Pool, or id map.
//
// A nil Publisher is legal: the engine simply drops events, so the core
// has no required collaborators.
type Publisher interface {
	PublishTrade(Trade)
	PublishLevel2(Level2Update)
}

// NopPublisher discards every event. It's the default when an engine is
// constructed without an explicit publisher, and useful in tests that
// only care about book state.
type NopPublisher struct{}

func (NopPublisher) PublishTrade(Trade)         {}
func (NopPublisher) PublishLevel2(Level2Update) {}
