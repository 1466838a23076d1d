package clob

// OrderTypeStats is the per-OrderType breakdown of order outcomes,
// keyed by OrderType rather than a fixed-size array index.
type OrderTypeStats struct {
	Submitted    uint64
	Filled       uint64
	PartialFills uint64
	Cancelled    uint64
	Rejected     uint64
}

// Stats is the counter snapshot that is the only user-visible
// error/behavior surface beyond the event streams: no error ever crosses
// the matcher's boundary except through these counters.
type Stats struct {
	OrdersProcessed       uint64
	OrdersRejected        uint64
	TradesExecuted        uint64
	TotalBuyQuantityMatched  uint64
	TotalSellQuantityMatched uint64
	ByType                map[OrderType]OrderTypeStats
}

func newStats() Stats {
	return Stats{ByType: map[OrderType]OrderTypeStats{
		Limit: {}, IOC: {}, FOK: {},
	}}
}
