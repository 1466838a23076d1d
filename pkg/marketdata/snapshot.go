package marketdata

import "github.com/clobcore/matching-engine/pkg/clob"

// LevelDTO is the wire form of a clob.LevelSnapshot row.
type LevelDTO struct {
	Price      clob.Price    `json:"price"`
	Volume     clob.Quantity `json:"volume"`
	OrderCount uint64        `json:"orderCount"`
}

// Level2SnapshotDTO is the wire form of an on-demand order book snapshot.
type Level2SnapshotDTO struct {
	Instrument string     `json:"instrument"`
	Bids       []LevelDTO `json:"bids"`
	Asks       []LevelDTO `json:"asks"`
}

// TradeDTO is the wire form of a clob.Trade.
type TradeDTO struct {
	Instrument    string        `json:"instrument"`
	AggressorID   uint64        `json:"aggressorId"`
	RestingID     uint64        `json:"restingId"`
	AggressorSide string        `json:"aggressorSide"`
	Price         clob.Price    `json:"price"`
	Quantity      clob.Quantity `json:"quantity"`
	TimestampNs   int64         `json:"timestampNs"`
	LatencyNs     int64         `json:"latencyNs"`
}

// Level2UpdateDTO is the wire form of a clob.Level2Update.
type Level2UpdateDTO struct {
	Side       string        `json:"side"`
	Price      clob.Price    `json:"price"`
	Volume     clob.Quantity `json:"volume"`
	OrderCount uint64        `json:"orderCount"`
}

func toLevelDTOs(levels []clob.LevelSnapshot) []LevelDTO {
	out := make([]LevelDTO, len(levels))
	for i, l := range levels {
		out[i] = LevelDTO{Price: l.Price, Volume: l.Volume, OrderCount: l.OrderCount}
	}
	return out
}
