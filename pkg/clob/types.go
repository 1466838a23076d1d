// Package clob implements a single-instrument central limit order book and
// matching engine: a lock-free SPSC command queue, a fixed-capacity order
// pool, a direct-indexed price grid, and the single-threaded matcher that
// ties them together.
package clob

import "fmt"

// Side identifies which side of the book an order or trade belongs to.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// CommandKind distinguishes the two command shapes the engine accepts.
type CommandKind uint8

const (
	CommandNew CommandKind = iota
	CommandCancel
)

// OrderType is the order-type state machine driver: LIMIT rests any
// residual, IOC cancels any residual, FOK requires a complete fill or is
// rejected outright.
type OrderType uint8

const (
	Limit OrderType = iota
	IOC
	FOK
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "UNKNOWN"
	}
}

// OrderStatus tracks an order's position in its lifecycle state machine.
// PENDING and PARTIAL are the only resting states.
type OrderStatus uint8

const (
	Pending OrderStatus = iota
	Partial
	Filled
	Cancelled
	Rejected
)

func (s OrderStatus) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Partial:
		return "PARTIAL"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Price is a signed tick count; the book only accepts prices in
// [EngineConfig.PriceMin, EngineConfig.PriceMax].
type Price = int64

// Quantity is an unsigned lot count.
type Quantity = uint64

// emptyPrice is the sentinel used for "this side of the book has no
// resting liquidity". Both bestBid and bestAsk use it, and both are
// checked against it explicitly rather than relying on the sign of a
// comparison holding by coincidence.
const emptyPrice Price = -1

// Command is a value type carried across the SPSC queue from producer to
// matcher. It is copied into the ring buffer's backing array by value —
// no pointer ever crosses the producer/consumer boundary.
type Command struct {
	Kind      CommandKind
	OrderID   uint64
	Side      Side
	Type      OrderType
	Price     Price
	Quantity  Quantity
	ProducerTimestampNs int64
}

func (c Command) String() string {
	if c.Kind == CommandCancel {
		return fmt.Sprintf("CANCEL(%d)", c.OrderID)
	}
	return fmt.Sprintf("NEW(%d,%s,%s,%d,%d)", c.OrderID, c.Side, c.Type, c.Price, c.Quantity)
}
