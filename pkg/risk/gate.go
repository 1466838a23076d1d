// Package risk implements the optional multi-account validation
// predicate the core accepts as a pre-enqueue filter: a Command is
// checked for a valid EIP-712 signature and per-account limits before
// ever reaching the SPSC queue. Rejection here means the command is
// never seen by the matcher at all.
package risk

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/clobcore/matching-engine/pkg/clob"
	"github.com/clobcore/matching-engine/pkg/crypto"
)

var (
	ErrBadSignature   = errors.New("risk: signature does not match claimed owner")
	ErrExpired        = errors.New("risk: command deadline has passed")
	ErrNonceReplay    = errors.New("risk: nonce already used by this account")
	ErrOpenOrderLimit = errors.New("risk: account has reached its open-order limit")
	ErrRateLimited    = errors.New("risk: account exceeded its command rate limit")
)

// SignedCommand pairs a Command with the signature and claimed owner a
// producer received from an account before enqueueing it.
type SignedCommand struct {
	Command   clob.Command
	Owner     common.Address
	Nonce     uint64
	Deadline  int64 // unix seconds, 0 = no expiry
	Signature []byte
}

// AccountLimits bounds a single account's standing exposure to the
// engine: at most MaxOpenOrders resting simultaneously, at most
// MaxCommandsPerWindow commands admitted per Window.
type AccountLimits struct {
	MaxOpenOrders        int
	MaxCommandsPerWindow int
	Window               time.Duration
}

// DefaultAccountLimits is a conservative per-account ceiling suitable for
// a benchmark or demo deployment.
func DefaultAccountLimits() AccountLimits {
	return AccountLimits{
		MaxOpenOrders:        10_000,
		MaxCommandsPerWindow: 100_000,
		Window:               time.Second,
	}
}

type accountState struct {
	openOrders     int
	usedNonces     map[uint64]struct{}
	windowStart    time.Time
	windowCommands int
}

// Gate is the multi-account risk gate: it owns no reference to the
// Engine or Book — nothing outside the matcher goroutine may touch them —
// and instead tracks its own view of each account's open-order count
// from the accept/settle notifications it is fed by the caller.
type Gate struct {
	signer *crypto.EIP712Signer
	limits AccountLimits
	clock  func() time.Time

	accounts map[common.Address]*accountState
}

// NewGate constructs a Gate that verifies signatures under domain and
// enforces limits per account.
func NewGate(domain crypto.EIP712Domain, limits AccountLimits) *Gate {
	return &Gate{
		signer:   crypto.NewEIP712Signer(domain),
		limits:   limits,
		clock:    time.Now,
		accounts: make(map[common.Address]*accountState),
	}
}

func (g *Gate) stateFor(owner common.Address) *accountState {
	st, ok := g.accounts[owner]
	if !ok {
		st = &accountState{usedNonces: make(map[uint64]struct{})}
		g.accounts[owner] = st
	}
	return st
}

// Validate is the (Command) -> accept|reject predicate applied as an
// optional pre-filter before enqueue. It never mutates the core's
// Book/Pool/id map; it only tracks the signing account's own nonce,
// rate, and open-order bookkeeping.
func (g *Gate) Validate(sc SignedCommand) error {
	now := g.clock()

	if sc.Deadline != 0 && now.Unix() > sc.Deadline {
		return ErrExpired
	}

	if err := g.verifySignature(sc); err != nil {
		return err
	}

	st := g.stateFor(sc.Owner)

	if _, seen := st.usedNonces[sc.Nonce]; seen {
		return ErrNonceReplay
	}

	if st.windowStart.IsZero() || now.Sub(st.windowStart) > g.limits.Window {
		st.windowStart = now
		st.windowCommands = 0
	}
	if st.windowCommands >= g.limits.MaxCommandsPerWindow {
		return ErrRateLimited
	}

	if sc.Command.Kind == clob.CommandNew && st.openOrders >= g.limits.MaxOpenOrders {
		return ErrOpenOrderLimit
	}

	st.usedNonces[sc.Nonce] = struct{}{}
	st.windowCommands++
	if sc.Command.Kind == clob.CommandNew {
		st.openOrders++
	}
	return nil
}

// NotifySettled tells the gate that one order belonging to owner is no
// longer resting (filled, cancelled, or rejected), so the account's
// open-order count can be decremented. Callers drive this off the
// engine's Trade/Level2 events or off cancel acknowledgements — the
// gate itself never reads the Book.
func (g *Gate) NotifySettled(owner common.Address) {
	st, ok := g.accounts[owner]
	if !ok || st.openOrders == 0 {
		return
	}
	st.openOrders--
}

func (g *Gate) verifySignature(sc SignedCommand) error {
	if sc.Command.Kind == clob.CommandCancel {
		cancel := &crypto.CancelEIP712{
			OrderID: sc.Command.OrderID,
			Nonce:   new(big.Int).SetUint64(sc.Nonce),
			Owner:   sc.Owner,
		}
		ok, err := g.signer.VerifyCancelSignature(cancel, sc.Signature)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadSignature, err)
		}
		if !ok {
			return ErrBadSignature
		}
		return nil
	}

	order := &crypto.NewOrderEIP712{
		OrderID:  sc.Command.OrderID,
		Side:     crypto.SideToUint8(sc.Command.Side.String()),
		Type:     crypto.OrderTypeToUint8(sc.Command.Type.String()),
		Price:    big.NewInt(sc.Command.Price),
		Quantity: new(big.Int).SetUint64(sc.Command.Quantity),
		Nonce:    new(big.Int).SetUint64(sc.Nonce),
		Deadline: big.NewInt(sc.Deadline),
		Owner:    sc.Owner,
	}
	ok, err := g.signer.VerifyOrderSignature(order, sc.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}
