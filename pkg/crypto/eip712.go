package crypto

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// EIP712Domain represents the domain separator for EIP-712 typed data.
// This prevents replay attacks across different chains/deployments.
type EIP712Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// NewOrderEIP712 is the typed data structure a trading account signs to
// submit a new order to the gate: it mirrors the core's Command exactly,
// so the signature covers precisely what the matcher will act on.
type NewOrderEIP712 struct {
	OrderID  uint64
	Side     uint8 // 0 = Buy, 1 = Sell
	Type     uint8 // 0 = LIMIT, 1 = IOC, 2 = FOK
	Price    *big.Int
	Quantity *big.Int
	Nonce    *big.Int
	Deadline *big.Int // Unix seconds, 0 = no expiry
	Owner    common.Address
}

// CancelEIP712 is the typed data structure signed to request cancellation
// of a resting order.
type CancelEIP712 struct {
	OrderID uint64
	Nonce   *big.Int
	Owner   common.Address
}

// EIP712Signer hashes and verifies NewOrderEIP712/CancelEIP712 messages
// under a fixed domain.
type EIP712Signer struct {
	domain EIP712Domain
}

// NewEIP712Signer creates a signer bound to domain.
func NewEIP712Signer(domain EIP712Domain) *EIP712Signer {
	return &EIP712Signer{domain: domain}
}

// DefaultDomain returns the default signing domain for the matching
// engine's order gate. VerifyingContract is the zero address since
// commands are verified off-chain by the risk gate, not on-chain.
func DefaultDomain() EIP712Domain {
	return EIP712Domain{
		Name:              "ClobCore",
		Version:           "1",
		ChainID:           big.NewInt(1337),
		VerifyingContract: common.Address{},
	}
}

func (e *EIP712Signer) domainTypes() []apitypes.Type {
	return []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}
}

func (e *EIP712Signer) domainMap() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              e.domain.Name,
		Version:           e.domain.Version,
		ChainId:           (*math.HexOrDecimal256)(e.domain.ChainID),
		VerifyingContract: e.domain.VerifyingContract.Hex(),
	}
}

func (e *EIP712Signer) digest(primaryType string, types apitypes.Types, message apitypes.TypedDataMessage) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       types,
		PrimaryType: primaryType,
		Domain:      e.domainMap(),
		Message:     message,
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("hash domain: %w", err)
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("hash message: %w", err)
	}

	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(messageHash)))
	return crypto.Keccak256Hash(rawData).Bytes(), nil
}

// HashOrder returns the digest an owner must sign to submit order.
func (e *EIP712Signer) HashOrder(order *NewOrderEIP712) ([]byte, error) {
	types := apitypes.Types{
		"EIP712Domain": e.domainTypes(),
		"NewOrder": []apitypes.Type{
			{Name: "orderId", Type: "uint256"},
			{Name: "side", Type: "uint8"},
			{Name: "type", Type: "uint8"},
			{Name: "price", Type: "uint256"},
			{Name: "quantity", Type: "uint256"},
			{Name: "nonce", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
			{Name: "owner", Type: "address"},
		},
	}
	message := apitypes.TypedDataMessage{
		"orderId":  fmt.Sprintf("%d", order.OrderID),
		"side":     fmt.Sprintf("%d", order.Side),
		"type":     fmt.Sprintf("%d", order.Type),
		"price":    order.Price.String(),
		"quantity": order.Quantity.String(),
		"nonce":    order.Nonce.String(),
		"deadline": order.Deadline.String(),
		"owner":    order.Owner.Hex(),
	}
	return e.digest("NewOrder", types, message)
}

// SignOrder signs order with signer's key.
func (e *EIP712Signer) SignOrder(signer *Signer, order *NewOrderEIP712) ([]byte, error) {
	hash, err := e.HashOrder(order)
	if err != nil {
		return nil, fmt.Errorf("hash order: %w", err)
	}
	return signer.Sign(hash)
}

// VerifyOrderSignature reports whether signature was produced by order.Owner.
func (e *EIP712Signer) VerifyOrderSignature(order *NewOrderEIP712, signature []byte) (bool, error) {
	hash, err := e.HashOrder(order)
	if err != nil {
		return false, fmt.Errorf("hash order: %w", err)
	}
	recovered, err := RecoverAddress(hash, signature)
	if err != nil {
		return false, fmt.Errorf("recover address: %w", err)
	}
	return recovered == order.Owner, nil
}

// RecoverOrderSigner recovers the address that signed order.
func (e *EIP712Signer) RecoverOrderSigner(order *NewOrderEIP712, signature []byte) (common.Address, error) {
	hash, err := e.HashOrder(order)
	if err != nil {
		return common.Address{}, fmt.Errorf("hash order: %w", err)
	}
	return RecoverAddress(hash, signature)
}

// OrderToJSON renders order as an eth_signTypedData_v4 payload, for
// wallets and browser-side signing tools.
func (e *EIP712Signer) OrderToJSON(order *NewOrderEIP712) (string, error) {
	typedData := map[string]interface{}{
		"types": map[string]interface{}{
			"EIP712Domain": []map[string]string{
				{"name": "name", "type": "string"},
				{"name": "version", "type": "string"},
				{"name": "chainId", "type": "uint256"},
				{"name": "verifyingContract", "type": "address"},
			},
			"NewOrder": []map[string]string{
				{"name": "orderId", "type": "uint256"},
				{"name": "side", "type": "uint8"},
				{"name": "type", "type": "uint8"},
				{"name": "price", "type": "uint256"},
				{"name": "quantity", "type": "uint256"},
				{"name": "nonce", "type": "uint256"},
				{"name": "deadline", "type": "uint256"},
				{"name": "owner", "type": "address"},
			},
		},
		"primaryType": "NewOrder",
		"domain": map[string]interface{}{
			"name":              e.domain.Name,
			"version":           e.domain.Version,
			"chainId":           e.domain.ChainID.String(),
			"verifyingContract": e.domain.VerifyingContract.Hex(),
		},
		"message": map[string]interface{}{
			"orderId":  order.OrderID,
			"side":     order.Side,
			"type":     order.Type,
			"price":    order.Price.String(),
			"quantity": order.Quantity.String(),
			"nonce":    order.Nonce.String(),
			"deadline": order.Deadline.String(),
			"owner":    order.Owner.Hex(),
		},
	}
	b, err := json.MarshalIndent(typedData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}
	return string(b), nil
}

// HashCancel returns the digest an owner must sign to cancel orderID.
func (e *EIP712Signer) HashCancel(cancel *CancelEIP712) ([]byte, error) {
	types := apitypes.Types{
		"EIP712Domain": e.domainTypes(),
		"CancelOrder": []apitypes.Type{
			{Name: "orderId", Type: "uint256"},
			{Name: "nonce", Type: "uint256"},
			{Name: "owner", Type: "address"},
		},
	}
	message := apitypes.TypedDataMessage{
		"orderId": fmt.Sprintf("%d", cancel.OrderID),
		"nonce":   cancel.Nonce.String(),
		"owner":   cancel.Owner.Hex(),
	}
	return e.digest("CancelOrder", types, message)
}

// VerifyCancelSignature reports whether signature was produced by cancel.Owner.
func (e *EIP712Signer) VerifyCancelSignature(cancel *CancelEIP712, signature []byte) (bool, error) {
	hash, err := e.HashCancel(cancel)
	if err != nil {
		return false, fmt.Errorf("hash cancel: %w", err)
	}
	recovered, err := RecoverAddress(hash, signature)
	if err != nil {
		return false, fmt.Errorf("recover address: %w", err)
	}
	return recovered == cancel.Owner, nil
}

// SideToUint8 converts a Side name to its EIP-712 wire value.
func SideToUint8(side string) uint8 {
	switch side {
	case "buy", "BUY":
		return 0
	case "sell", "SELL":
		return 1
	default:
		return 0
	}
}

// Uint8ToSide converts an EIP-712 wire value back to a Side name.
func Uint8ToSide(side uint8) string {
	if side == 1 {
		return "sell"
	}
	return "buy"
}

// OrderTypeToUint8 converts an OrderType name to its EIP-712 wire value.
func OrderTypeToUint8(orderType string) uint8 {
	switch orderType {
	case "LIMIT", "limit":
		return 0
	case "IOC", "ioc":
		return 1
	case "FOK", "fok":
		return 2
	default:
		return 0
	}
}

// Uint8ToOrderType converts an EIP-712 wire value back to an OrderType name.
func Uint8ToOrderType(orderType uint8) string {
	switch orderType {
	case 0:
		return "LIMIT"
	case 1:
		return "IOC"
	case 2:
		return "FOK"
	default:
		return "unknown"
	}
}
