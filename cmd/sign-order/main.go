// Command sign-order is a developer utility that generates (or loads) a
// signing key, builds an EIP-712 NewOrder or CancelOrder message, signs
// it, and prints the JSON envelope a client would submit alongside a
// command to the risk gate.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/clobcore/matching-engine/pkg/crypto"
)

func main() {
	var (
		privKeyHex = flag.String("privkey", "", "hex private key to sign with (generates a fresh one if empty)")
		cancel     = flag.Bool("cancel", false, "sign a CancelOrder message instead of a NewOrder")
		orderID    = flag.Uint64("order-id", 1, "order id")
		side       = flag.String("side", "buy", "buy|sell")
		orderType  = flag.String("type", "LIMIT", "LIMIT|IOC|FOK")
		price      = flag.Int64("price", 100, "limit price")
		quantity   = flag.Uint64("quantity", 10, "quantity")
		nonce      = flag.Uint64("nonce", 1, "per-account nonce, must not have been used before")
		deadline   = flag.Int64("deadline", 0, "unix seconds after which the command expires; 0 means no expiry")
	)
	flag.Parse()

	var signer *crypto.Signer
	var err error
	if *privKeyHex == "" {
		fmt.Fprintln(os.Stderr, "no -privkey given, generating a fresh keypair")
		signer, err = crypto.GenerateKey()
	} else {
		signer, err = crypto.FromPrivateKeyHex(*privKeyHex)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "key error: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "owner:       %s\n", signer.Address().Hex())
	if *privKeyHex == "" {
		fmt.Fprintf(os.Stderr, "private key: %s (KEEP SECRET)\n", signer.PrivateKeyHex())
	}

	eip712Signer := crypto.NewEIP712Signer(crypto.DefaultDomain())

	if *cancel {
		msg := &crypto.CancelEIP712{
			OrderID: *orderID,
			Nonce:   new(big.Int).SetUint64(*nonce),
			Owner:   signer.Address(),
		}
		hash, err := eip712Signer.HashCancel(msg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
			os.Exit(1)
		}
		signature, err := signer.Sign(hash)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sign error: %v\n", err)
			os.Exit(1)
		}
		printEnvelope(map[string]interface{}{
			"kind":      "cancel",
			"orderId":   msg.OrderID,
			"nonce":     *nonce,
			"owner":     msg.Owner.Hex(),
			"signature": fmt.Sprintf("0x%x", signature),
		})
		return
	}

	msg := &crypto.NewOrderEIP712{
		OrderID:  *orderID,
		Side:     crypto.SideToUint8(*side),
		Type:     crypto.OrderTypeToUint8(*orderType),
		Price:    big.NewInt(*price),
		Quantity: new(big.Int).SetUint64(*quantity),
		Nonce:    new(big.Int).SetUint64(*nonce),
		Deadline: big.NewInt(*deadline),
		Owner:    signer.Address(),
	}
	signature, err := eip712Signer.SignOrder(signer, msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign error: %v\n", err)
		os.Exit(1)
	}

	valid, err := eip712Signer.VerifyOrderSignature(msg, signature)
	if err != nil || !valid {
		fmt.Fprintf(os.Stderr, "self-check failed: valid=%v err=%v\n", valid, err)
		os.Exit(1)
	}

	printEnvelope(map[string]interface{}{
		"kind":      "new",
		"orderId":   msg.OrderID,
		"side":      crypto.Uint8ToSide(msg.Side),
		"type":      crypto.Uint8ToOrderType(msg.Type),
		"price":     msg.Price.String(),
		"quantity":  msg.Quantity.String(),
		"nonce":     *nonce,
		"deadline":  *deadline,
		"owner":     msg.Owner.Hex(),
		"signature": fmt.Sprintf("0x%x", signature),
	})
}

func printEnvelope(v map[string]interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
