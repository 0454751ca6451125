// Package permit2 defines the token-transfer-authorization boundary the
// settlement engine drives. The engine never touches balances directly: it
// pulls inputs with the swapper's signature and pushes outputs from the
// caller's balance, always through this interface.
package permit2

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrInvalidSignature    = errors.New("transfer signature does not recover to owner")
)

// PullRequest authorizes one signature-scoped transfer from Owner to Spender.
// Witness is the order hash the signature is scoped to: even when a cosigner
// overrode amounts, the pull stays bound to the originally signed order.
type PullRequest struct {
	Owner     common.Address
	Spender   common.Address
	Token     common.Address
	Amount    *big.Int
	Nonce     *big.Int
	Deadline  uint64
	Witness   common.Hash
	Signature []byte
}

// Snapshot is an opaque rollback token from a Transferer.
type Snapshot interface{}

// Transferer moves tokens on the engine's behalf. Snapshot/Rollback give the
// engine its all-or-nothing batch semantics: a batch that fails after some
// pulls already happened rolls every movement back.
type Transferer interface {
	PullWithSignature(ctx context.Context, req PullRequest) error
	PushTransferFrom(ctx context.Context, owner, recipient, token common.Address, amount *big.Int) error
	BalanceOf(owner, token common.Address) *big.Int
	Snapshot() Snapshot
	Rollback(snap Snapshot)
}
