// Package ledger is an in-memory token bank implementing the permit2
// transfer boundary for off-chain simulation and solver tooling. Balances
// are plain numbers, pulls are signature-checked, and snapshots give the
// engine cheap batch rollback.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/permit2"
	"github.com/openfill/fillgate/internal/signer"
)

// RecoverFunc matches the injected signature-recovery primitive.
type RecoverFunc func(digest common.Hash, sig []byte) (common.Address, error)

type balances map[common.Address]map[common.Address]*big.Int // owner -> token -> amount

// Bank holds balances and enforces signature-scoped pulls. The domain
// separator binds pull signatures to one chain and reactor identity.
type Bank struct {
	mu      sync.Mutex
	domain  common.Hash
	recover RecoverFunc
	bals    balances
}

func NewBank(chainID *big.Int, reactor common.Address) *Bank {
	return &Bank{
		domain:  signer.DomainSeparator(chainID, reactor),
		recover: signer.RecoverSigner,
		bals:    make(balances),
	}
}

// Mint credits owner with amount of token. Funding entry point for tests and
// for configuration-seeded simulation balances.
func (b *Bank) Mint(owner, token common.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(owner, token, amount)
}

// Seed is one startup balance credit, typically declared in configuration
// when the bank stands in for the transfer boundary without an RPC backend.
type Seed struct {
	Owner  common.Address
	Token  common.Address
	Amount *big.Int
}

// ParseSeed builds a Seed from string form: hex addresses and a base-10
// amount, as they appear in configuration.
func ParseSeed(owner, token, amount string) (Seed, error) {
	if !common.IsHexAddress(owner) {
		return Seed{}, fmt.Errorf("seed owner %q is not a hex address", owner)
	}
	if !common.IsHexAddress(token) {
		return Seed{}, fmt.Errorf("seed token %q is not a hex address", token)
	}
	amt, ok := new(big.Int).SetString(amount, 10)
	if !ok || amt.Sign() < 0 {
		return Seed{}, fmt.Errorf("seed amount %q is not a non-negative integer", amount)
	}
	return Seed{
		Owner:  common.HexToAddress(owner),
		Token:  common.HexToAddress(token),
		Amount: amt,
	}, nil
}

// ApplySeeds credits every seed balance in order.
func (b *Bank) ApplySeeds(seeds []Seed) {
	for _, s := range seeds {
		b.Mint(s.Owner, s.Token, s.Amount)
	}
}

func (b *Bank) BalanceOf(owner, token common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tokens, ok := b.bals[owner]; ok {
		if bal, ok := tokens[token]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return new(big.Int)
}

// PullWithSignature verifies that the request's signature recovers to the
// owner over the witness digest, then moves Amount from Owner to Spender.
// The witness is the order's struct hash; the digest re-binds it to this
// bank's chain and reactor.
func (b *Bank) PullWithSignature(ctx context.Context, req permit2.PullRequest) error {
	digest := signer.TypedDigest(b.domain, req.Witness)
	recovered, err := b.recover(digest, req.Signature)
	if err != nil {
		return permit2.ErrInvalidSignature
	}
	if recovered != req.Owner {
		return permit2.ErrInvalidSignature
	}
	return b.transfer(req.Owner, req.Spender, req.Token, req.Amount)
}

func (b *Bank) PushTransferFrom(ctx context.Context, owner, recipient, token common.Address, amount *big.Int) error {
	return b.transfer(owner, recipient, token, amount)
}

// Snapshot deep-copies the balance table. Batches are small and settlement
// is synchronous, so a full copy stays cheap relative to the transfers.
func (b *Bank) Snapshot() permit2.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := make(balances, len(b.bals))
	for owner, tokens := range b.bals {
		cp := make(map[common.Address]*big.Int, len(tokens))
		for token, bal := range tokens {
			cp[token] = new(big.Int).Set(bal)
		}
		snap[owner] = cp
	}
	return snap
}

func (b *Bank) Rollback(snap permit2.Snapshot) {
	restored, ok := snap.(balances)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bals = restored
}

func (b *Bank) transfer(from, to, token common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	have := new(big.Int)
	if tokens, ok := b.bals[from]; ok {
		if bal, ok := tokens[token]; ok {
			have = bal
		}
	}
	if have.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s of %s, needs %s",
			permit2.ErrInsufficientBalance, from.Hex(), have, token.Hex(), amount)
	}
	have.Sub(have, amount)
	b.credit(to, token, amount)
	return nil
}

func (b *Bank) credit(owner, token common.Address, amount *big.Int) {
	tokens, ok := b.bals[owner]
	if !ok {
		tokens = make(map[common.Address]*big.Int)
		b.bals[owner] = tokens
	}
	bal, ok := tokens[token]
	if !ok {
		bal = new(big.Int)
		tokens[token] = bal
	}
	bal.Add(bal, amount)
}
