// Package nonce is the replay-protection state: a key-value store keyed by
// (swapper, nonce) where each key may be consumed exactly once. It is the
// engine's only concurrency-control primitive; fillers racing on one order
// serialize here.
package nonce

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var ErrNonceUsed = errors.New("nonce already consumed")

// Store is injected into the settlement engine. Use is test-and-set: the
// first caller wins, every later caller gets ErrNonceUsed. Release undoes a
// Use when the batch it belonged to rolls back.
type Store interface {
	Use(ctx context.Context, swapper common.Address, nonce *big.Int) error
	Release(ctx context.Context, swapper common.Address, nonce *big.Int) error
	Used(ctx context.Context, swapper common.Address, nonce *big.Int) (bool, error)
}

func key(swapper common.Address, nonce *big.Int) string {
	return swapper.Hex() + ":" + nonce.String()
}

// MemoryStore keeps consumed nonces in process memory. Suitable for tests
// and single-instance simulation; multi-instance deployments want the Redis
// or Postgres store.
type MemoryStore struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{used: make(map[string]struct{})}
}

func (s *MemoryStore) Use(_ context.Context, swapper common.Address, nonce *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(swapper, nonce)
	if _, ok := s.used[k]; ok {
		return ErrNonceUsed
	}
	s.used[k] = struct{}{}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, swapper common.Address, nonce *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.used, key(swapper, nonce))
	return nil
}

func (s *MemoryStore) Used(_ context.Context, swapper common.Address, nonce *big.Int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.used[key(swapper, nonce)]
	return ok, nil
}
