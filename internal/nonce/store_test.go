package nonce

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var swapper = common.HexToAddress("0x0000000000000000000000000000000000002222")

func TestMemoryStore_SingleUse(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	n := big.NewInt(42)

	used, err := s.Used(ctx, swapper, n)
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, s.Use(ctx, swapper, n))
	assert.ErrorIs(t, s.Use(ctx, swapper, n), ErrNonceUsed)

	used, err = s.Used(ctx, swapper, n)
	require.NoError(t, err)
	assert.True(t, used)
}

func TestMemoryStore_ReleaseRestoresUse(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	n := big.NewInt(7)

	require.NoError(t, s.Use(ctx, swapper, n))
	require.NoError(t, s.Release(ctx, swapper, n))
	assert.NoError(t, s.Use(ctx, swapper, n))
}

func TestMemoryStore_KeyedPerSwapper(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	other := common.HexToAddress("0x0000000000000000000000000000000000003333")

	require.NoError(t, s.Use(ctx, swapper, big.NewInt(1)))
	// same nonce value, different swapper
	assert.NoError(t, s.Use(ctx, other, big.NewInt(1)))
}

func TestMemoryStore_ExactlyOneWinnerUnderRace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	n := big.NewInt(99)

	var wg sync.WaitGroup
	wins := make(chan struct{}, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Use(ctx, swapper, n) == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}
