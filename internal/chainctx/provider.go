// Package chainctx supplies the execution-time context orders are resolved
// against. The engine itself never reads a clock or a chain; everything
// timing-related arrives through a Provider.
package chainctx

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/openfill/fillgate/internal/types"
)

// Provider yields the base resolution context. Caller and GasPrice are
// request-scoped and filled in by the service layer afterward.
type Provider interface {
	Current(ctx context.Context) (types.ResolutionContext, error)
}

// StaticProvider serves a fixed chain id with wall-clock timestamps, for
// simulation setups without an RPC endpoint. Block numbers advance at a
// nominal one-per-second from a configured origin.
type StaticProvider struct {
	ChainID     *big.Int
	BaseFee     *big.Int
	OriginBlock uint64
	OriginTime  uint64
}

func (p *StaticProvider) Current(ctx context.Context) (types.ResolutionContext, error) {
	now := uint64(time.Now().Unix())
	block := p.OriginBlock
	if now > p.OriginTime {
		block += now - p.OriginTime
	}
	baseFee := p.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	return types.ResolutionContext{
		Timestamp:   now,
		BlockNumber: block,
		ChainID:     p.ChainID,
		BaseFee:     baseFee,
	}, nil
}

// RPCProvider reads the latest header over JSON-RPC, with a short cache so
// batch settlement does not hammer the endpoint.
type RPCProvider struct {
	client  *ethclient.Client
	chainID *big.Int
	ttl     time.Duration

	mu      sync.Mutex
	cached  types.ResolutionContext
	expires time.Time
}

func NewRPCProvider(rpcURL string, ttl time.Duration) (*RPCProvider, error) {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to eth client: %w", err)
	}
	return &RPCProvider{client: client, ttl: ttl}, nil
}

func (p *RPCProvider) Current(ctx context.Context) (types.ResolutionContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Now().Before(p.expires) {
		return p.cached, nil
	}

	if p.chainID == nil {
		id, err := p.client.ChainID(ctx)
		if err != nil {
			return types.ResolutionContext{}, fmt.Errorf("failed to fetch chain id: %w", err)
		}
		p.chainID = id
	}
	header, err := p.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return types.ResolutionContext{}, fmt.Errorf("failed to fetch latest header: %w", err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	p.cached = types.ResolutionContext{
		Timestamp:   header.Time,
		BlockNumber: header.Number.Uint64(),
		ChainID:     p.chainID,
		BaseFee:     baseFee,
	}
	p.expires = time.Now().Add(p.ttl)
	return p.cached, nil
}
