// Package settlement orchestrates the atomic multi-party transfer sequence
// for one or more resolved orders: validate, inject fees, pull inputs,
// invoke the fill strategy, push outputs, emit fill records. Any failure
// reverts the entire batch.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/fees"
	"github.com/openfill/fillgate/internal/nonce"
	"github.com/openfill/fillgate/internal/permit2"
	"github.com/openfill/fillgate/internal/resolver"
	"github.com/openfill/fillgate/internal/types"
	"github.com/openfill/fillgate/internal/validation"
)

var (
	ErrReentrantCall  = errors.New("settlement engine re-entered while a batch is in flight")
	ErrDeadlinePassed = errors.New("order deadline has passed")
	ErrWrongReactor   = errors.New("order targets a different reactor")
	ErrEmptyBatch     = errors.New("batch contains no orders")
)

// Filler is the caller-supplied fill strategy. It is invoked exactly once
// per batch with every resolved order; by the time it returns, the caller's
// balance must cover every required output token.
type Filler interface {
	ReactorCallback(ctx context.Context, orders []types.ResolvedOrder, fillData []byte) error
}

// Engine settles signed orders against an injected transfer boundary and
// nonce store. One Engine instance is one reactor identity.
type Engine struct {
	reactor    common.Address
	registry   *resolver.Registry
	nonces     nonce.Store
	transferer permit2.Transferer
	injector   *fees.Injector
	validator  validation.Validator

	inFlight atomic.Bool
}

func NewEngine(
	reactor common.Address,
	registry *resolver.Registry,
	nonces nonce.Store,
	transferer permit2.Transferer,
	injector *fees.Injector,
	validator validation.Validator,
) *Engine {
	return &Engine{
		reactor:    reactor,
		registry:   registry,
		nonces:     nonces,
		transferer: transferer,
		injector:   injector,
		validator:  validator,
	}
}

func (e *Engine) Reactor() common.Address { return e.reactor }

// Execute settles a single order. A nil filler is a direct fill: the caller
// funds outputs from their own balance and no callback runs.
func (e *Engine) Execute(ctx context.Context, rctx types.ResolutionContext, order types.SignedOrder, filler Filler, fillData []byte) (*types.FillRecord, error) {
	records, err := e.ExecuteBatch(ctx, rctx, []types.SignedOrder{order}, filler, fillData)
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

// ExecuteBatch settles a batch all-or-nothing. Orders resolve independently
// first; any resolution failure aborts before state changes. After that
// every effect, consumed nonces and token movements alike, is journaled and
// rolled back together on failure.
func (e *Engine) ExecuteBatch(ctx context.Context, rctx types.ResolutionContext, orders []types.SignedOrder, filler Filler, fillData []byte) ([]types.FillRecord, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer e.inFlight.Store(false)

	if len(orders) == 0 {
		return nil, ErrEmptyBatch
	}

	// step 1: resolve every order before touching any state
	resolved := make([]types.ResolvedOrder, 0, len(orders))
	for i, signed := range orders {
		ro, err := e.registry.Resolve(rctx, signed)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		resolved = append(resolved, *ro)
	}

	snap := e.transferer.Snapshot()
	type usedNonce struct {
		swapper common.Address
		nonce   *big.Int
	}
	var used []usedNonce
	rollback := func() {
		e.transferer.Rollback(snap)
		for _, u := range used {
			_ = e.nonces.Release(ctx, u.swapper, u.nonce)
		}
	}

	// step 2: per order: fee injection, re-validation, nonce, input pull
	for i := range resolved {
		ro := &resolved[i]

		if err := e.injector.Inject(ctx, ro); err != nil {
			rollback()
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		if ro.Info.Reactor != e.reactor {
			rollback()
			return nil, fmt.Errorf("order %d: %w", i, ErrWrongReactor)
		}
		if rctx.Timestamp > ro.Info.Deadline {
			rollback()
			return nil, fmt.Errorf("order %d: %w", i, ErrDeadlinePassed)
		}
		if err := validation.Check(ctx, e.validator, ro.Info, rctx.Caller); err != nil {
			rollback()
			return nil, fmt.Errorf("order %d: %w", i, err)
		}

		n := ro.Info.Nonce.Big()
		if err := e.nonces.Use(ctx, ro.Info.Swapper, n); err != nil {
			rollback()
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		used = append(used, usedNonce{swapper: ro.Info.Swapper, nonce: n})

		// the pull stays scoped to the originally signed order hash even
		// when a cosigner overrode amounts
		err := e.transferer.PullWithSignature(ctx, permit2.PullRequest{
			Owner:     ro.Info.Swapper,
			Spender:   rctx.Caller,
			Token:     ro.Input.Token,
			Amount:    ro.Input.Amount.Big(),
			Nonce:     n,
			Deadline:  ro.Info.Deadline,
			Witness:   ro.Hash,
			Signature: ro.Signature,
		})
		if err != nil {
			rollback()
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
	}

	// step 3: fill strategy, once per batch; nil filler means direct fill
	if filler != nil {
		if err := filler.ReactorCallback(ctx, resolved, fillData); err != nil {
			rollback()
			return nil, fmt.Errorf("fill callback: %w", err)
		}
	}

	// step 4: push every output, including injected fees, from the caller
	for i := range resolved {
		for _, out := range resolved[i].Outputs {
			err := e.transferer.PushTransferFrom(ctx, rctx.Caller, out.Recipient, out.Token, out.Amount.Big())
			if err != nil {
				rollback()
				return nil, fmt.Errorf("order %d: %w", i, err)
			}
		}
	}

	// step 5: fill records
	records := make([]types.FillRecord, len(resolved))
	for i := range resolved {
		records[i] = types.FillRecord{
			OrderHash:   resolved[i].Hash,
			Filler:      rctx.Caller,
			Swapper:     resolved[i].Info.Swapper,
			Nonce:       resolved[i].Info.Nonce,
			BlockNumber: rctx.BlockNumber,
			Timestamp:   rctx.Timestamp,
		}
	}
	return records, nil
}
