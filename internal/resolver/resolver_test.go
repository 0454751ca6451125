package resolver

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfill/fillgate/internal/cosigner"
	"github.com/openfill/fillgate/internal/decay"
	"github.com/openfill/fillgate/internal/exclusivity"
	"github.com/openfill/fillgate/internal/priority"
	"github.com/openfill/fillgate/internal/signer"
	"github.com/openfill/fillgate/internal/types"
)

var (
	reactor  = common.HexToAddress("0x0000000000000000000000000000000000001111")
	swapper  = common.HexToAddress("0x0000000000000000000000000000000000002222")
	tokenIn  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tokenOut = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	fillerA  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	fillerB  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func testCtx(now uint64) types.ResolutionContext {
	return types.ResolutionContext{
		Timestamp:   now,
		BlockNumber: 1000,
		ChainID:     big.NewInt(1),
		BaseFee:     big.NewInt(100),
		GasPrice:    big.NewInt(100),
		Caller:      fillerA,
	}
}

func orderInfo(nonce int64, deadline uint64) types.OrderInfo {
	return types.OrderInfo{
		Reactor:  reactor,
		Swapper:  swapper,
		Nonce:    types.NewU256(big.NewInt(nonce)),
		Deadline: deadline,
	}
}

func envelope(t *testing.T, ot types.OrderType, order any) types.SignedOrder {
	t.Helper()
	raw, err := json.Marshal(order)
	require.NoError(t, err)
	return types.SignedOrder{OrderType: ot, Order: raw, Signature: []byte{0x01}}
}

func dutchOrder(inStart, inEnd, outStart, outEnd int64) types.DutchOrder {
	return types.DutchOrder{
		Info:           orderInfo(1, 2000),
		DecayStartTime: 1000,
		DecayEndTime:   1500,
		Input: types.DutchInput{
			Token:       tokenIn,
			StartAmount: types.NewU256(big.NewInt(inStart)),
			EndAmount:   types.NewU256(big.NewInt(inEnd)),
		},
		Outputs: []types.DutchOutput{{
			Token:       tokenOut,
			StartAmount: types.NewU256(big.NewInt(outStart)),
			EndAmount:   types.NewU256(big.NewInt(outEnd)),
			Recipient:   swapper,
		}},
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Resolve(testCtx(1000), types.SignedOrder{OrderType: "mystery"})
	assert.ErrorIs(t, err, ErrUnknownOrderType)
}

func TestDutch_ResolvesDecayedAmounts(t *testing.T) {
	reg := NewRegistry(nil)

	// halfway through the window: output 1000->900 is 950, input flat
	resolved, err := reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, dutchOrder(100, 100, 1000, 900)))
	require.NoError(t, err)
	assert.Equal(t, int64(100), resolved.Input.Amount.Big().Int64())
	assert.Equal(t, int64(950), resolved.Outputs[0].Amount.Big().Int64())
	assert.Equal(t, tokenOut, resolved.Outputs[0].Token)
	assert.Equal(t, swapper, resolved.Outputs[0].Recipient)

	// before the window: start amounts exactly
	resolved, err = reg.Resolve(testCtx(500), envelope(t, types.OrderTypeDutch, dutchOrder(100, 100, 1000, 900)))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resolved.Outputs[0].Amount.Big().Int64())

	// after the window: end amounts exactly
	resolved, err = reg.Resolve(testCtx(1800), envelope(t, types.OrderTypeDutch, dutchOrder(100, 100, 1000, 900)))
	require.NoError(t, err)
	assert.Equal(t, int64(900), resolved.Outputs[0].Amount.Big().Int64())
}

func TestDutch_DirectionInvariants(t *testing.T) {
	reg := NewRegistry(nil)

	// input decaying downward
	_, err := reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, dutchOrder(200, 100, 1000, 1000)))
	assert.ErrorIs(t, err, decay.ErrIncorrectAmounts)

	// output decaying upward
	_, err = reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, dutchOrder(100, 100, 900, 1000)))
	assert.ErrorIs(t, err, decay.ErrIncorrectAmounts)

	// both sides non-degenerate
	_, err = reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, dutchOrder(100, 200, 1000, 900)))
	assert.ErrorIs(t, err, decay.ErrInputAndOutputDecay)
}

func TestDutch_WindowInvariants(t *testing.T) {
	reg := NewRegistry(nil)

	order := dutchOrder(100, 100, 1000, 900)
	order.DecayEndTime = 800 // before start
	_, err := reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, order))
	assert.ErrorIs(t, err, decay.ErrEndTimeBeforeStartTime)

	order = dutchOrder(100, 100, 1000, 900)
	order.Info.Deadline = 1200 // before decay end
	_, err = reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, order))
	assert.ErrorIs(t, err, decay.ErrDeadlineBeforeEndTime)
}

func TestDutch_HashStability(t *testing.T) {
	reg := NewRegistry(nil)

	a, err := reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, dutchOrder(100, 100, 1000, 900)))
	require.NoError(t, err)
	b, err := reg.Resolve(testCtx(1400), envelope(t, types.OrderTypeDutch, dutchOrder(100, 100, 1000, 900)))
	require.NoError(t, err)
	// the hash covers signed fields, not the evaluation context
	assert.Equal(t, a.Hash, b.Hash)

	other := dutchOrder(100, 100, 1000, 900)
	other.Info.Nonce = types.NewU256(big.NewInt(2))
	c, err := reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeDutch, other))
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash, c.Hash)
}

func TestLimit_FlatLegsOnly(t *testing.T) {
	reg := NewRegistry(nil)

	order := types.LimitOrder{
		Info: orderInfo(1, 2000),
		Input: types.DutchInput{
			Token:       tokenIn,
			StartAmount: types.NewU256(big.NewInt(100)),
			EndAmount:   types.NewU256(big.NewInt(100)),
		},
		Outputs: []types.DutchOutput{{
			Token:       tokenOut,
			StartAmount: types.NewU256(big.NewInt(500)),
			EndAmount:   types.NewU256(big.NewInt(500)),
			Recipient:   swapper,
		}},
	}
	resolved, err := reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeLimit, order))
	require.NoError(t, err)
	assert.Equal(t, int64(500), resolved.Outputs[0].Amount.Big().Int64())

	order.Outputs[0].EndAmount = types.NewU256(big.NewInt(400))
	_, err = reg.Resolve(testCtx(1250), envelope(t, types.OrderTypeLimit, order))
	assert.ErrorIs(t, err, decay.ErrIncorrectAmounts)
}

func exclusiveOrder(overrideBps int64) types.ExclusiveDutchOrder {
	base := dutchOrder(100, 100, 1000, 1000)
	return types.ExclusiveDutchOrder{
		Info:                   base.Info,
		DecayStartTime:         base.DecayStartTime,
		DecayEndTime:           base.DecayEndTime,
		ExclusiveFiller:        fillerA,
		ExclusivityOverrideBps: types.NewU256(big.NewInt(overrideBps)),
		Input:                  base.Input,
		Outputs:                base.Outputs,
	}
}

func TestExclusiveDutch_Gating(t *testing.T) {
	reg := NewRegistry(nil)

	// strict order, non-exclusive caller inside the window
	ctx := testCtx(500)
	ctx.Caller = fillerB
	_, err := reg.Resolve(ctx, envelope(t, types.OrderTypeExclusiveDutch, exclusiveOrder(0)))
	assert.ErrorIs(t, err, exclusivity.ErrNoExclusiveOverride)

	// the exclusive filler itself succeeds at unmodified amounts
	ctx.Caller = fillerA
	resolved, err := reg.Resolve(ctx, envelope(t, types.OrderTypeExclusiveDutch, exclusiveOrder(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resolved.Outputs[0].Amount.Big().Int64())

	// after the window closes the same non-exclusive caller settles at
	// undecayed economics (flat legs here)
	ctx = testCtx(1001)
	ctx.Caller = fillerB
	resolved, err = reg.Resolve(ctx, envelope(t, types.OrderTypeExclusiveDutch, exclusiveOrder(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resolved.Outputs[0].Amount.Big().Int64())
}

func TestExclusiveDutch_OverridePenalty(t *testing.T) {
	reg := NewRegistry(nil)

	ctx := testCtx(500)
	ctx.Caller = fillerB
	resolved, err := reg.Resolve(ctx, envelope(t, types.OrderTypeExclusiveDutch, exclusiveOrder(50)))
	require.NoError(t, err)
	// 1000 * 10050/10000
	assert.Equal(t, int64(1005), resolved.Outputs[0].Amount.Big().Int64())
}

func cosignedOrder(t *testing.T, cs *signer.Signer, data types.CosignerData) types.CosignedDutchOrder {
	t.Helper()
	order := types.CosignedDutchOrder{
		Info:     orderInfo(1, 2000),
		Cosigner: cs.Address(),
		Input: types.DutchInput{
			Token:       tokenIn,
			StartAmount: types.NewU256(big.NewInt(100)),
			EndAmount:   types.NewU256(big.NewInt(100)),
		},
		Outputs: []types.DutchOutput{{
			Token:       tokenOut,
			StartAmount: types.NewU256(big.NewInt(1000)),
			EndAmount:   types.NewU256(big.NewInt(900)),
			Recipient:   swapper,
		}},
		CosignerData: data,
	}
	digest := signer.CosignerDigest(signer.HashCosignedDutchOrder(&order), big.NewInt(1), signer.HashCosignerData(data))
	sig, err := cs.SignDigest(digest)
	require.NoError(t, err)
	order.Cosignature = sig
	return order
}

func TestCosignedDutch_HappyPath(t *testing.T) {
	key, _ := crypto.GenerateKey()
	cs := signer.FromKey(key)
	reg := NewRegistry(nil)

	// cosigner shifts the window later and raises the output start
	data := types.CosignerData{
		DecayStartTime:  1200,
		DecayEndTime:    1700,
		OutputOverrides: []types.U256{types.NewU256(big.NewInt(1100))},
	}
	order := cosignedOrder(t, cs, data)

	resolved, err := reg.Resolve(testCtx(1100), envelope(t, types.OrderTypeCosignedDutch, order))
	require.NoError(t, err)
	// before the overridden window start: overridden start amount exactly
	assert.Equal(t, int64(1100), resolved.Outputs[0].Amount.Big().Int64())
}

func TestCosignedDutch_InvalidCosignature(t *testing.T) {
	key, _ := crypto.GenerateKey()
	cs := signer.FromKey(key)
	reg := NewRegistry(nil)

	data := types.CosignerData{DecayStartTime: 1200, DecayEndTime: 1700}
	order := cosignedOrder(t, cs, data)
	// mutate attested data after signing
	order.CosignerData.DecayEndTime = 1800

	_, err := reg.Resolve(testCtx(1100), envelope(t, types.OrderTypeCosignedDutch, order))
	assert.ErrorIs(t, err, cosigner.ErrInvalidCosignature)
}

func TestCosignedDutch_OneSidedOverrides(t *testing.T) {
	key, _ := crypto.GenerateKey()
	cs := signer.FromKey(key)
	reg := NewRegistry(nil)

	// input override above the signed start asks the swapper to pay more
	data := types.CosignerData{
		DecayStartTime: 1200,
		DecayEndTime:   1700,
		InputOverride:  types.NewU256(big.NewInt(150)),
	}
	_, err := reg.Resolve(testCtx(1100), envelope(t, types.OrderTypeCosignedDutch, cosignedOrder(t, cs, data)))
	assert.ErrorIs(t, err, cosigner.ErrInvalidCosignerInput)

	// output override below the signed start gives the swapper less
	data = types.CosignerData{
		DecayStartTime:  1200,
		DecayEndTime:    1700,
		OutputOverrides: []types.U256{types.NewU256(big.NewInt(800))},
	}
	_, err = reg.Resolve(testCtx(1100), envelope(t, types.OrderTypeCosignedDutch, cosignedOrder(t, cs, data)))
	assert.ErrorIs(t, err, cosigner.ErrInvalidCosignerOutput)

	// overrides exactly equal to the signed amounts are a no-op
	data = types.CosignerData{
		DecayStartTime:  1200,
		DecayEndTime:    1700,
		InputOverride:   types.NewU256(big.NewInt(100)),
		OutputOverrides: []types.U256{types.NewU256(big.NewInt(1000))},
	}
	resolved, err := reg.Resolve(testCtx(1100), envelope(t, types.OrderTypeCosignedDutch, cosignedOrder(t, cs, data)))
	require.NoError(t, err)
	assert.Equal(t, int64(100), resolved.Input.Amount.Big().Int64())
	assert.Equal(t, int64(1000), resolved.Outputs[0].Amount.Big().Int64())
}

func priorityOrder(mpsIn, mpsOut int64) types.PriorityOrder {
	return types.PriorityOrder{
		Info:                   orderInfo(1, 2000),
		AuctionStartBlock:      900,
		BaselinePriorityFeeWei: types.NewU256(big.NewInt(10)),
		Input: types.PriorityInput{
			Token:                tokenIn,
			Amount:               types.NewU256(big.NewInt(1_000_000)),
			MpsPerPriorityFeeWei: types.NewU256(big.NewInt(mpsIn)),
		},
		Outputs: []types.PriorityOutput{{
			Token:                tokenOut,
			Amount:               types.NewU256(big.NewInt(2_000_000)),
			MpsPerPriorityFeeWei: types.NewU256(big.NewInt(mpsOut)),
			Recipient:            swapper,
		}},
	}
}

func TestPriority_ScalesWithPriorityFee(t *testing.T) {
	reg := NewRegistry(nil)

	ctx := testCtx(1500)
	ctx.GasPrice = big.NewInt(10_110) // priority fee = 10110-100-10 = 10000
	resolved, err := reg.Resolve(ctx, envelope(t, types.OrderTypePriority, priorityOrder(0, 1)))
	require.NoError(t, err)
	// +10000 mps = +0.1%
	assert.Equal(t, int64(2_002_000), resolved.Outputs[0].Amount.Big().Int64())
	assert.Equal(t, int64(1_000_000), resolved.Input.Amount.Big().Int64())
}

func TestPriority_Guards(t *testing.T) {
	reg := NewRegistry(nil)

	ctx := testCtx(1500)
	ctx.GasPrice = big.NewInt(50) // below base fee
	_, err := reg.Resolve(ctx, envelope(t, types.OrderTypePriority, priorityOrder(0, 1)))
	assert.ErrorIs(t, err, priority.ErrInvalidGasPrice)

	ctx = testCtx(1500)
	ctx.BlockNumber = 800 // auction opens at 900
	_, err = reg.Resolve(ctx, envelope(t, types.OrderTypePriority, priorityOrder(0, 1)))
	assert.ErrorIs(t, err, priority.ErrAuctionNotStarted)

	_, err = reg.Resolve(testCtx(1500), envelope(t, types.OrderTypePriority, priorityOrder(1, 1)))
	assert.ErrorIs(t, err, priority.ErrInputOutputScaling)
}

func TestPriority_CosignedTargetBlock(t *testing.T) {
	key, _ := crypto.GenerateKey()
	cs := signer.FromKey(key)
	reg := NewRegistry(nil)

	order := priorityOrder(0, 1)
	order.AuctionStartBlock = 1100 // after current block 1000
	order.Cosigner = cs.Address()
	order.CosignerData = types.PriorityCosignerData{AuctionTargetBlock: 990}
	digest := signer.CosignerDigest(signer.HashPriorityOrder(&order), big.NewInt(1), signer.HashPriorityCosignerData(order.CosignerData))
	sig, err := cs.SignDigest(digest)
	require.NoError(t, err)
	order.Cosignature = sig

	// cosigner opened the auction at block 990, so block 1000 settles
	_, err = reg.Resolve(testCtx(1500), envelope(t, types.OrderTypePriority, order))
	assert.NoError(t, err)

	// a target after the signed start is rejected
	order.CosignerData = types.PriorityCosignerData{AuctionTargetBlock: 1200}
	digest = signer.CosignerDigest(signer.HashPriorityOrder(&order), big.NewInt(1), signer.HashPriorityCosignerData(order.CosignerData))
	sig, err = cs.SignDigest(digest)
	require.NoError(t, err)
	order.Cosignature = sig
	_, err = reg.Resolve(testCtx(1500), envelope(t, types.OrderTypePriority, order))
	assert.ErrorIs(t, err, ErrInvalidAuctionTarget)
}

func TestPiecewise_ResolveWithCosignedAnchor(t *testing.T) {
	key, _ := crypto.GenerateKey()
	cs := signer.FromKey(key)
	reg := NewRegistry(nil)

	order := types.PiecewiseDutchOrder{
		Info:     orderInfo(1, 2000),
		Cosigner: cs.Address(),
		Input: types.PiecewiseInput{
			Token:       tokenIn,
			StartAmount: types.NewU256(big.NewInt(100)),
			MaxAmount:   types.NewU256(big.NewInt(100)),
		},
		Outputs: []types.PiecewiseOutput{{
			Token:       tokenOut,
			StartAmount: types.NewU256(big.NewInt(1000)),
			MinAmount:   types.NewU256(big.NewInt(900)),
			Curve: []types.CurvePoint{{
				RelativeBlocks: 10,
				RelativeAmount: types.NewU256(big.NewInt(-100)),
			}},
			Recipient: swapper,
		}},
	}
	// anchor the decay at block 995; current block is 1000, so 5/10 through
	order.CosignerData = types.PiecewiseCosignerData{DecayStartBlock: 995}
	digest := signer.CosignerDigest(signer.HashPiecewiseDutchOrder(&order), big.NewInt(1), signer.HashPiecewiseCosignerData(order.CosignerData))
	sig, err := cs.SignDigest(digest)
	require.NoError(t, err)
	order.Cosignature = sig

	resolved, err := reg.Resolve(testCtx(1500), envelope(t, types.OrderTypePiecewiseDutch, order))
	require.NoError(t, err)
	assert.Equal(t, int64(950), resolved.Outputs[0].Amount.Big().Int64())
	assert.Equal(t, int64(100), resolved.Input.Amount.Big().Int64())
}

func TestPiecewise_ScheduleOutlivesDeadline(t *testing.T) {
	key, _ := crypto.GenerateKey()
	cs := signer.FromKey(key)
	reg := NewRegistry(nil)

	order := types.PiecewiseDutchOrder{
		Info:     orderInfo(1, 2000),
		Cosigner: cs.Address(),
		Input: types.PiecewiseInput{
			Token:       tokenIn,
			StartAmount: types.NewU256(big.NewInt(100)),
			MaxAmount:   types.NewU256(big.NewInt(100)),
		},
		Outputs: []types.PiecewiseOutput{{
			Token:       tokenOut,
			StartAmount: types.NewU256(big.NewInt(1000)),
			MinAmount:   types.NewU256(big.NewInt(900)),
			Curve: []types.CurvePoint{{
				RelativeBlocks: 10_000_000,
				RelativeAmount: types.NewU256(big.NewInt(-100)),
			}},
			Recipient: swapper,
		}},
	}
	// curve end is millions of blocks past the deadline 2000
	order.CosignerData = types.PiecewiseCosignerData{DecayStartBlock: 995}
	digest := signer.CosignerDigest(signer.HashPiecewiseDutchOrder(&order), big.NewInt(1), signer.HashPiecewiseCosignerData(order.CosignerData))
	sig, err := cs.SignDigest(digest)
	require.NoError(t, err)
	order.Cosignature = sig

	_, err = reg.Resolve(testCtx(1500), envelope(t, types.OrderTypePiecewiseDutch, order))
	assert.ErrorIs(t, err, decay.ErrDeadlineBeforeEndTime)
}
