package fees

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfill/fillgate/internal/types"
)

var (
	tokenIn      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tokenOut     = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	feeRecipient = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	swapper      = common.HexToAddress("0x0000000000000000000000000000000000002222")
)

func resolvedOrder(amounts ...int64) *types.ResolvedOrder {
	outs := make([]types.ResolvedOutput, len(amounts))
	for i, a := range amounts {
		outs[i] = types.ResolvedOutput{
			Token:     tokenOut,
			Amount:    types.NewU256(big.NewInt(a)),
			Recipient: swapper,
		}
	}
	return &types.ResolvedOrder{
		Input:   types.ResolvedInput{Token: tokenIn, Amount: types.NewU256(big.NewInt(100))},
		Outputs: outs,
	}
}

func TestInject_AppendsFeeRow(t *testing.T) {
	ctrl := NewStaticController()
	ctrl.Set(tokenIn, tokenOut, 5)
	inj := NewInjector(ctrl, feeRecipient)

	order := resolvedOrder(1_000_000, 500_000)
	require.NoError(t, inj.Inject(context.Background(), order))

	// swapper-visible rows untouched
	require.Len(t, order.Outputs, 3)
	assert.Equal(t, int64(1_000_000), order.Outputs[0].Amount.Big().Int64())
	assert.Equal(t, int64(500_000), order.Outputs[1].Amount.Big().Int64())

	// 5 bps on 1.5M, rounded down
	fee := order.Outputs[2]
	assert.Equal(t, int64(750), fee.Amount.Big().Int64())
	assert.Equal(t, feeRecipient, fee.Recipient)
	assert.Equal(t, tokenOut, fee.Token)
}

func TestInject_ZeroRateIsNoop(t *testing.T) {
	inj := NewInjector(NewStaticController(), feeRecipient)
	order := resolvedOrder(1_000_000)
	require.NoError(t, inj.Inject(context.Background(), order))
	assert.Len(t, order.Outputs, 1)
}

func TestInject_RejectsRateAboveCap(t *testing.T) {
	ctrl := NewStaticController()
	ctrl.Set(tokenIn, tokenOut, 6)
	inj := NewInjector(ctrl, feeRecipient)

	err := inj.Inject(context.Background(), resolvedOrder(1_000_000))
	assert.ErrorIs(t, err, ErrFeeTooLarge)
}

func TestInject_DustRoundsToNothing(t *testing.T) {
	ctrl := NewStaticController()
	ctrl.Set(tokenIn, tokenOut, 5)
	inj := NewInjector(ctrl, feeRecipient)

	// 5 bps of 100 is 0.05: no fee row appended
	order := resolvedOrder(100)
	require.NoError(t, inj.Inject(context.Background(), order))
	assert.Len(t, order.Outputs, 1)
}
