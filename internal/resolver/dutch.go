package resolver

import (
	"encoding/json"
	"math/big"

	"github.com/openfill/fillgate/internal/decay"
	"github.com/openfill/fillgate/internal/exclusivity"
	"github.com/openfill/fillgate/internal/signer"
	"github.com/openfill/fillgate/internal/types"
)

// validateDutchLegs checks the per-leg amount ordering and the
// one-decaying-side invariant shared by every linear-decay family.
func validateDutchLegs(input types.DutchInput, outputs []types.DutchOutput) error {
	if err := decay.ValidateInputRange(input.StartAmount.Big(), input.EndAmount.Big()); err != nil {
		return err
	}
	inputDecays := input.StartAmount.Big().Cmp(input.EndAmount.Big()) != 0
	outputDecays := false
	for _, out := range outputs {
		if err := decay.ValidateOutputRange(out.StartAmount.Big(), out.EndAmount.Big()); err != nil {
			return err
		}
		if out.StartAmount.Big().Cmp(out.EndAmount.Big()) != 0 {
			outputDecays = true
		}
	}
	return decay.ValidateSingleDirection(inputDecays, outputDecays)
}

// decayDutch evaluates every leg at now. Inputs round down, outputs round up.
func decayDutch(input types.DutchInput, outputs []types.DutchOutput, startTime, endTime, now uint64) (types.ResolvedInput, []types.ResolvedOutput) {
	in := types.ResolvedInput{
		Token:  input.Token,
		Amount: types.NewU256(decay.Linear(input.StartAmount.Big(), input.EndAmount.Big(), startTime, endTime, now, decay.RoundDown)),
	}
	outs := make([]types.ResolvedOutput, len(outputs))
	for i, out := range outputs {
		outs[i] = types.ResolvedOutput{
			Token:     out.Token,
			Amount:    types.NewU256(decay.Linear(out.StartAmount.Big(), out.EndAmount.Big(), startTime, endTime, now, decay.RoundUp)),
			Recipient: out.Recipient,
		}
	}
	return in, outs
}

type dutchResolver struct{}

func (dutchResolver) Type() types.OrderType { return types.OrderTypeDutch }

func (dutchResolver) Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error) {
	var order types.DutchOrder
	if err := json.Unmarshal(signed.Order, &order); err != nil {
		return nil, decodeErr(err)
	}
	if err := decay.ValidateWindow(order.DecayStartTime, order.DecayEndTime, order.Info.Deadline); err != nil {
		return nil, err
	}
	if err := validateDutchLegs(order.Input, order.Outputs); err != nil {
		return nil, err
	}

	in, outs := decayDutch(order.Input, order.Outputs, order.DecayStartTime, order.DecayEndTime, rctx.Timestamp)
	return &types.ResolvedOrder{
		Info:      order.Info,
		Input:     in,
		Outputs:   outs,
		Signature: signed.Signature,
		Hash:      signer.HashDutchOrder(&order),
	}, nil
}

type limitResolver struct{}

func (limitResolver) Type() types.OrderType { return types.OrderTypeLimit }

// Limit orders are degenerate Dutch orders: every leg must be flat.
func (limitResolver) Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error) {
	var order types.LimitOrder
	if err := json.Unmarshal(signed.Order, &order); err != nil {
		return nil, decodeErr(err)
	}
	if order.Input.StartAmount.Big().Cmp(order.Input.EndAmount.Big()) != 0 {
		return nil, decay.ErrIncorrectAmounts
	}
	for _, out := range order.Outputs {
		if out.StartAmount.Big().Cmp(out.EndAmount.Big()) != 0 {
			return nil, decay.ErrIncorrectAmounts
		}
	}

	outs := make([]types.ResolvedOutput, len(order.Outputs))
	for i, out := range order.Outputs {
		outs[i] = types.ResolvedOutput{
			Token:     out.Token,
			Amount:    types.NewU256(new(big.Int).Set(out.StartAmount.Big())),
			Recipient: out.Recipient,
		}
	}
	return &types.ResolvedOrder{
		Info: order.Info,
		Input: types.ResolvedInput{
			Token:  order.Input.Token,
			Amount: types.NewU256(new(big.Int).Set(order.Input.StartAmount.Big())),
		},
		Outputs:   outs,
		Signature: signed.Signature,
		Hash:      signer.HashLimitOrder(&order),
	}, nil
}

type exclusiveDutchResolver struct{}

func (exclusiveDutchResolver) Type() types.OrderType { return types.OrderTypeExclusiveDutch }

func (exclusiveDutchResolver) Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error) {
	var order types.ExclusiveDutchOrder
	if err := json.Unmarshal(signed.Order, &order); err != nil {
		return nil, decodeErr(err)
	}
	if err := decay.ValidateWindow(order.DecayStartTime, order.DecayEndTime, order.Info.Deadline); err != nil {
		return nil, err
	}
	if err := validateDutchLegs(order.Input, order.Outputs); err != nil {
		return nil, err
	}

	in, outs := decayDutch(order.Input, order.Outputs, order.DecayStartTime, order.DecayEndTime, rctx.Timestamp)

	// exclusivity runs on decayed amounts, right before the engine commits
	outs, err := exclusivity.Apply(outs, order.ExclusiveFiller, rctx.Caller,
		order.ExclusivityOverrideBps.Big(), order.DecayStartTime, rctx.Timestamp)
	if err != nil {
		return nil, err
	}

	return &types.ResolvedOrder{
		Info:      order.Info,
		Input:     in,
		Outputs:   outs,
		Signature: signed.Signature,
		Hash:      signer.HashExclusiveDutchOrder(&order),
	}, nil
}
