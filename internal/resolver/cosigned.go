package resolver

import (
	"encoding/json"

	"github.com/openfill/fillgate/internal/cosigner"
	"github.com/openfill/fillgate/internal/decay"
	"github.com/openfill/fillgate/internal/exclusivity"
	"github.com/openfill/fillgate/internal/signer"
	"github.com/openfill/fillgate/internal/types"
)

type cosignedDutchResolver struct {
	recover cosigner.RecoverFunc
}

func (cosignedDutchResolver) Type() types.OrderType { return types.OrderTypeCosignedDutch }

// Resolve applies the cosigner pipeline in the required order: attestation
// check, override validation, then decay over the cosigner-supplied window.
// The order hash covers the base signed fields only.
func (r *cosignedDutchResolver) Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error) {
	var order types.CosignedDutchOrder
	if err := json.Unmarshal(signed.Order, &order); err != nil {
		return nil, decodeErr(err)
	}
	if err := validateDutchLegs(order.Input, order.Outputs); err != nil {
		return nil, err
	}

	orderHash := signer.HashCosignedDutchOrder(&order)

	data := order.CosignerData
	digest := signer.CosignerDigest(orderHash, rctx.ChainID, signer.HashCosignerData(data))
	if err := cosigner.VerifyAttestation(r.recover, order.Cosigner, digest, order.Cosignature); err != nil {
		return nil, err
	}

	if err := cosigner.CheckOverrideCount(len(data.OutputOverrides), len(order.Outputs)); err != nil {
		return nil, err
	}

	// overrides replace only the decay-start endpoints; the window comes from
	// the cosigner data wholesale
	input := order.Input
	start, err := cosigner.OverrideInput(input.StartAmount.Big(), data.InputOverride.Big())
	if err != nil {
		return nil, err
	}
	input.StartAmount = types.NewU256(start)

	outputs := make([]types.DutchOutput, len(order.Outputs))
	copy(outputs, order.Outputs)
	for i := range outputs {
		if len(data.OutputOverrides) == 0 {
			break
		}
		start, err := cosigner.OverrideOutput(outputs[i].StartAmount.Big(), data.OutputOverrides[i].Big())
		if err != nil {
			return nil, err
		}
		outputs[i].StartAmount = types.NewU256(start)
	}

	if err := decay.ValidateWindow(data.DecayStartTime, data.DecayEndTime, order.Info.Deadline); err != nil {
		return nil, err
	}
	// overridden start endpoints must still respect the decay direction
	// against the signed end amounts
	if err := decay.ValidateInputRange(input.StartAmount.Big(), input.EndAmount.Big()); err != nil {
		return nil, err
	}
	for _, out := range outputs {
		if err := decay.ValidateOutputRange(out.StartAmount.Big(), out.EndAmount.Big()); err != nil {
			return nil, err
		}
	}

	in, outs := decayDutch(input, outputs, data.DecayStartTime, data.DecayEndTime, rctx.Timestamp)

	outs, err = exclusivity.Apply(outs, data.ExclusiveFiller, rctx.Caller,
		data.ExclusivityOverrideBps.Big(), data.DecayStartTime, rctx.Timestamp)
	if err != nil {
		return nil, err
	}

	return &types.ResolvedOrder{
		Info:      order.Info,
		Input:     in,
		Outputs:   outs,
		Signature: signed.Signature,
		Hash:      orderHash,
	}, nil
}
