package resolver

import (
	"encoding/json"

	"github.com/openfill/fillgate/internal/cosigner"
	"github.com/openfill/fillgate/internal/decay"
	"github.com/openfill/fillgate/internal/signer"
	"github.com/openfill/fillgate/internal/types"
)

type piecewiseDutchResolver struct {
	recover cosigner.RecoverFunc
}

func (piecewiseDutchResolver) Type() types.OrderType { return types.OrderTypePiecewiseDutch }

// Resolve evaluates block-anchored piecewise curves. The decay start block is
// attested by the cosigner, which lets it anchor the auction at the current
// block without re-signing the order.
func (r *piecewiseDutchResolver) Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error) {
	var order types.PiecewiseDutchOrder
	if err := json.Unmarshal(signed.Order, &order); err != nil {
		return nil, decodeErr(err)
	}

	if err := decay.ValidateInputCurve(order.Input.StartAmount.Big(), order.Input.MaxAmount.Big(), order.Input.Curve); err != nil {
		return nil, err
	}
	inputDecays := len(order.Input.Curve) > 0
	outputDecays := false
	for _, out := range order.Outputs {
		if err := decay.ValidateOutputCurve(out.StartAmount.Big(), out.MinAmount.Big(), out.Curve); err != nil {
			return nil, err
		}
		if len(out.Curve) > 0 {
			outputDecays = true
		}
	}
	if err := decay.ValidateSingleDirection(inputDecays, outputDecays); err != nil {
		return nil, err
	}

	orderHash := signer.HashPiecewiseDutchOrder(&order)

	data := order.CosignerData
	digest := signer.CosignerDigest(orderHash, rctx.ChainID, signer.HashPiecewiseCosignerData(data))
	if err := cosigner.VerifyAttestation(r.recover, order.Cosigner, digest, order.Cosignature); err != nil {
		return nil, err
	}
	if err := cosigner.CheckOverrideCount(len(data.OutputOverrides), len(order.Outputs)); err != nil {
		return nil, err
	}

	end := decay.CurveEndBlock(data.DecayStartBlock, order.Input.Curve)
	for _, out := range order.Outputs {
		if e := decay.CurveEndBlock(data.DecayStartBlock, out.Curve); e > end {
			end = e
		}
	}
	// Blocks are at least a second apart, so a schedule ending more blocks
	// out than the deadline leaves seconds can never complete in time.
	if end > rctx.BlockNumber && order.Info.Deadline < rctx.Timestamp+(end-rctx.BlockNumber) {
		return nil, decay.ErrDeadlineBeforeEndTime
	}

	inputStart, err := cosigner.OverrideInput(order.Input.StartAmount.Big(), data.InputOverride.Big())
	if err != nil {
		return nil, err
	}

	in := types.ResolvedInput{
		Token:  order.Input.Token,
		Amount: types.NewU256(decay.Piecewise(inputStart, order.Input.Curve, data.DecayStartBlock, rctx.BlockNumber, decay.RoundDown)),
	}

	outs := make([]types.ResolvedOutput, len(order.Outputs))
	for i, out := range order.Outputs {
		start := out.StartAmount.Big()
		if len(data.OutputOverrides) > 0 {
			start, err = cosigner.OverrideOutput(start, data.OutputOverrides[i].Big())
			if err != nil {
				return nil, err
			}
		}
		outs[i] = types.ResolvedOutput{
			Token:     out.Token,
			Amount:    types.NewU256(decay.Piecewise(start, out.Curve, data.DecayStartBlock, rctx.BlockNumber, decay.RoundUp)),
			Recipient: out.Recipient,
		}
	}

	return &types.ResolvedOrder{
		Info:      order.Info,
		Input:     in,
		Outputs:   outs,
		Signature: signed.Signature,
		Hash:      orderHash,
	}, nil
}
