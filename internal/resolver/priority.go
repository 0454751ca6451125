package resolver

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/cosigner"
	"github.com/openfill/fillgate/internal/priority"
	"github.com/openfill/fillgate/internal/signer"
	"github.com/openfill/fillgate/internal/types"
)

type priorityResolver struct {
	recover cosigner.RecoverFunc
}

func (priorityResolver) Type() types.OrderType { return types.OrderTypePriority }

// Resolve scales amounts with the caller's priority fee. The cosigner is
// optional here; when present it may only move the auction start earlier.
func (r *priorityResolver) Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error) {
	var order types.PriorityOrder
	if err := json.Unmarshal(signed.Order, &order); err != nil {
		return nil, decodeErr(err)
	}
	if err := priority.ValidateScalingSides(order.Input, order.Outputs); err != nil {
		return nil, err
	}

	orderHash := signer.HashPriorityOrder(&order)

	auctionStart := order.AuctionStartBlock
	if order.Cosigner != (common.Address{}) {
		data := order.CosignerData
		digest := signer.CosignerDigest(orderHash, rctx.ChainID, signer.HashPriorityCosignerData(data))
		if err := cosigner.VerifyAttestation(r.recover, order.Cosigner, digest, order.Cosignature); err != nil {
			return nil, err
		}
		if data.AuctionTargetBlock != 0 {
			if data.AuctionTargetBlock > order.AuctionStartBlock {
				return nil, ErrInvalidAuctionTarget
			}
			auctionStart = data.AuctionTargetBlock
		}
	}

	if rctx.BlockNumber < auctionStart {
		return nil, priority.ErrAuctionNotStarted
	}

	fee, err := priority.Fee(rctx.GasPrice, rctx.BaseFee, order.BaselinePriorityFeeWei.Big())
	if err != nil {
		return nil, err
	}

	in := types.ResolvedInput{
		Token:  order.Input.Token,
		Amount: types.NewU256(priority.ScaleInput(order.Input.Amount.Big(), order.Input.MpsPerPriorityFeeWei.Big(), fee)),
	}
	outs := make([]types.ResolvedOutput, len(order.Outputs))
	for i, out := range order.Outputs {
		outs[i] = types.ResolvedOutput{
			Token:     out.Token,
			Amount:    types.NewU256(priority.ScaleOutput(out.Amount.Big(), out.MpsPerPriorityFeeWei.Big(), fee)),
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
