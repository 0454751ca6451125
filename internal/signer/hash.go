package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/openfill/fillgate/internal/types"
)

// EIP-712 struct hashing for every order family. The hash always covers the
// originally signed fields: cosigner data and cosignatures are attested by
// the cosigner, not the swapper, and never enter the order hash.

const (
	orderInfoType       = "OrderInfo(address reactor,address swapper,uint256 nonce,uint256 deadline,address validationContract,bytes validationData)"
	dutchInputType      = "DutchInput(address token,uint256 startAmount,uint256 endAmount)"
	dutchOutputType     = "DutchOutput(address token,uint256 startAmount,uint256 endAmount,address recipient)"
	curvePointType      = "CurvePoint(uint256 relativeBlocks,int256 relativeAmount)"
	piecewiseInputType  = "PiecewiseInput(address token,uint256 startAmount,CurvePoint[] curve,uint256 maxAmount)"
	piecewiseOutputType = "PiecewiseOutput(address token,uint256 startAmount,CurvePoint[] curve,uint256 minAmount,address recipient)"
	priorityInputType   = "PriorityInput(address token,uint256 amount,uint256 mpsPerPriorityFeeWei)"
	priorityOutputType  = "PriorityOutput(address token,uint256 amount,uint256 mpsPerPriorityFeeWei,address recipient)"
)

// Full type strings: primary type followed by referenced types in
// alphabetical order, per EIP-712.
var (
	orderInfoTypeHash       = crypto.Keccak256Hash([]byte(orderInfoType))
	dutchInputTypeHash      = crypto.Keccak256Hash([]byte(dutchInputType))
	dutchOutputTypeHash     = crypto.Keccak256Hash([]byte(dutchOutputType))
	curvePointTypeHash      = crypto.Keccak256Hash([]byte(curvePointType))
	piecewiseInputTypeHash  = crypto.Keccak256Hash([]byte(piecewiseInputType + curvePointType))
	piecewiseOutputTypeHash = crypto.Keccak256Hash([]byte(piecewiseOutputType + curvePointType))
	priorityInputTypeHash   = crypto.Keccak256Hash([]byte(priorityInputType))
	priorityOutputTypeHash  = crypto.Keccak256Hash([]byte(priorityOutputType))

	limitOrderTypeHash = crypto.Keccak256Hash([]byte(
		"LimitOrder(OrderInfo info,DutchInput input,DutchOutput[] outputs)" +
			dutchInputType + dutchOutputType + orderInfoType))

	dutchOrderTypeHash = crypto.Keccak256Hash([]byte(
		"DutchOrder(OrderInfo info,uint256 decayStartTime,uint256 decayEndTime,DutchInput input,DutchOutput[] outputs)" +
			dutchInputType + dutchOutputType + orderInfoType))

	exclusiveDutchOrderTypeHash = crypto.Keccak256Hash([]byte(
		"ExclusiveDutchOrder(OrderInfo info,uint256 decayStartTime,uint256 decayEndTime,address exclusiveFiller,uint256 exclusivityOverrideBps,DutchInput input,DutchOutput[] outputs)" +
			dutchInputType + dutchOutputType + orderInfoType))

	cosignedDutchOrderTypeHash = crypto.Keccak256Hash([]byte(
		"CosignedDutchOrder(OrderInfo info,address cosigner,DutchInput input,DutchOutput[] outputs)" +
			dutchInputType + dutchOutputType + orderInfoType))

	piecewiseDutchOrderTypeHash = crypto.Keccak256Hash([]byte(
		"PiecewiseDutchOrder(OrderInfo info,address cosigner,PiecewiseInput input,PiecewiseOutput[] outputs)" +
			curvePointType + orderInfoType + piecewiseInputType + piecewiseOutputType))

	priorityOrderTypeHash = crypto.Keccak256Hash([]byte(
		"PriorityOrder(OrderInfo info,address cosigner,uint256 auctionStartBlock,uint256 baselinePriorityFeeWei,PriorityInput input,PriorityOutput[] outputs)" +
			orderInfoType + priorityInputType + priorityOutputType))
)

func hashOrderInfo(info types.OrderInfo) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		orderInfoTypeHash.Bytes(),
		wordAddress(info.Reactor),
		wordAddress(info.Swapper),
		wordUint(info.Nonce.Big()),
		wordUint64(info.Deadline),
		wordAddress(info.ValidationContract),
		crypto.Keccak256(info.ValidationData),
	))
}

func hashDutchInput(in types.DutchInput) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		dutchInputTypeHash.Bytes(),
		wordAddress(in.Token),
		wordUint(in.StartAmount.Big()),
		wordUint(in.EndAmount.Big()),
	))
}

func hashDutchOutputs(outs []types.DutchOutput) common.Hash {
	packed := make([]byte, 0, len(outs)*32)
	for _, o := range outs {
		h := crypto.Keccak256Hash(encodeWords(
			dutchOutputTypeHash.Bytes(),
			wordAddress(o.Token),
			wordUint(o.StartAmount.Big()),
			wordUint(o.EndAmount.Big()),
			wordAddress(o.Recipient),
		))
		packed = append(packed, h.Bytes()...)
	}
	return crypto.Keccak256Hash(packed)
}

func hashCurve(points []types.CurvePoint) common.Hash {
	packed := make([]byte, 0, len(points)*32)
	for _, p := range points {
		h := crypto.Keccak256Hash(encodeWords(
			curvePointTypeHash.Bytes(),
			wordUint64(p.RelativeBlocks),
			wordUint(p.RelativeAmount.Big()),
		))
		packed = append(packed, h.Bytes()...)
	}
	return crypto.Keccak256Hash(packed)
}

func hashPiecewiseInput(in types.PiecewiseInput) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		piecewiseInputTypeHash.Bytes(),
		wordAddress(in.Token),
		wordUint(in.StartAmount.Big()),
		hashCurve(in.Curve).Bytes(),
		wordUint(in.MaxAmount.Big()),
	))
}

func hashPiecewiseOutputs(outs []types.PiecewiseOutput) common.Hash {
	packed := make([]byte, 0, len(outs)*32)
	for _, o := range outs {
		h := crypto.Keccak256Hash(encodeWords(
			piecewiseOutputTypeHash.Bytes(),
			wordAddress(o.Token),
			wordUint(o.StartAmount.Big()),
			hashCurve(o.Curve).Bytes(),
			wordUint(o.MinAmount.Big()),
			wordAddress(o.Recipient),
		))
		packed = append(packed, h.Bytes()...)
	}
	return crypto.Keccak256Hash(packed)
}

func hashPriorityInput(in types.PriorityInput) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		priorityInputTypeHash.Bytes(),
		wordAddress(in.Token),
		wordUint(in.Amount.Big()),
		wordUint(in.MpsPerPriorityFeeWei.Big()),
	))
}

func hashPriorityOutputs(outs []types.PriorityOutput) common.Hash {
	packed := make([]byte, 0, len(outs)*32)
	for _, o := range outs {
		h := crypto.Keccak256Hash(encodeWords(
			priorityOutputTypeHash.Bytes(),
			wordAddress(o.Token),
			wordUint(o.Amount.Big()),
			wordUint(o.MpsPerPriorityFeeWei.Big()),
			wordAddress(o.Recipient),
		))
		packed = append(packed, h.Bytes()...)
	}
	return crypto.Keccak256Hash(packed)
}

// HashLimitOrder returns hashStruct(LimitOrder).
func HashLimitOrder(o *types.LimitOrder) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		limitOrderTypeHash.Bytes(),
		hashOrderInfo(o.Info).Bytes(),
		hashDutchInput(o.Input).Bytes(),
		hashDutchOutputs(o.Outputs).Bytes(),
	))
}

// HashDutchOrder returns hashStruct(DutchOrder).
func HashDutchOrder(o *types.DutchOrder) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		dutchOrderTypeHash.Bytes(),
		hashOrderInfo(o.Info).Bytes(),
		wordUint64(o.DecayStartTime),
		wordUint64(o.DecayEndTime),
		hashDutchInput(o.Input).Bytes(),
		hashDutchOutputs(o.Outputs).Bytes(),
	))
}

// HashExclusiveDutchOrder returns hashStruct(ExclusiveDutchOrder).
func HashExclusiveDutchOrder(o *types.ExclusiveDutchOrder) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		exclusiveDutchOrderTypeHash.Bytes(),
		hashOrderInfo(o.Info).Bytes(),
		wordUint64(o.DecayStartTime),
		wordUint64(o.DecayEndTime),
		wordAddress(o.ExclusiveFiller),
		wordUint(o.ExclusivityOverrideBps.Big()),
		hashDutchInput(o.Input).Bytes(),
		hashDutchOutputs(o.Outputs).Bytes(),
	))
}

// HashCosignedDutchOrder returns hashStruct(CosignedDutchOrder). Cosigner
// data is deliberately excluded: only the swapper-signed base order hashes.
func HashCosignedDutchOrder(o *types.CosignedDutchOrder) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		cosignedDutchOrderTypeHash.Bytes(),
		hashOrderInfo(o.Info).Bytes(),
		wordAddress(o.Cosigner),
		hashDutchInput(o.Input).Bytes(),
		hashDutchOutputs(o.Outputs).Bytes(),
	))
}

// HashPiecewiseDutchOrder returns hashStruct(PiecewiseDutchOrder).
func HashPiecewiseDutchOrder(o *types.PiecewiseDutchOrder) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		piecewiseDutchOrderTypeHash.Bytes(),
		hashOrderInfo(o.Info).Bytes(),
		wordAddress(o.Cosigner),
		hashPiecewiseInput(o.Input).Bytes(),
		hashPiecewiseOutputs(o.Outputs).Bytes(),
	))
}

// HashPriorityOrder returns hashStruct(PriorityOrder).
func HashPriorityOrder(o *types.PriorityOrder) common.Hash {
	return crypto.Keccak256Hash(encodeWords(
		priorityOrderTypeHash.Bytes(),
		hashOrderInfo(o.Info).Bytes(),
		wordAddress(o.Cosigner),
		wordUint64(o.AuctionStartBlock),
		wordUint(o.BaselinePriorityFeeWei.Big()),
		hashPriorityInput(o.Input).Bytes(),
		hashPriorityOutputs(o.Outputs).Bytes(),
	))
}

// HashCosignerData canonically encodes Dutch cosigner data for the cosigner
// digest.
func HashCosignerData(d types.CosignerData) common.Hash {
	words := encodeWords(
		wordUint64(d.DecayStartTime),
		wordUint64(d.DecayEndTime),
		wordAddress(d.ExclusiveFiller),
		wordUint(d.ExclusivityOverrideBps.Big()),
		wordUint(d.InputOverride.Big()),
	)
	for _, o := range d.OutputOverrides {
		words = append(words, wordUint(o.Big())...)
	}
	return crypto.Keccak256Hash(words)
}

// HashPiecewiseCosignerData canonically encodes piecewise cosigner data.
func HashPiecewiseCosignerData(d types.PiecewiseCosignerData) common.Hash {
	words := encodeWords(
		wordUint64(d.DecayStartBlock),
		wordUint(d.InputOverride.Big()),
	)
	for _, o := range d.OutputOverrides {
		words = append(words, wordUint(o.Big())...)
	}
	return crypto.Keccak256Hash(words)
}

// HashPriorityCosignerData canonically encodes priority cosigner data.
func HashPriorityCosignerData(d types.PriorityCosignerData) common.Hash {
	return crypto.Keccak256Hash(wordUint64(d.AuctionTargetBlock))
}

// CosignerDigest is what a cosigner signs: the order hash bound to the chain
// context and the cosigner data it attests to.
func CosignerDigest(orderHash common.Hash, chainID *big.Int, dataHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(orderHash.Bytes(), wordUint(chainID), dataHash.Bytes())
}
