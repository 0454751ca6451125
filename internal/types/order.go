package types

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// OrderType tags the order family carried inside a SignedOrder envelope.
// Each family differs only in how it resolves to concrete amounts.
type OrderType string

const (
	OrderTypeLimit          OrderType = "limit"
	OrderTypeDutch          OrderType = "dutch"
	OrderTypeExclusiveDutch OrderType = "exclusive_dutch"
	OrderTypeCosignedDutch  OrderType = "cosigned_dutch"
	OrderTypePiecewiseDutch OrderType = "piecewise_dutch"
	OrderTypePriority       OrderType = "priority"
)

// SignedOrder is the wire envelope a filler submits: the order family tag,
// the family-specific payload, and the swapper's signature over the payload's
// EIP-712 digest.
type SignedOrder struct {
	OrderType OrderType       `json:"order_type" binding:"required"`
	Order     json.RawMessage `json:"order" binding:"required"`
	Signature hexutil.Bytes   `json:"signature" binding:"required"`
}

// OrderInfo carries the fields common to every order family.
type OrderInfo struct {
	Reactor            common.Address `json:"reactor"`
	Swapper            common.Address `json:"swapper"`
	Nonce              U256           `json:"nonce"`
	Deadline           uint64         `json:"deadline"`
	ValidationContract common.Address `json:"validation_contract,omitempty"`
	ValidationData     hexutil.Bytes  `json:"validation_data,omitempty"`
}

// DutchInput is a decaying input leg. Inputs may only decay upward
// (StartAmount <= EndAmount) or stay flat.
type DutchInput struct {
	Token       common.Address `json:"token"`
	StartAmount U256           `json:"start_amount"`
	EndAmount   U256           `json:"end_amount"`
}

// DutchOutput is a decaying output leg. Outputs may only decay downward
// (StartAmount >= EndAmount) or stay flat.
type DutchOutput struct {
	Token       common.Address `json:"token"`
	StartAmount U256           `json:"start_amount"`
	EndAmount   U256           `json:"end_amount"`
	Recipient   common.Address `json:"recipient"`
}

// LimitOrder has no decay: start and end amounts coincide.
type LimitOrder struct {
	Info    OrderInfo     `json:"info"`
	Input   DutchInput    `json:"input"`
	Outputs []DutchOutput `json:"outputs"`
}

// DutchOrder decays linearly between DecayStartTime and DecayEndTime
// (unix seconds).
type DutchOrder struct {
	Info           OrderInfo     `json:"info"`
	DecayStartTime uint64        `json:"decay_start_time"`
	DecayEndTime   uint64        `json:"decay_end_time"`
	Input          DutchInput    `json:"input"`
	Outputs        []DutchOutput `json:"outputs"`
}

// ExclusiveDutchOrder adds an exclusivity window: until DecayStartTime only
// ExclusiveFiller settles at face value; anyone else pays
// ExclusivityOverrideBps on every output, or is rejected outright when the
// override is zero (strict exclusivity).
type ExclusiveDutchOrder struct {
	Info                   OrderInfo      `json:"info"`
	DecayStartTime         uint64         `json:"decay_start_time"`
	DecayEndTime           uint64         `json:"decay_end_time"`
	ExclusiveFiller        common.Address `json:"exclusive_filler,omitempty"`
	ExclusivityOverrideBps U256           `json:"exclusivity_override_bps"`
	Input                  DutchInput     `json:"input"`
	Outputs                []DutchOutput  `json:"outputs"`
}

// CosignerData carries the auction parameters a cosigner attests to for a
// cosigned Dutch order. Overrides may only improve the swapper's economics
// relative to the base signed order.
type CosignerData struct {
	DecayStartTime         uint64         `json:"decay_start_time"`
	DecayEndTime           uint64         `json:"decay_end_time"`
	ExclusiveFiller        common.Address `json:"exclusive_filler,omitempty"`
	ExclusivityOverrideBps U256           `json:"exclusivity_override_bps"`
	InputOverride          U256           `json:"input_override"`
	OutputOverrides        []U256         `json:"output_overrides"`
}

// CosignedDutchOrder is a Dutch order whose decay window and amounts can be
// tightened by a cosigner at submission time. The swapper's signature covers
// everything except CosignerData and Cosignature.
type CosignedDutchOrder struct {
	Info         OrderInfo      `json:"info"`
	Cosigner     common.Address `json:"cosigner"`
	Input        DutchInput     `json:"input"`
	Outputs      []DutchOutput  `json:"outputs"`
	CosignerData CosignerData   `json:"cosigner_data"`
	Cosignature  hexutil.Bytes  `json:"cosignature"`
}

// CurvePoint is one knot of a piecewise decay curve: a block offset relative
// to the decay start block and a signed amount delta relative to the base
// amount at that offset.
type CurvePoint struct {
	RelativeBlocks uint64 `json:"relative_blocks"`
	RelativeAmount U256   `json:"relative_amount"`
}

// PiecewiseInput is an input leg decayed by a block-based piecewise curve.
// MaxAmount bounds what a cosigner adjustment may ask the swapper to pay.
type PiecewiseInput struct {
	Token       common.Address `json:"token"`
	StartAmount U256           `json:"start_amount"`
	Curve       []CurvePoint   `json:"curve,omitempty"`
	MaxAmount   U256           `json:"max_amount"`
}

// PiecewiseOutput is an output leg decayed by a block-based piecewise curve.
// MinAmount floors what the swapper can end up receiving.
type PiecewiseOutput struct {
	Token       common.Address `json:"token"`
	StartAmount U256           `json:"start_amount"`
	Curve       []CurvePoint   `json:"curve,omitempty"`
	MinAmount   U256           `json:"min_amount"`
	Recipient   common.Address `json:"recipient"`
}

// PiecewiseCosignerData lets the cosigner anchor the decay start block and
// tighten amounts for a piecewise Dutch order.
type PiecewiseCosignerData struct {
	DecayStartBlock uint64 `json:"decay_start_block"`
	InputOverride   U256   `json:"input_override"`
	OutputOverrides []U256 `json:"output_overrides"`
}

// PiecewiseDutchOrder decays over block numbers along per-leg piecewise
// curves instead of a single linear ramp.
type PiecewiseDutchOrder struct {
	Info         OrderInfo             `json:"info"`
	Cosigner     common.Address        `json:"cosigner"`
	Input        PiecewiseInput        `json:"input"`
	Outputs      []PiecewiseOutput     `json:"outputs"`
	CosignerData PiecewiseCosignerData `json:"cosigner_data"`
	Cosignature  hexutil.Bytes         `json:"cosignature"`
}

// PriorityInput scales down with the caller's priority fee.
// MpsPerPriorityFeeWei is in milli-basis-points (1e7 = 100%) per wei.
type PriorityInput struct {
	Token                common.Address `json:"token"`
	Amount               U256           `json:"amount"`
	MpsPerPriorityFeeWei U256           `json:"mps_per_priority_fee_wei"`
}

// PriorityOutput scales up with the caller's priority fee.
type PriorityOutput struct {
	Token                common.Address `json:"token"`
	Amount               U256           `json:"amount"`
	MpsPerPriorityFeeWei U256           `json:"mps_per_priority_fee_wei"`
	Recipient            common.Address `json:"recipient"`
}

// PriorityCosignerData lets the cosigner open the auction earlier than the
// signed AuctionStartBlock, never later.
type PriorityCosignerData struct {
	AuctionTargetBlock uint64 `json:"auction_target_block"`
}

// PriorityOrder prices via the caller's paid priority fee above
// BaselinePriorityFeeWei instead of a time decay.
type PriorityOrder struct {
	Info                   OrderInfo            `json:"info"`
	Cosigner               common.Address       `json:"cosigner,omitempty"`
	AuctionStartBlock      uint64               `json:"auction_start_block"`
	BaselinePriorityFeeWei U256                 `json:"baseline_priority_fee_wei"`
	Input                  PriorityInput        `json:"input"`
	Outputs                []PriorityOutput     `json:"outputs"`
	CosignerData           PriorityCosignerData `json:"cosigner_data"`
	Cosignature            hexutil.Bytes        `json:"cosignature"`
}

// ResolvedInput is a concrete input leg after resolution.
type ResolvedInput struct {
	Token  common.Address `json:"token"`
	Amount U256           `json:"amount"`
}

// ResolvedOutput is a concrete output leg after resolution.
type ResolvedOutput struct {
	Token     common.Address `json:"token"`
	Amount    U256           `json:"amount"`
	Recipient common.Address `json:"recipient"`
}

// ResolvedOrder is the engine-internal result of resolving one signed order
// at a given chain context. It lives for a single settlement attempt.
type ResolvedOrder struct {
	Info      OrderInfo        `json:"info"`
	Input     ResolvedInput    `json:"input"`
	Outputs   []ResolvedOutput `json:"outputs"`
	Signature hexutil.Bytes    `json:"signature"`
	Hash      common.Hash      `json:"order_hash"`
}

// ResolutionContext is the caller-provided execution-time context an order is
// resolved against. Deadlines and decay windows compare against these values;
// the engine never consults a wall clock of its own.
type ResolutionContext struct {
	Timestamp   uint64         `json:"timestamp"`
	BlockNumber uint64         `json:"block_number"`
	ChainID     *big.Int       `json:"chain_id"`
	BaseFee     *big.Int       `json:"base_fee"`
	GasPrice    *big.Int       `json:"gas_price"`
	Caller      common.Address `json:"caller"`
}

// FillRecord is the canonical proof-of-fill emitted once per settled order.
type FillRecord struct {
	OrderHash   common.Hash    `json:"order_hash"`
	Filler      common.Address `json:"filler"`
	Swapper     common.Address `json:"swapper"`
	Nonce       U256           `json:"nonce"`
	BlockNumber uint64         `json:"block_number"`
	Timestamp   uint64         `json:"timestamp"`
}
