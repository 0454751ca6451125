package model

import (
	"github.com/openfill/fillgate/internal/types"
)

// ExecuteRequest settles a single signed order as a direct fill: the caller
// funds outputs from its own balance.
type ExecuteRequest struct {
	Order    types.SignedOrder `json:"order" binding:"required"`
	Caller   string            `json:"caller" binding:"required"`
	GasPrice *types.U256       `json:"gas_price,omitempty"`
}

// BatchExecuteRequest settles several orders atomically.
type BatchExecuteRequest struct {
	Orders   []types.SignedOrder `json:"orders" binding:"required"`
	Caller   string              `json:"caller" binding:"required"`
	GasPrice *types.U256         `json:"gas_price,omitempty"`
}

type ExecuteResponse struct {
	Fills []types.FillRecord `json:"fills"`
}

// QuoteRequest resolves an order without settling it. Timestamp and block
// overrides let fillers price an order at a future point; zero means "now".
type QuoteRequest struct {
	Order           types.SignedOrder `json:"order" binding:"required"`
	Caller          string            `json:"caller,omitempty"`
	Timestamp       uint64            `json:"timestamp,omitempty"`
	BlockNumber     uint64            `json:"block_number,omitempty"`
	GasPrice        *types.U256       `json:"gas_price,omitempty"`
	DisplayDecimals int32             `json:"display_decimals,omitempty"`
}

type QuoteResponse struct {
	OrderHash string       `json:"order_hash"`
	Input     QuoteLeg     `json:"input"`
	Outputs   []QuoteLeg   `json:"outputs"`
	Context   QuoteContext `json:"context"`
}

// QuoteLeg carries the raw integer amount plus a human-readable decimal
// rendering at the requested precision.
type QuoteLeg struct {
	Token     string `json:"token"`
	Amount    string `json:"amount"`
	Display   string `json:"display"`
	Recipient string `json:"recipient,omitempty"`
}

type QuoteContext struct {
	Timestamp   uint64 `json:"timestamp"`
	BlockNumber uint64 `json:"block_number"`
}
