package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/openfill/fillgate/internal/chainctx"
	"github.com/openfill/fillgate/internal/model"
	"github.com/openfill/fillgate/internal/pkg/apperrors"
	"github.com/openfill/fillgate/internal/pkg/metrics"
	"github.com/openfill/fillgate/internal/resolver"
	"github.com/openfill/fillgate/internal/types"
)

const defaultDisplayDecimals = 18

// QuoteService resolves orders without settling them. Fillers use it to
// price an order before committing balance.
type QuoteService struct {
	registry *resolver.Registry
	chain    chainctx.Provider
}

func NewQuoteService(registry *resolver.Registry, chain chainctx.Provider) *QuoteService {
	return &QuoteService{registry: registry, chain: chain}
}

func (s *QuoteService) Quote(ctx context.Context, req model.QuoteRequest) (*model.QuoteResponse, error) {
	rctx, err := s.chain.Current(ctx)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUpstream, "chain context unavailable", err)
	}
	if req.Caller != "" {
		if !common.IsHexAddress(req.Caller) {
			return nil, apperrors.NewInvalidRequest("caller must be a hex address")
		}
		rctx.Caller = common.HexToAddress(req.Caller)
	}
	if req.Timestamp > 0 {
		rctx.Timestamp = req.Timestamp
	}
	if req.BlockNumber > 0 {
		rctx.BlockNumber = req.BlockNumber
	}
	if req.GasPrice != nil && req.GasPrice.Sign() > 0 {
		rctx.GasPrice = req.GasPrice.Big()
	}

	resolved, err := s.registry.Resolve(rctx, req.Order)
	if err != nil {
		appErr := apperrors.Wrap(err)
		metrics.ResolveFailures.WithLabelValues(string(appErr.Type)).Inc()
		return nil, appErr
	}

	dec := req.DisplayDecimals
	if dec <= 0 {
		dec = defaultDisplayDecimals
	}

	resp := &model.QuoteResponse{
		OrderHash: resolved.Hash.Hex(),
		Input: model.QuoteLeg{
			Token:   resolved.Input.Token.Hex(),
			Amount:  resolved.Input.Amount.Big().String(),
			Display: display(resolved.Input.Amount, dec),
		},
		Context: model.QuoteContext{
			Timestamp:   rctx.Timestamp,
			BlockNumber: rctx.BlockNumber,
		},
	}
	for _, out := range resolved.Outputs {
		resp.Outputs = append(resp.Outputs, model.QuoteLeg{
			Token:     out.Token.Hex(),
			Amount:    out.Amount.Big().String(),
			Display:   display(out.Amount, dec),
			Recipient: out.Recipient.Hex(),
		})
	}
	return resp, nil
}

func display(amount types.U256, decimals int32) string {
	return decimal.NewFromBigInt(amount.Big(), -decimals).String()
}
