package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/chainctx"
	"github.com/openfill/fillgate/internal/model"
	"github.com/openfill/fillgate/internal/nonce"
	"github.com/openfill/fillgate/internal/pkg/apperrors"
	"github.com/openfill/fillgate/internal/pkg/logger"
	"github.com/openfill/fillgate/internal/pkg/metrics"
	"github.com/openfill/fillgate/internal/repository"
	"github.com/openfill/fillgate/internal/settlement"
	"github.com/openfill/fillgate/internal/stream"
	"github.com/openfill/fillgate/internal/types"
)

// SettlementService drives the engine from HTTP requests: it assembles the
// resolution context, settles, persists fill rows, and feeds the stream hub.
type SettlementService struct {
	engine   *settlement.Engine
	chain    chainctx.Provider
	fills    *repository.FillRepository // nil without a database
	hub      *stream.Hub
	maxBatch int
}

func NewSettlementService(
	engine *settlement.Engine,
	chain chainctx.Provider,
	fills *repository.FillRepository,
	hub *stream.Hub,
	maxBatch int,
) *SettlementService {
	if maxBatch <= 0 {
		maxBatch = 20
	}
	return &SettlementService{
		engine:   engine,
		chain:    chain,
		fills:    fills,
		hub:      hub,
		maxBatch: maxBatch,
	}
}

func (s *SettlementService) Execute(ctx context.Context, req model.ExecuteRequest) (*model.ExecuteResponse, error) {
	return s.ExecuteBatch(ctx, model.BatchExecuteRequest{
		Orders:   []types.SignedOrder{req.Order},
		Caller:   req.Caller,
		GasPrice: req.GasPrice,
	})
}

func (s *SettlementService) ExecuteBatch(ctx context.Context, req model.BatchExecuteRequest) (*model.ExecuteResponse, error) {
	if len(req.Orders) == 0 {
		return nil, apperrors.NewInvalidRequest("orders must not be empty")
	}
	if len(req.Orders) > s.maxBatch {
		return nil, apperrors.NewInvalidRequest(fmt.Sprintf("batch exceeds %d orders", s.maxBatch))
	}
	if !common.IsHexAddress(req.Caller) {
		return nil, apperrors.NewInvalidRequest("caller must be a hex address")
	}

	rctx, err := s.chain.Current(ctx)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUpstream, "chain context unavailable", err)
	}
	rctx.Caller = common.HexToAddress(req.Caller)
	if req.GasPrice != nil && req.GasPrice.Sign() > 0 {
		rctx.GasPrice = req.GasPrice.Big()
	}

	metrics.BatchSize.Observe(float64(len(req.Orders)))
	records, err := s.engine.ExecuteBatch(ctx, rctx, req.Orders, nil, nil)
	if err != nil {
		if errors.Is(err, nonce.ErrNonceUsed) {
			metrics.NonceConflicts.Inc()
		}
		for _, o := range req.Orders {
			metrics.SettlementsTotal.WithLabelValues("failed", string(o.OrderType)).Inc()
		}
		return nil, apperrors.Wrap(err)
	}
	for _, o := range req.Orders {
		metrics.SettlementsTotal.WithLabelValues("settled", string(o.OrderType)).Inc()
	}

	if s.fills != nil {
		if err := s.fills.SaveBatch(ctx, records); err != nil {
			// the settlement itself succeeded; losing the row is a
			// reporting problem, not a settlement failure
			logger.LogError(ctx, err, "failed to persist fill records")
		}
	}
	if s.hub != nil {
		for _, rec := range records {
			s.hub.Publish(rec)
		}
	}

	return &model.ExecuteResponse{Fills: records}, nil
}

func (s *SettlementService) ListFills(ctx context.Context, q repository.FillQuery) ([]repository.FillRow, error) {
	if s.fills == nil {
		return nil, apperrors.New(apperrors.ErrNotFound, "fill history requires a database", nil)
	}
	rows, err := s.fills.List(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return rows, nil
}
