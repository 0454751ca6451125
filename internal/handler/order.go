package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openfill/fillgate/internal/model"
	"github.com/openfill/fillgate/internal/pkg/apperrors"
	"github.com/openfill/fillgate/internal/repository"
	"github.com/openfill/fillgate/internal/service"
)

type OrderHandler struct {
	settle *service.SettlementService
	quote  *service.QuoteService
}

func NewOrderHandler(settle *service.SettlementService, quote *service.QuoteService) *OrderHandler {
	return &OrderHandler{settle: settle, quote: quote}
}

// Execute settles one signed order as a direct fill.
func (h *OrderHandler) Execute(c *gin.Context) {
	var req model.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	resp, err := h.settle.Execute(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExecuteBatch settles several orders atomically.
func (h *OrderHandler) ExecuteBatch(c *gin.Context) {
	var req model.BatchExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	resp, err := h.settle.ExecuteBatch(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Quote resolves an order at the current (or overridden) chain context
// without settling it.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req model.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	resp, err := h.quote.Quote(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListFills returns settled orders, newest first.
func (h *OrderHandler) ListFills(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	q := repository.FillQuery{
		Swapper:   c.Query("swapper"),
		Filler:    c.Query("filler"),
		OrderHash: c.Query("order_hash"),
		Limit:     limit,
		Offset:    offset,
	}

	rows, err := h.settle.ListFills(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fills": rows})
}
