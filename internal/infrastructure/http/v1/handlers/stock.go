package handlers

import (
	"github.com/gin-gonic/gin"

	"ladle/internal/core/apperror"
	"ladle/internal/domain/ledger"
	"ladle/internal/infrastructure/http/v1/dto"
	"ladle/internal/infrastructure/storage/postgres"
)

// StockHandler exposes the manual stock adjustment surface: signed
// deltas, bulk deltas, the stocktake path, and the audit history.
type StockHandler struct {
	*BaseHandler
	ledger *ledger.Service
	audit  *postgres.AuditTrail
}

// NewStockHandler creates a stock handler. audit may be nil (history 404s).
func NewStockHandler(base *BaseHandler, led *ledger.Service, audit *postgres.AuditTrail) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		ledger:      led,
		audit:       audit,
	}
}

// Adjust applies a signed delta to one ingredient.
// POST /api/v1/stock/:id/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	delta, err := req.Quantity()
	if err != nil {
		h.Error(c, err)
		return
	}

	adj, err := h.ledger.Adjust(c.Request.Context(), ingredientID, delta, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewAdjustmentResponse(adj))
}

// BulkAdjust applies many deltas with per-item error reporting.
// POST /api/v1/stock/bulk-adjust
func (h *StockHandler) BulkAdjust(c *gin.Context) {
	var req dto.BulkAdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items, err := req.ToItems()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.ledger.BulkAdjust(c.Request.Context(), items, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewBulkAdjustResponse(result))
}

// Stocktake sets an absolute counted quantity (reconciliation path).
// POST /api/v1/stock/:id/stocktake
func (h *StockHandler) Stocktake(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.StocktakeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quantity, err := req.ToQuantity()
	if err != nil {
		h.Error(c, err)
		return
	}

	adj, err := h.ledger.SetQuantity(c.Request.Context(), ingredientID, quantity, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewAdjustmentResponse(adj))
}

// History returns the audit trail of one ingredient, newest first.
// GET /api/v1/stock/:id/history
func (h *StockHandler) History(c *gin.Context) {
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if h.audit == nil {
		h.Error(c, apperror.NewNotFound("audit trail", ingredientID))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)

	records, err := h.audit.History(c.Request.Context(), ingredientID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"records": records})
}
