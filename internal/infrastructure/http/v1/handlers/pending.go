package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ladle/internal/domain/purchases"
	"ladle/internal/infrastructure/http/v1/dto"
)

// PendingHandler manages the pending-purchase approval workflow.
type PendingHandler struct {
	*BaseHandler
	purchases *purchases.Service
}

// NewPendingHandler creates a pending-purchase handler.
func NewPendingHandler(base *BaseHandler, svc *purchases.Service) *PendingHandler {
	return &PendingHandler{BaseHandler: base, purchases: svc}
}

// Submit stages a batch of purchase candidates.
// POST /api/v1/pending-purchases
func (h *PendingHandler) Submit(c *gin.Context) {
	var req dto.SubmitPendingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inputs, err := req.ToInputs()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.purchases.SubmitBatch(c.Request.Context(), inputs)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Approve approves a pending candidate and materializes a receipt.
// POST /api/v1/pending-purchases/:id/approve
func (h *PendingHandler) Approve(c *gin.Context) {
	candidateID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.purchases.Approve(c.Request.Context(), candidateID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"receipt": receipt})
}

// Reject rejects a pending candidate without stock effect.
// POST /api/v1/pending-purchases/:id/reject
func (h *PendingHandler) Reject(c *gin.Context) {
	candidateID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.purchases.Reject(c.Request.Context(), candidateID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
