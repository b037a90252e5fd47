package handlers

import (
	"github.com/gin-gonic/gin"

	"ladle/internal/domain/sales"
	"ladle/internal/infrastructure/http/v1/dto"
)

// SalesHandler records and reverses sale events.
type SalesHandler struct {
	*BaseHandler
	sales *sales.Service
}

// NewSalesHandler creates a sales handler.
func NewSalesHandler(base *BaseHandler, svc *sales.Service) *SalesHandler {
	return &SalesHandler{BaseHandler: base, sales: svc}
}

// Record records a sale and deducts its recipe's ingredients.
// POST /api/v1/sales
func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	event, err := h.sales.Record(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, event)
}

// Reverse undoes a sale by replaying its stored applied deductions.
// DELETE /api/v1/sales/:id
func (h *SalesHandler) Reverse(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	deltas, err := h.sales.Reverse(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewReverseSaleResponse(deltas))
}
