package handlers

import (
	"github.com/gin-gonic/gin"

	"ladle/internal/domain/purchases"
	"ladle/internal/infrastructure/http/v1/dto"
)

// OrdersHandler books and reverses purchase order receipts.
type OrdersHandler struct {
	*BaseHandler
	purchases *purchases.Service
}

// NewOrdersHandler creates an orders handler.
func NewOrdersHandler(base *BaseHandler, svc *purchases.Service) *OrdersHandler {
	return &OrdersHandler{BaseHandler: base, purchases: svc}
}

// Receive books every line of an order into stock.
// POST /api/v1/orders/:id/receipts
func (h *OrdersHandler) Receive(c *gin.Context) {
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReceiveOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	events, err := h.purchases.ReceiveOrder(c.Request.Context(), orderID, req.Date(), lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"receipts": events})
}

// Reverse undoes one order, leaving sibling orders untouched.
// DELETE /api/v1/orders/:id
func (h *OrdersHandler) Reverse(c *gin.Context) {
	orderID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	deltas, err := h.purchases.ReverseOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewReverseOrderResponse(deltas))
}
