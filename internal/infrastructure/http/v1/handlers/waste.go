package handlers

import (
	"github.com/gin-gonic/gin"

	"ladle/internal/domain/waste"
	"ladle/internal/infrastructure/http/v1/dto"
)

// WasteHandler registers and reverses waste events.
type WasteHandler struct {
	*BaseHandler
	waste *waste.Service
}

// NewWasteHandler creates a waste handler.
func NewWasteHandler(base *BaseHandler, svc *waste.Service) *WasteHandler {
	return &WasteHandler{BaseHandler: base, waste: svc}
}

// Register registers waste items in bulk.
// POST /api/v1/waste
func (h *WasteHandler) Register(c *gin.Context) {
	var req dto.RegisterWasteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items, err := req.ToItems()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.waste.Register(c.Request.Context(), items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.RegisterWasteResponse{
		Count:  result.Count,
		Events: result.Events,
		Errors: result.Errors,
	})
}

// Delete reverses one waste event.
// DELETE /api/v1/waste/:id
func (h *WasteHandler) Delete(c *gin.Context) {
	eventID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	restored, err := h.waste.Delete(c.Request.Context(), eventID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewDeleteWasteResponse(restored))
}
