package dto

import (
	"time"

	"ladle/internal/domain/purchases"
)

// OrderLineRequest is one line of an order receipt.
type OrderLineRequest struct {
	IngredientID string  `json:"ingredientId" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
	UnitCost     string  `json:"unitCost" binding:"required"`
}

// ReceiveOrderRequest books a purchase order into stock.
type ReceiveOrderRequest struct {
	ReceiptDate *time.Time         `json:"receiptDate"`
	Lines       []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToLines converts the request into domain order lines.
func (r ReceiveOrderRequest) ToLines() ([]purchases.OrderLine, error) {
	lines := make([]purchases.OrderLine, 0, len(r.Lines))
	for _, line := range r.Lines {
		ingredientID, err := parseID("ingredientId", line.IngredientID)
		if err != nil {
			return nil, err
		}
		quantity, err := parseQuantity("quantity", line.Quantity)
		if err != nil {
			return nil, err
		}
		unitCost, err := parseMoney("unitCost", line.UnitCost)
		if err != nil {
			return nil, err
		}
		lines = append(lines, purchases.OrderLine{
			IngredientID: ingredientID,
			Quantity:     quantity,
			UnitCost:     unitCost,
		})
	}
	return lines, nil
}

// Date returns the receipt business date, defaulting to now.
func (r ReceiveOrderRequest) Date() time.Time {
	if r.ReceiptDate != nil {
		return *r.ReceiptDate
	}
	return time.Now().UTC()
}

// ReversedDeltaResponse is one ingredient change of an order reversal.
type ReversedDeltaResponse struct {
	IngredientID string `json:"ingredientId"`
	Removed      string `json:"removed"`
	NewQuantity  string `json:"newQuantity"`
}

// ReverseOrderResponse reports the effect of an order reversal.
type ReverseOrderResponse struct {
	RestoredDeltas []ReversedDeltaResponse `json:"restoredDeltas"`
}

// NewReverseOrderResponse converts domain reversal deltas.
func NewReverseOrderResponse(deltas []purchases.ReversedDelta) ReverseOrderResponse {
	resp := ReverseOrderResponse{RestoredDeltas: make([]ReversedDeltaResponse, 0, len(deltas))}
	for _, d := range deltas {
		resp.RestoredDeltas = append(resp.RestoredDeltas, ReversedDeltaResponse{
			IngredientID: d.IngredientID.String(),
			Removed:      d.Removed.String(),
			NewQuantity:  d.NewQuantity.String(),
		})
	}
	return resp
}
