package dto

import (
	"ladle/internal/core/types"
	"ladle/internal/domain/ledger"
)

// AdjustStockRequest applies a signed delta to one ingredient. Delta is
// a pointer so an explicit zero passes the required check instead of
// being bound as a missing field.
type AdjustStockRequest struct {
	Delta  *float64 `json:"delta" binding:"required"`
	Reason string   `json:"reason"`
}

// Quantity converts the request delta, rejecting non-finite values.
func (r AdjustStockRequest) Quantity() (types.Quantity, error) {
	return parseQuantity("delta", *r.Delta)
}

// BulkAdjustItemRequest is one line of a bulk adjustment.
type BulkAdjustItemRequest struct {
	IngredientID string   `json:"ingredientId" binding:"required"`
	Delta        *float64 `json:"delta" binding:"required"`
}

// BulkAdjustRequest applies many deltas in one transaction.
type BulkAdjustRequest struct {
	Items  []BulkAdjustItemRequest `json:"items" binding:"required,min=1,dive"`
	Reason string                  `json:"reason"`
}

// ToItems converts the request into ledger bulk items.
func (r BulkAdjustRequest) ToItems() ([]ledger.BulkItem, error) {
	items := make([]ledger.BulkItem, 0, len(r.Items))
	for _, item := range r.Items {
		ingredientID, err := parseID("ingredientId", item.IngredientID)
		if err != nil {
			return nil, err
		}
		delta, err := parseQuantity("delta", *item.Delta)
		if err != nil {
			return nil, err
		}
		items = append(items, ledger.BulkItem{IngredientID: ingredientID, Delta: delta})
	}
	return items, nil
}

// StocktakeRequest sets an absolute counted quantity.
type StocktakeRequest struct {
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason"`
}

// ToQuantity converts the counted quantity.
func (r StocktakeRequest) ToQuantity() (types.Quantity, error) {
	return parseQuantity("quantity", r.Quantity)
}

// BulkAdjustResponse carries per-item outcomes.
type BulkAdjustResponse struct {
	Results []AdjustmentResponse   `json:"results"`
	Errors  []ledger.BulkItemError `json:"errors,omitempty"`
}

// NewBulkAdjustResponse converts a ledger bulk result.
func NewBulkAdjustResponse(result ledger.BulkResult) BulkAdjustResponse {
	resp := BulkAdjustResponse{Errors: result.Errors}
	for _, adj := range result.Results {
		resp.Results = append(resp.Results, NewAdjustmentResponse(adj))
	}
	return resp
}
