package dto

import (
	"ladle/internal/domain/waste"
)

// WasteItemRequest is one line of a waste registration.
type WasteItemRequest struct {
	IngredientID string  `json:"ingredientId" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
	Reason       string  `json:"reason"`
}

// RegisterWasteRequest registers waste in bulk.
type RegisterWasteRequest struct {
	Items []WasteItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToItems converts the request into domain waste items.
func (r RegisterWasteRequest) ToItems() ([]waste.Item, error) {
	items := make([]waste.Item, 0, len(r.Items))
	for _, item := range r.Items {
		ingredientID, err := parseID("ingredientId", item.IngredientID)
		if err != nil {
			return nil, err
		}
		quantity, err := parseQuantity("quantity", item.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, waste.Item{
			IngredientID: ingredientID,
			Quantity:     quantity,
			Reason:       item.Reason,
		})
	}
	return items, nil
}

// RegisterWasteResponse summarizes a registration.
type RegisterWasteResponse struct {
	Count  int                 `json:"count"`
	Events []*waste.WasteEvent `json:"events"`
	Errors []waste.ItemError   `json:"errors,omitempty"`
}

// DeleteWasteResponse reports the restoration of a waste reversal.
type DeleteWasteResponse struct {
	Restored RestoredDeltaResponse `json:"restored"`
}

// NewDeleteWasteResponse converts a domain restoration delta.
func NewDeleteWasteResponse(d waste.RestoredDelta) DeleteWasteResponse {
	return DeleteWasteResponse{
		Restored: RestoredDeltaResponse{
			IngredientID: d.IngredientID.String(),
			Restored:     d.Restored.String(),
			NewQuantity:  d.NewQuantity.String(),
		},
	}
}
