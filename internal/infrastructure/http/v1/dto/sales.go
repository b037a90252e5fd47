package dto

import (
	"time"

	"ladle/internal/domain/sales"
)

// RecordSaleRequest records one sale of a recipe (optionally a variant).
type RecordSaleRequest struct {
	RecipeID     string  `json:"recipeId" binding:"required"`
	VariantID    *string `json:"variantId"`
	QuantitySold float64 `json:"quantitySold" binding:"required"`

	// UnitPrice overrides the catalog price when set ("12.50").
	UnitPrice *string    `json:"unitPrice"`
	SoldAt    *time.Time `json:"soldAt"`
}

// ToInput converts the request into the domain recording input.
func (r RecordSaleRequest) ToInput() (sales.RecordInput, error) {
	var input sales.RecordInput

	recipeID, err := parseID("recipeId", r.RecipeID)
	if err != nil {
		return input, err
	}
	input.RecipeID = recipeID

	if r.VariantID != nil {
		variantID, err := parseID("variantId", *r.VariantID)
		if err != nil {
			return input, err
		}
		input.VariantID = &variantID
	}

	quantity, err := parseQuantity("quantitySold", r.QuantitySold)
	if err != nil {
		return input, err
	}
	input.QuantitySold = quantity

	if r.UnitPrice != nil {
		price, err := parseMoney("unitPrice", *r.UnitPrice)
		if err != nil {
			return input, err
		}
		input.UnitPrice = &price
	}

	if r.SoldAt != nil {
		input.SoldAt = *r.SoldAt
	} else {
		input.SoldAt = time.Now().UTC()
	}
	return input, nil
}

// RestoredDeltaResponse is one restored ingredient of a reversal.
type RestoredDeltaResponse struct {
	IngredientID string `json:"ingredientId"`
	Restored     string `json:"restored"`
	NewQuantity  string `json:"newQuantity"`
}

// ReverseSaleResponse reports the effect of a sale reversal.
type ReverseSaleResponse struct {
	RestoredDeltas []RestoredDeltaResponse `json:"restoredDeltas"`
}

// NewReverseSaleResponse converts domain restoration deltas.
func NewReverseSaleResponse(deltas []sales.RestoredDelta) ReverseSaleResponse {
	resp := ReverseSaleResponse{RestoredDeltas: make([]RestoredDeltaResponse, 0, len(deltas))}
	for _, d := range deltas {
		resp.RestoredDeltas = append(resp.RestoredDeltas, RestoredDeltaResponse{
			IngredientID: d.IngredientID.String(),
			Restored:     d.Restored.String(),
			NewQuantity:  d.NewQuantity.String(),
		})
	}
	return resp
}
