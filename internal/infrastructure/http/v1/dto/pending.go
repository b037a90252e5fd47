package dto

import (
	"ladle/internal/domain/purchases"
)

// PendingCandidateRequest is one externally sourced purchase line.
type PendingCandidateRequest struct {
	IngredientID string  `json:"ingredientId" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required"`
	Price        string  `json:"price" binding:"required"`
}

// SubmitPendingRequest stages a batch of purchase candidates.
type SubmitPendingRequest struct {
	Candidates []PendingCandidateRequest `json:"candidates" binding:"required,min=1,dive"`
}

// ToInputs converts the request into domain candidate inputs.
func (r SubmitPendingRequest) ToInputs() ([]purchases.CandidateInput, error) {
	inputs := make([]purchases.CandidateInput, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		ingredientID, err := parseID("ingredientId", c.IngredientID)
		if err != nil {
			return nil, err
		}
		quantity, err := parseQuantity("quantity", c.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := parseMoney("price", c.Price)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, purchases.CandidateInput{
			IngredientID: ingredientID,
			Quantity:     quantity,
			Price:        price,
		})
	}
	return inputs, nil
}
